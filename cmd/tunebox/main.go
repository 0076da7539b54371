package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tunebox/internal/config"
	"tunebox/internal/logging"
	"tunebox/internal/media"
	"tunebox/internal/payment"
	"tunebox/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal(err, "tunebox exited")
	}
}

func run() error {
	cfg, err := config.Load("config/local.env", ".env")
	if err != nil {
		return err
	}

	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := store.NewMigrator(db)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		return err
	}

	dataStore := store.New(db)
	if cfg.Bootstrap {
		if err := bootstrapDemoData(ctx, dataStore); err != nil {
			return err
		}
	}

	files, err := media.NewLocalStorage(cfg.Media.Root)
	if err != nil {
		return err
	}

	gateway, err := payment.NewGateway(payment.Config{
		TmnCode:    cfg.Payment.TmnCode,
		HashSecret: cfg.Payment.HashSecret,
		PaymentURL: cfg.Payment.URL,
		ReturnURL:  cfg.Payment.ReturnURL,
		Amount:     cfg.Payment.Amount,
		Currency:   cfg.Payment.Currency,
		Locale:     cfg.Payment.Locale,
		Location:   cfg.Payment.Location(),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, dataStore, files, gateway),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.WithContext(ctx).Info().Str("addr", server.Addr).Str("media_root", files.Root()).Msg("tunebox listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
