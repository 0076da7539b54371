package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tunebox/internal/config"
	"tunebox/internal/logging"
)

const (
	pingTimeout    = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// openDatabase connects to Postgres and keeps pinging until it answers or
// cfg.ConnectTimeout elapses. The database usually starts alongside the
// service, so early refusals are expected.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := waitForDatabase(ctx, db, cfg.ConnectTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func waitForDatabase(ctx context.Context, db *sql.DB, window time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		pingCtx, cancelPing := context.WithTimeout(waitCtx, pingTimeout)
		err := db.PingContext(pingCtx)
		cancelPing()
		if err == nil {
			if attempt > 1 {
				logging.WithContext(ctx).Info().Int("attempts", attempt).Msg("database ready")
			}
			return nil
		}

		logging.WithContext(ctx).Warn().Err(err).Int("attempt", attempt).Dur("retry_in", backoff).Msg("database not ready")
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("ping database after %d attempts within %s: %w", attempt, window, err)
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
