package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"tunebox/internal/config"
	"tunebox/internal/logging"
	"tunebox/internal/store"
)

func main() {
	if len(os.Args) != 2 || (os.Args[1] != "up" && os.Args[1] != "down" && os.Args[1] != "version") {
		fmt.Fprintln(os.Stderr, "usage: migrate [up|down|version]")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		logging.Fatal(err, "migration failed")
	}
}

func run(command string) error {
	dbCfg, err := config.LoadDatabase("config/local.env", ".env")
	if err != nil {
		return err
	}
	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: "text",
	}))

	db, err := sql.Open("postgres", dbCfg.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator, err := store.NewMigrator(db)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		logging.Info("migrations applied")
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
		logging.Info("migrations rolled back")
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	}
	return nil
}
