package main

// Create the record store schema without starting the server:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"keyword-history/internal/shared/config"
	"keyword-history/internal/shared/storage/db"
	"keyword-history/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	defer telemetry.Sync()

	if err := cfg.Validate(); err != nil {
		telemetry.Error("migrate.invalid_config", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN(), db.OptionsFromEnv(db.DefaultOptions(cfg.DBDriver)))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.EnsureSchema(ctx, sqlDB, cfg.DBDriver); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"driver": string(cfg.DBDriver)})
}
