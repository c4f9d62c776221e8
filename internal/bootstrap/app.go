package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"keyword-history/internal/analyses"
	"keyword-history/internal/services/health"
	"keyword-history/internal/shared/config"
	"keyword-history/internal/shared/metrics"
	"keyword-history/internal/shared/server"
	"keyword-history/internal/shared/storage/db"
	"keyword-history/internal/shared/telemetry"
)

// App holds the wired dependencies of one process.
type App struct {
	Config          config.Config
	DB              *sql.DB
	Repo            analyses.Repo
	Service         *analyses.Service
	AnalysisHandler *analyses.Handler
	Health          *health.Service
	Metrics         *metrics.Collector
	Router          *gin.Engine

	shared bool
}

// Build opens the record store, ensures its schema and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := db.OptionsFromEnv(db.DefaultOptions(cfg.DBDriver))
	shared := db.IsLambdaRuntime()

	var (
		sqlDB *sql.DB
		err   error
	)
	if shared {
		sqlDB, err = db.GetSingleton(ctx, cfg.DBDriver, cfg.DSN(), opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DBDriver, cfg.DSN(), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	if err := db.EnsureSchema(ctx, sqlDB, cfg.DBDriver); err != nil {
		if !shared {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	app := &App{Config: cfg, DB: sqlDB, shared: shared}
	app.Repo = newRepo(cfg, sqlDB)
	app.Metrics = metrics.NewCollector()
	app.Service = analyses.NewService(app.Repo, app.Metrics)
	app.AnalysisHandler = analyses.NewHandler(app.Service)
	app.Health = health.NewService(app.Service)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		Health:          app.Health,
		Metrics:         app.Metrics,
	})

	telemetry.Info("app.ready", map[string]any{
		"driver":       string(cfg.DBDriver),
		"env":          cfg.Env,
		"atomic_saves": cfg.AtomicSaves,
	})
	return app, nil
}

func newRepo(cfg config.Config, sqlDB *sql.DB) analyses.Repo {
	if cfg.DBDriver == db.DriverPostgres {
		return &analyses.PGRepo{DB: sqlDB, Atomic: cfg.AtomicSaves}
	}
	return analyses.NewSQLiteRepo(sqlDB, cfg.AtomicSaves)
}

// Close releases the record store unless it is the process-wide singleton.
func (a *App) Close() error {
	if a == nil || a.DB == nil || a.shared {
		return nil
	}
	return a.DB.Close()
}
