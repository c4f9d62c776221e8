package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"keyword-history/internal/shared/storage/db"
	"keyword-history/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DBDriver        db.Driver
	DBPath          string
	DatabaseURL     string
	FrontendDir     string
	CORSAllowOrigin []string
	AtomicSaves     bool
	SaveRateLimit   RateLimit
	ReadRateLimit   RateLimit
}

// RateLimit is a token bucket setting; zero values disable limiting.
type RateLimit struct {
	RPS   float64
	Burst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	driver, err := db.ParseDriver(getEnv("DB_DRIVER", "sqlite"))
	if err != nil {
		telemetry.Error("config.invalid_driver", map[string]any{"error": err.Error()})
		driver = db.Driver(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	}

	return Config{
		Port:            getEnv("PORT", "3000"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DBDriver:        driver,
		DBPath:          getEnv("DB_PATH", "./data/db.sqlite"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		FrontendDir:     getEnv("FRONTEND_DIR", "../frontend"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		AtomicSaves:     getBool("ATOMIC_SAVES", false),
		SaveRateLimit: RateLimit{
			RPS:   getFloat("RATE_LIMIT_SAVE_RPS", 5),
			Burst: getInt("RATE_LIMIT_SAVE_BURST", 20),
		},
		ReadRateLimit: RateLimit{
			RPS:   getFloat("RATE_LIMIT_READ_RPS", 20),
			Burst: getInt("RATE_LIMIT_READ_BURST", 60),
		},
	}
}

// Validate reports settings the process cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case db.DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case db.DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return db.SQLiteDSN(c.DBPath)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Error("config.invalid_value", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Error("config.invalid_value", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Error("config.invalid_value", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
