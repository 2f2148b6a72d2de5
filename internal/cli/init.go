// Package cli provides common initialization utilities shared by
// cmd/spotcheckd, cmd/reminder-worker, and cmd/oauth-init.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"spotcheck/internal/backend"
	"spotcheck/internal/config"
	applog "spotcheck/internal/log"
)

// SetupLogger initializes structured logging and sets it as the default.
func SetupLogger(component string) *slog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger.Logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStore creates the item store selected by the configuration.
// Returns the store result or exits the process on failure.
func InitStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) *backend.Result {
	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid store configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize item store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}
