package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spotcheck/internal/remote/memory"
	"spotcheck/internal/remote/rest"
	"spotcheck/internal/remote/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new store factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(_ context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		store, err := sqlite.New(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite item store", "db_path", config.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case RESTBackend:
		client := rest.New(config.RESTBaseURL, config.RESTAPIKey, config.RESTToken)
		f.logger.Info("Initialized hosted REST item store", "base_url", config.RESTBaseURL)
		return &Result{Store: client, Cleanup: client.Close}, nil

	case MemoryBackend:
		store := memory.New()
		f.logger.Info("Initialized memory item store")
		return &Result{Store: store, Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// Validate validates the store configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case RESTBackend:
		if c.RESTBaseURL == "" {
			return fmt.Errorf("remote base URL is required for rest backend")
		}
		if c.RESTAPIKey == "" {
			return fmt.Errorf("remote API key is required for rest backend")
		}
	case MemoryBackend:
		// Memory backend doesn't require additional configuration
	}

	return nil
}
