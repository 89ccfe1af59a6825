package backend

import (
	"fmt"
	"log/slog"
	"time"

	"budget/internal/cache"
	"budget/internal/config"
	"budget/internal/ledger"
	"budget/internal/storage"
)

const (
	// sqliteListTTL bounds staleness across processes sharing one database.
	sqliteListTTL     = 30 * time.Second
	cacheCleanupEvery = 5 * time.Minute
)

// Factory creates stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore opens the store named by cfg.DataBackend.
func (f *Factory) CreateStore(cfg *config.Config) (*Result, error) {
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		return f.createSQLiteStore(cfg)
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Store: ledger.NewMemoryStore()}, nil
	case FileBackend:
		store := ledger.NewFileStore(cfg.DataFile)
		f.logger.Info("Initialized file backend", "path", cfg.DataFile)
		return &Result{Store: store, Cleanup: store.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}

func (f *Factory) createSQLiteStore(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	store := ledger.NewCachedStore(repo, sqliteListTTL)
	manager := cache.NewManager()
	manager.Register(store)
	manager.StartCleanup(cacheCleanupEvery)

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	cleanup := func() error {
		manager.Stop()
		return store.Close()
	}
	return &Result{Store: store, Cleanup: cleanup}, nil
}
