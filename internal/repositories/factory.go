package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/lockbox/internal/config"
	"github.com/BradenHooton/lockbox/internal/database"
)

// Open builds the backend selected by STORE_DRIVER.
// The returned close func releases the backend's connections.
func Open(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (KeyValueStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, state is lost on exit")
		return NewMemoryStore(), func() {}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(db), db.Close, nil

	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, &cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(db), db.Close, nil

	case config.DriverRedis:
		store, err := NewRedisStore(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis store opened", slog.String("addr", cfg.Redis.Addr))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close redis client", slog.Any("error", err))
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
