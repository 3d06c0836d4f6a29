package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/domain"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/memory"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/postgres"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/redis"
	"github.com/alesilvadev/mi-tienda-uy-frontend/internal/storage/sqlite"
)

// pinger — хранилище, которое умеет проверять своё подключение.
type pinger interface {
	Ping(ctx context.Context) error
}

// OpenLocalStore открывает локальное хранилище выбранного драйвера.
func OpenLocalStore(ctx context.Context, cfg Config, logger *log.Entry) (domain.LocalStore, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Warn("using in-memory local store: the active order is lost on restart")
		return memory.NewLocalStore(), nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.SQLitePath).Info("sqlite local store opened")
		return store, nil

	case StorageDriverPostgres:
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		store, err := postgres.NewLocalStore(pg, cfg.DeviceID)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		logger.WithField("device_id", cfg.DeviceID).Info("postgres local store opened")
		return store, nil

	case StorageDriverRedis:
		store, err := redis.Open(ctx, cfg.RedisAddr, cfg.DeviceID)
		if err != nil {
			return nil, err
		}
		logger.WithFields(log.Fields{
			"addr":      cfg.RedisAddr,
			"device_id": cfg.DeviceID,
		}).Info("redis local store opened")
		return store, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

// storePing возвращает проверку хранилища для health-чекера.
func storePing(store domain.LocalStore) func(ctx context.Context) error {
	if p, ok := store.(pinger); ok {
		return p.Ping
	}
	return func(ctx context.Context) error {
		_, _, err := store.LoadToken(ctx)
		return err
	}
}
