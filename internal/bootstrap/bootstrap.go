// Package bootstrap wires configuration into the concrete store and cache
// implementations shared by the server and seed binaries.
package bootstrap

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventra/backend/internal/cache"
	"inventra/backend/internal/config"
	"inventra/backend/internal/store"
	"inventra/backend/internal/store/memory"
	pgstore "inventra/backend/internal/store/postgres"
	sqlitestore "inventra/backend/internal/store/sqlite"
)

// Closer releases a resource opened during startup.
type Closer func() error

// OpenStore selects postgres when a database URL is configured, then sqlite
// when a path is configured, and otherwise an in-memory store seeded with a
// demo catalog. A configured database that cannot be reached is an error;
// there is no silent fallback to memory.
func OpenStore(ctx context.Context, cfg config.Store, logger *zap.Logger) (store.Repository, Closer, error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "postgres unavailable")
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, errors.WithMessage(err, "postgres migration")
		}
		logger.Info("repository ready", zap.String("backend", "postgres"))
		return pg, pg.Close, nil
	case cfg.SQLitePath != "":
		lite, err := sqlitestore.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "sqlite %s", cfg.SQLitePath)
		}
		logger.Info("repository ready", zap.String("backend", "sqlite"), zap.String("path", cfg.SQLitePath))
		return lite, lite.Close, nil
	default:
		logger.Info("repository ready", zap.String("backend", "memory"))
		return memory.NewSeeded(), func() error { return nil }, nil
	}
}

// OpenDashboardCache connects to redis when an address is configured. An
// unreachable redis degrades to the no-op cache with a warning.
func OpenDashboardCache(ctx context.Context, cfg config.Redis, logger *zap.Logger) (cache.DashboardCache, Closer) {
	noop := func() error { return nil }
	if cfg.Addr == "" {
		logger.Info("dashboard cache disabled")
		return cache.NoopDashboardCache{}, noop
	}

	redisCache := cache.NewRedisDashboardCache(cfg.Addr, cfg.Password, cfg.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, using noop cache", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = redisCache.Close()
		return cache.NoopDashboardCache{}, noop
	}
	logger.Info("dashboard cache ready", zap.String("backend", "redis"), zap.String("addr", cfg.Addr))
	return redisCache, redisCache.Close
}
