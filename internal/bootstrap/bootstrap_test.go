package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventra/backend/internal/cache"
	"inventra/backend/internal/config"
	"inventra/backend/internal/domain"
	"inventra/backend/internal/store/memory"
	sqlitestore "inventra/backend/internal/store/sqlite"
)

func TestOpenStoreDefaultsToSeededMemory(t *testing.T) {
	repo, closeFn, err := OpenStore(context.Background(), config.Store{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	require.IsType(t, &memory.Store{}, repo)
	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, products)
}

func TestOpenStoreUsesSQLitePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventra.db")
	repo, closeFn, err := OpenStore(context.Background(), config.Store{SQLitePath: path}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	require.IsType(t, &sqlitestore.Store{}, repo)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestOpenDashboardCache(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	c, closeFn := OpenDashboardCache(ctx, config.Redis{}, logger)
	assert.IsType(t, cache.NoopDashboardCache{}, c)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	c, closeFn = OpenDashboardCache(ctx, config.Redis{Addr: mr.Addr()}, logger)
	assert.IsType(t, &cache.RedisDashboardCache{}, c)
	assert.NoError(t, closeFn())

	addr := mr.Addr()
	mr.Close()
	c, _ = OpenDashboardCache(ctx, config.Redis{Addr: addr}, logger)
	assert.IsType(t, cache.NoopDashboardCache{}, c)
}
