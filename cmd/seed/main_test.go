package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventra/backend/internal/config"
	"inventra/backend/internal/domain"
	sqlitestore "inventra/backend/internal/store/sqlite"
)

func TestRollupWindowDefaults(t *testing.T) {
	now := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)

	from, to, err := rollupWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), from)

	_, _, err = rollupWindow("2026-05-09", "2026-05-01", now)
	assert.Error(t, err)
	_, _, err = rollupWindow("last week", "", now)
	assert.Error(t, err)
}

func TestRunRefusesMemoryStore(t *testing.T) {
	err := run(context.Background(), config.Default(), options{dir: "x"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRunSeedsSQLiteAndRollsUp(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "seed.db")

	opts := options{
		dir:    filepath.Join("..", "..", "internal", "seed", "testdata"),
		rollup: true,
		from:   "2026-05-09",
		to:     "2026-05-09",
	}
	require.NoError(t, run(ctx, cfg, opts, zaptest.NewLogger(t)))

	repo, err := sqlitestore.New(ctx, cfg.Store.SQLitePath)
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	products, err := repo.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 4)

	purchases, err := repo.ListPurchaseSummaries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Zero(t, purchases[0].TotalPurchased)
}
