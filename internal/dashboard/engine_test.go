package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventra/backend/internal/cache"
	"inventra/backend/internal/domain"
	"inventra/backend/internal/store/memory"
)

type countingReader struct {
	Reader
	listCalls atomic.Int32
}

func (r *countingReader) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.listCalls.Add(1)
	return r.Reader.ListProducts(ctx, filter)
}

type failingReader struct {
	Reader
}

func (failingReader) ListProducts(context.Context, domain.ProductFilter) ([]domain.Product, error) {
	return nil, errors.New("disk on fire")
}

func seedStationary(t *testing.T, repo *memory.Store, stocks ...int) {
	t.Helper()
	for i, stock := range stocks {
		_, err := repo.CreateProduct(context.Background(), domain.Product{
			ProductID:     fmt.Sprintf("stat-%02d", i),
			Name:          fmt.Sprintf("Stationary %d", i),
			Category:      domain.CategoryStationary,
			StockQuantity: stock,
			Variant:       domain.StationaryProduct{Price: 1, Type: "pen"},
		})
		require.NoError(t, err)
	}
}

func TestPopularProductsTopFivePerCategory(t *testing.T) {
	repo := memory.New()
	seedStationary(t, repo, 3, 50, 7, 50, 1, 9, 20)
	engine := NewEngine(repo, nil, 0, zaptest.NewLogger(t))

	groups, err := engine.PopularProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, len(domain.Categories))

	for i, group := range groups {
		assert.Equal(t, domain.Categories[i], group.Category)
	}

	stationery := groups[1]
	ids := make([]string, 0, len(stationery.Products))
	for _, p := range stationery.Products {
		ids = append(ids, p.ProductID)
	}
	assert.Equal(t, []string{"stat-01", "stat-03", "stat-06", "stat-05", "stat-02"}, ids)
	assert.NotNil(t, groups[0].Products, "empty categories serialize as []")
	assert.Empty(t, groups[0].Products)
}

func TestPopularProductsStableWithoutWrites(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSeeded()
	for _, id := range []string{"tie-b", "tie-a"} {
		_, err := repo.CreateProduct(ctx, domain.Product{
			ProductID:     id,
			Name:          "Tied " + id,
			Category:      domain.CategoryStationary,
			StockQuantity: 900,
			Variant:       domain.StationaryProduct{Price: 2, Type: "pad"},
		})
		require.NoError(t, err)
	}
	engine := NewEngine(repo, nil, 0, nil)

	first, err := engine.PopularProducts(ctx)
	require.NoError(t, err)
	second, err := engine.PopularProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	stationery := first[1]
	require.Equal(t, domain.CategoryStationary, stationery.Category)
	require.GreaterOrEqual(t, len(stationery.Products), 2)
	assert.Equal(t, "tie-a", stationery.Products[0].ProductID)
	assert.Equal(t, "tie-b", stationery.Products[1].ProductID)
}

func TestCategoryProducts(t *testing.T) {
	repo := memory.NewSeeded()
	engine := NewEngine(repo, nil, 0, nil)

	group, err := engine.CategoryProducts(context.Background(), domain.CategoryPublications)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryPublications, group.Category)
	require.Len(t, group.Products, 2)
	assert.Equal(t, "PUB-GO-01", group.Products[0].ProductID)
}

func TestMetricsIncludesLatestSummaries(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSeeded()
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		require.NoError(t, repo.UpsertSalesSummary(ctx, domain.SalesSummary{
			SalesSummaryID: fmt.Sprintf("ss-%d", i),
			TotalValue:     float64(i * 10),
			Date:           day.AddDate(0, 0, i),
		}))
	}

	engine := NewEngine(repo, nil, 0, nil)
	metrics, err := engine.Metrics(ctx)
	require.NoError(t, err)

	require.Len(t, metrics.PopularProducts, 4)
	require.Len(t, metrics.SalesSummary, SummaryLimit)
	assert.Equal(t, "ss-6", metrics.SalesSummary[0].SalesSummaryID)
	assert.NotNil(t, metrics.PurchaseSummary)
	assert.Empty(t, metrics.PurchaseSummary)
}

func TestCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisDashboardCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = redisCache.Close() })

	repo := memory.New()
	seedStationary(t, repo, 5)
	reader := &countingReader{Reader: repo}
	engine := NewEngine(reader, redisCache, time.Minute, zaptest.NewLogger(t))

	first, err := engine.CategoryProducts(ctx, domain.CategoryStationary)
	require.NoError(t, err)
	require.Len(t, first.Products, 1)
	assert.Equal(t, int32(1), reader.listCalls.Load())

	_, err = repo.SetStock(ctx, "stat-00", 99)
	require.NoError(t, err)

	cached, err := engine.CategoryProducts(ctx, domain.CategoryStationary)
	require.NoError(t, err)
	assert.Equal(t, 5, cached.Products[0].StockQuantity, "served from cache")
	assert.Equal(t, int32(1), reader.listCalls.Load())

	engine.Invalidate(ctx)

	fresh, err := engine.CategoryProducts(ctx, domain.CategoryStationary)
	require.NoError(t, err)
	assert.Equal(t, 99, fresh.Products[0].StockQuantity)
	assert.Equal(t, int32(2), reader.listCalls.Load())
	require.NotNil(t, fresh.Products[0].Variant, "variants survive the JSON cache")
}

func TestCacheOutageFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisDashboardCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = redisCache.Close() })
	mr.Close()

	engine := NewEngine(memory.NewSeeded(), redisCache, time.Minute, zaptest.NewLogger(t))
	groups, err := engine.PopularProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 4)
}

func TestStoreFailurePropagates(t *testing.T) {
	engine := NewEngine(failingReader{Reader: memory.New()}, nil, 0, nil)
	_, err := engine.PopularProducts(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
}

func TestCacheKeyDependsOnCategories(t *testing.T) {
	a := buildCacheKey("popular", domain.CategoryStationary)
	b := buildCacheKey("popular", domain.CategoryPhotography)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, buildCacheKey("popular", domain.CategoryStationary))
}
