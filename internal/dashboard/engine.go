// Package dashboard builds the read models behind the dashboard endpoints:
// best-stocked products per category and the latest sales and purchase
// rollups.
package dashboard

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inventra/backend/internal/cache"
	"inventra/backend/internal/domain"
)

const (
	PopularLimit = 5
	SummaryLimit = 5
)

// Reader is the slice of the repository the engine needs.
type Reader interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListSalesSummaries(ctx context.Context, limit int) ([]domain.SalesSummary, error)
	ListPurchaseSummaries(ctx context.Context, limit int) ([]domain.PurchaseSummary, error)
}

type Engine struct {
	repo     Reader
	cache    cache.DashboardCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewEngine returns an engine that caches results for cacheTTL. A non-positive
// TTL disables caching.
func NewEngine(repo Reader, cacheStore cache.DashboardCache, cacheTTL time.Duration, logger *zap.Logger) *Engine {
	if cacheStore == nil || cacheTTL <= 0 {
		cacheStore = cache.NoopDashboardCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		repo:     repo,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// PopularProducts returns one group per category in canonical order.
func (e *Engine) PopularProducts(ctx context.Context) ([]domain.CategoryProducts, error) {
	var groups []domain.CategoryProducts
	err := e.cached(ctx, buildCacheKey("popular", domain.Categories...), &groups, func() (any, error) {
		var err error
		groups, err = e.popular(ctx, domain.Categories)
		return groups, err
	})
	return groups, err
}

func (e *Engine) CategoryProducts(ctx context.Context, category domain.Category) (domain.CategoryProducts, error) {
	var group domain.CategoryProducts
	err := e.cached(ctx, buildCacheKey("popular", category), &group, func() (any, error) {
		groups, err := e.popular(ctx, []domain.Category{category})
		if err != nil {
			return nil, err
		}
		group = groups[0]
		return group, nil
	})
	return group, err
}

func (e *Engine) Metrics(ctx context.Context) (domain.DashboardMetrics, error) {
	var metrics domain.DashboardMetrics
	err := e.cached(ctx, buildCacheKey("metrics"), &metrics, func() (any, error) {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			groups, err := e.popular(gctx, domain.Categories)
			metrics.PopularProducts = groups
			return err
		})
		g.Go(func() error {
			sales, err := e.repo.ListSalesSummaries(gctx, SummaryLimit)
			metrics.SalesSummary = sales
			return errors.Wrap(err, "list sales summaries")
		})
		g.Go(func() error {
			purchases, err := e.repo.ListPurchaseSummaries(gctx, SummaryLimit)
			metrics.PurchaseSummary = purchases
			return errors.Wrap(err, "list purchase summaries")
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if metrics.SalesSummary == nil {
			metrics.SalesSummary = []domain.SalesSummary{}
		}
		if metrics.PurchaseSummary == nil {
			metrics.PurchaseSummary = []domain.PurchaseSummary{}
		}
		return metrics, nil
	})
	return metrics, err
}

// Invalidate drops cached read models after a catalog or ledger write.
func (e *Engine) Invalidate(ctx context.Context) {
	if err := e.cache.Invalidate(ctx); err != nil {
		e.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (e *Engine) popular(ctx context.Context, categories []domain.Category) ([]domain.CategoryProducts, error) {
	groups := make([]domain.CategoryProducts, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			products, err := e.repo.ListProducts(gctx, domain.ProductFilter{
				Category:     category,
				OrderByStock: true,
				Limit:        PopularLimit,
			})
			if err != nil {
				return errors.Wrapf(err, "popular products for %s", category)
			}
			if products == nil {
				products = []domain.Product{}
			}
			groups[i] = domain.CategoryProducts{Category: category, Products: products}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

// cached fills dest from the cache or, on a miss, from load. Cache failures
// are logged and fall through to load.
func (e *Engine) cached(ctx context.Context, key string, dest any, load func() (any, error)) error {
	hit, err := e.cache.Get(ctx, key, dest)
	if err != nil {
		e.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return nil
	}

	value, err := load()
	if err != nil {
		return err
	}
	if err := e.cache.Set(ctx, key, value, e.cacheTTL); err != nil {
		e.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func buildCacheKey(kind string, categories ...domain.Category) string {
	parts := make([]string, 0, len(categories)+1)
	parts = append(parts, kind)
	for _, c := range categories {
		parts = append(parts, string(c))
	}
	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return kind + ":" + hex.EncodeToString(hash[:])
}
