package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
	"inventra/backend/internal/xid"
)

// Photography prices applied when a create request leaves them out.
const (
	defaultSingleSidePrice = 3.0
	defaultDoubleSidePrice = 2.0
)

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateStruct(req); err != nil {
		return domain.Product{}, err
	}

	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		return domain.Product{}, errors.WithMessagef(store.ErrInvalidCategory, "category %q", req.Category)
	}

	variant, err := s.buildVariant(category, req)
	if err != nil {
		return domain.Product{}, err
	}

	if req.ProductID == "" {
		req.ProductID = xid.New("PROD")
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		ProductID:     req.ProductID,
		Name:          req.Name,
		Category:      category,
		StockQuantity: req.StockQuantity,
		Rating:        req.Rating,
		Variant:       variant,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ProductID,
		fmt.Sprintf("name=%s,category=%s,stock=%d", created.Name, created.Category, created.StockQuantity))
	s.dashboard.Invalidate(ctx)
	return *created, nil
}

func (s *Service) buildVariant(category domain.Category, req domain.ProductCreateRequest) (domain.ProductVariant, error) {
	var variant domain.ProductVariant
	switch category {
	case domain.CategoryLifeProducts:
		life := domain.LifeProduct{
			Price:        req.Price,
			Type:         strings.TrimSpace(req.Type),
			Manufacturer: strings.TrimSpace(req.Manufacturer),
		}
		if raw := strings.TrimSpace(req.ExpiryDate); raw != "" {
			expiry, err := ParseTime(raw, false)
			if err != nil {
				return nil, errors.WithMessagef(store.ErrInvalidInput, "expiryDate %q", raw)
			}
			life.ExpiryDate = &expiry
		}
		variant = life
	case domain.CategoryStationary:
		variant = domain.StationaryProduct{Price: req.Price, Type: strings.TrimSpace(req.Type)}
	case domain.CategoryPhotography:
		photo := domain.PhotographyService{
			SingleSidePrice: defaultSingleSidePrice,
			DoubleSidePrice: defaultDoubleSidePrice,
			ServiceType:     strings.TrimSpace(req.ServiceType),
		}
		if req.SingleSidePrice != nil {
			photo.SingleSidePrice = *req.SingleSidePrice
		}
		if req.DoubleSidePrice != nil {
			photo.DoubleSidePrice = *req.DoubleSidePrice
		}
		variant = photo
	case domain.CategoryPublications:
		variant = domain.Publication{
			Price:     req.Price,
			Author:    strings.TrimSpace(req.Author),
			Publisher: strings.TrimSpace(req.Publisher),
			ISBN:      strings.TrimSpace(req.ISBN),
		}
	default:
		return nil, store.ErrInvalidCategory
	}

	if err := s.validateStruct(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

// ListProducts matches search case-insensitively against product names. An
// empty search returns the whole catalog.
func (s *Service) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, domain.ProductFilter{Search: strings.TrimSpace(search)})
}

// ListAvailableProducts returns products that can currently be sold.
func (s *Service) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, domain.ProductFilter{InStockOnly: true})
}

func (s *Service) UpdateStock(ctx context.Context, productID string, req domain.StockUpdateRequest) (domain.Product, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Product{}, err
	}
	if *req.StockQuantity < 0 {
		return domain.Product{}, store.ErrNegativeStock
	}

	productID = strings.TrimSpace(productID)
	before, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	updated, err := s.repo.SetStock(ctx, productID, *req.StockQuantity)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "stock_update", "product", productID,
		fmt.Sprintf("stock=%d->%d", before.StockQuantity, updated.StockQuantity))
	s.logger.Info("stock updated",
		zap.String("productId", productID),
		zap.Int("from", before.StockQuantity),
		zap.Int("to", updated.StockQuantity))
	s.dashboard.Invalidate(ctx)
	return *updated, nil
}

// ParseTime accepts RFC3339 timestamps or YYYY-MM-DD dates. With endOfDay a
// bare date resolves to the last nanosecond of that day.
func ParseTime(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.Errorf("unrecognized time %q", raw)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
