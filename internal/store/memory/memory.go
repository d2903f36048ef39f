package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
)

type Store struct {
	mu                sync.RWMutex
	products          map[string]domain.Product
	sales             []domain.Sale
	purchases         []domain.Purchase
	ledger            []domain.Transaction
	salesSummaries    map[string]domain.SalesSummary
	purchaseSummaries map[string]domain.PurchaseSummary
	auditLogs         []domain.AuditLog

	// locks holds one *sync.Mutex per product id. Stock changes hold the
	// product lock for the whole read, check and write sequence.
	locks sync.Map

	hook func(stage string) error
}

type Option func(*Store)

// WithWriteHook installs a callback invoked between the individual writes of
// a sale or purchase ("sale.stock", "sale.record", "purchase.stock",
// "purchase.record"). A non-nil error aborts the operation and every write
// made so far is undone.
func WithWriteHook(hook func(stage string) error) Option {
	return func(s *Store) {
		s.hook = hook
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		products:          make(map[string]domain.Product),
		salesSummaries:    make(map[string]domain.SalesSummary),
		purchaseSummaries: make(map[string]domain.PurchaseSummary),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store holding a small demo catalog.
func NewSeeded(opts ...Option) *Store {
	s := New(opts...)
	for _, p := range demoCatalog() {
		s.products[p.ProductID] = p
	}
	return s
}

func demoCatalog() []domain.Product {
	rating := func(v float64) *float64 { return &v }
	return []domain.Product{
		{ProductID: "LIFE-SOAP-01", Name: "Herbal Bath Soap", Category: domain.CategoryLifeProducts, StockQuantity: 40, Rating: rating(4.2),
			Variant: domain.LifeProduct{Price: 2.5, Type: "personal care", Manufacturer: "Green Leaf"}},
		{ProductID: "LIFE-TOOTH-01", Name: "Mint Toothpaste", Category: domain.CategoryLifeProducts, StockQuantity: 25,
			Variant: domain.LifeProduct{Price: 3.2, Type: "personal care", Manufacturer: "Bright Co"}},
		{ProductID: "STAT-PEN-01", Name: "Blue Ballpoint Pen", Category: domain.CategoryStationary, StockQuantity: 120, Rating: rating(4.6),
			Variant: domain.StationaryProduct{Price: 0.8, Type: "pen"}},
		{ProductID: "STAT-NOTE-01", Name: "A5 Ruled Notebook", Category: domain.CategoryStationary, StockQuantity: 60,
			Variant: domain.StationaryProduct{Price: 4.5, Type: "notebook"}},
		{ProductID: "STAT-GLUE-01", Name: "Glue Stick", Category: domain.CategoryStationary, StockQuantity: 0,
			Variant: domain.StationaryProduct{Price: 1.1, Type: "adhesive"}},
		{ProductID: "PHOTO-BW-01", Name: "Black and White Copy", Category: domain.CategoryPhotography, StockQuantity: 500,
			Variant: domain.PhotographyService{SingleSidePrice: 0.1, DoubleSidePrice: 0.15, ServiceType: "copy"}},
		{ProductID: "PHOTO-COLOR-01", Name: "Colour Print", Category: domain.CategoryPhotography, StockQuantity: 300, Rating: rating(4.0),
			Variant: domain.PhotographyService{SingleSidePrice: 0.5, DoubleSidePrice: 0.9, ServiceType: "print"}},
		{ProductID: "PUB-GO-01", Name: "The Go Programming Language", Category: domain.CategoryPublications, StockQuantity: 8, Rating: rating(4.8),
			Variant: domain.Publication{Price: 38, Author: "Donovan and Kernighan", Publisher: "Addison-Wesley", ISBN: "9780134190440"}},
		{ProductID: "PUB-ATLAS-01", Name: "World Atlas", Category: domain.CategoryPublications, StockQuantity: 3,
			Variant: domain.Publication{Price: 25, Author: "Various", Publisher: "Globe Press", ISBN: "9780000000001"}},
	}
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ProductID == "" || product.Name == "" || product.StockQuantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if !product.Category.Valid() {
		return nil, store.ErrInvalidCategory
	}
	if product.Variant == nil || product.Variant.Category() != product.Category {
		return nil, errors.WithMessage(store.ErrInvalidInput, "extension does not match category")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ProductID]; exists {
		return nil, errors.Wrapf(store.ErrDuplicateProduct, "product %s", product.ProductID)
	}
	s.products[product.ProductID] = cloneProduct(product)

	created := cloneProduct(product)
	return &created, nil
}

func (s *Store) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.RLock()
	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.InStockOnly && p.StockQuantity <= 0 {
			continue
		}
		result = append(result, cloneProduct(p))
	}
	s.mu.RUnlock()

	if filter.OrderByStock {
		slices.SortFunc(result, func(a, b domain.Product) int {
			if c := cmp.Compare(b.StockQuantity, a.StockQuantity); c != 0 {
				return c
			}
			return strings.Compare(a.ProductID, b.ProductID)
		})
	} else {
		slices.SortFunc(result, func(a, b domain.Product) int {
			return strings.Compare(a.ProductID, b.ProductID)
		})
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) SetStock(_ context.Context, productID string, qty int) (*domain.Product, error) {
	if qty < 0 {
		return nil, store.ErrNegativeStock
	}

	unlock := s.lockProduct(productID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
	}
	p.StockQuantity = qty
	s.products[productID] = p

	out := cloneProduct(p)
	return &out, nil
}

func (s *Store) ProcessSale(_ context.Context, productID string, qty int, build store.SaleFunc) (*domain.SaleReceipt, error) {
	if qty < 1 {
		return nil, errors.WithMessage(store.ErrInvalidInput, "quantity must be at least 1")
	}

	unlock := s.lockProduct(productID)
	defer unlock()

	s.mu.RLock()
	product, ok := s.products[productID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
	}
	if product.StockQuantity < qty {
		return nil, errors.Wrapf(store.ErrInsufficientStock, "product %s has %d, requested %d", productID, product.StockQuantity, qty)
	}

	sale, tx, err := build(cloneProduct(product))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.products[productID]
	after := before
	after.StockQuantity -= qty
	s.products[productID] = after
	if err := s.fire("sale.stock"); err != nil {
		s.products[productID] = before
		return nil, err
	}

	s.sales = append(s.sales, sale)
	if err := s.fire("sale.record"); err != nil {
		s.sales = s.sales[:len(s.sales)-1]
		s.products[productID] = before
		return nil, err
	}

	s.ledger = append(s.ledger, cloneTransaction(tx))

	return &domain.SaleReceipt{Sale: sale, Transaction: cloneTransaction(tx)}, nil
}

func (s *Store) ProcessPurchase(_ context.Context, productID string, qty int, build store.PurchaseFunc) (*domain.PurchaseReceipt, error) {
	if qty < 1 {
		return nil, errors.WithMessage(store.ErrInvalidInput, "quantity must be at least 1")
	}

	unlock := s.lockProduct(productID)
	defer unlock()

	s.mu.RLock()
	product, ok := s.products[productID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(store.ErrNotFound, "product %s", productID)
	}

	purchase, tx, err := build(cloneProduct(product))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.products[productID]
	after := before
	after.StockQuantity += qty
	s.products[productID] = after
	if err := s.fire("purchase.stock"); err != nil {
		s.products[productID] = before
		return nil, err
	}

	s.purchases = append(s.purchases, purchase)
	if err := s.fire("purchase.record"); err != nil {
		s.purchases = s.purchases[:len(s.purchases)-1]
		s.products[productID] = before
		return nil, err
	}

	s.ledger = append(s.ledger, cloneTransaction(tx))

	return &domain.PurchaseReceipt{Purchase: purchase, Transaction: cloneTransaction(tx)}, nil
}

func (s *Store) AppendTransaction(_ context.Context, tx domain.Transaction) error {
	if tx.TransactionID == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ProductID != nil {
		if _, ok := s.products[*tx.ProductID]; !ok {
			return errors.Wrapf(store.ErrNotFound, "product %s", *tx.ProductID)
		}
	}
	tx.Product = nil
	s.ledger = append(s.ledger, cloneTransaction(tx))
	return nil
}

func (s *Store) ListTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	result := make([]domain.Transaction, 0, len(s.ledger))
	for _, tx := range s.ledger {
		if !filter.Matches(tx) {
			continue
		}
		out := cloneTransaction(tx)
		if tx.ProductID != nil {
			if p, ok := s.products[*tx.ProductID]; ok {
				summary := p.Summary()
				out.Product = &summary
			}
		}
		result = append(result, out)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b domain.Transaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(b.TransactionID, a.TransactionID)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) SumSales(_ context.Context, from time.Time, to time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, sale := range s.sales {
		if inRange(sale.Timestamp, from, to) {
			total += sale.TotalAmount
		}
	}
	return total, nil
}

func (s *Store) SumPurchases(_ context.Context, from time.Time, to time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, purchase := range s.purchases {
		if inRange(purchase.Timestamp, from, to) {
			total += purchase.TotalCost
		}
	}
	return total, nil
}

func (s *Store) UpsertSalesSummary(_ context.Context, summary domain.SalesSummary) error {
	key := dateKey(summary.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.salesSummaries[key]; ok {
		summary.SalesSummaryID = existing.SalesSummaryID
	}
	if summary.SalesSummaryID == "" {
		return store.ErrInvalidInput
	}
	s.salesSummaries[key] = summary
	return nil
}

func (s *Store) UpsertPurchaseSummary(_ context.Context, summary domain.PurchaseSummary) error {
	key := dateKey(summary.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.purchaseSummaries[key]; ok {
		summary.PurchaseSummaryID = existing.PurchaseSummaryID
	}
	if summary.PurchaseSummaryID == "" {
		return store.ErrInvalidInput
	}
	s.purchaseSummaries[key] = summary
	return nil
}

func (s *Store) ListSalesSummaries(_ context.Context, limit int) ([]domain.SalesSummary, error) {
	s.mu.RLock()
	result := make([]domain.SalesSummary, 0, len(s.salesSummaries))
	for _, summary := range s.salesSummaries {
		result = append(result, summary)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b domain.SalesSummary) int {
		return b.Date.Compare(a.Date)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ListPurchaseSummaries(_ context.Context, limit int) ([]domain.PurchaseSummary, error) {
	s.mu.RLock()
	result := make([]domain.PurchaseSummary, 0, len(s.purchaseSummaries))
	for _, summary := range s.purchaseSummaries {
		result = append(result, summary)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b domain.PurchaseSummary) int {
		return b.Date.Compare(a.Date)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	result := slices.Clone(s.auditLogs)
	s.mu.RUnlock()

	slices.SortStableFunc(result, func(a, b domain.AuditLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) lockProduct(productID string) func() {
	v, _ := s.locks.LoadOrStore(productID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *Store) fire(stage string) error {
	if s.hook == nil {
		return nil
	}
	return s.hook(stage)
}

func inRange(ts time.Time, from time.Time, to time.Time) bool {
	return !ts.Before(from) && ts.Before(to)
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func cloneProduct(p domain.Product) domain.Product {
	out := p
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	if life, ok := p.Variant.(domain.LifeProduct); ok && life.ExpiryDate != nil {
		expiry := *life.ExpiryDate
		life.ExpiryDate = &expiry
		out.Variant = life
	}
	return out
}

func cloneTransaction(tx domain.Transaction) domain.Transaction {
	out := tx
	if tx.ProductID != nil {
		id := *tx.ProductID
		out.ProductID = &id
	}
	if tx.ProductCategory != nil {
		c := *tx.ProductCategory
		out.ProductCategory = &c
	}
	if tx.Product != nil {
		p := *tx.Product
		out.Product = &p
	}
	return out
}
