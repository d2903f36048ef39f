// Package storetest holds the behavioural contract every store.Repository
// implementation must satisfy. Implementations call Run from their own
// tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
)

// ErrInjected is the failure a Harness.NewFailing repository raises while
// writing the ledger record of a sale.
var ErrInjected = errors.New("injected ledger failure")

var seq atomic.Int64

type Harness struct {
	// New returns an empty repository.
	New func(t *testing.T) store.Repository
	// NewFailing returns an empty repository whose sale ledger write fails
	// after the stock decrement has been issued.
	NewFailing func(t *testing.T) store.Repository
}

func Run(t *testing.T, h Harness) {
	t.Run("CreateAndGetEveryVariant", func(t *testing.T) { testCreateAndGet(t, h) })
	t.Run("CreateDuplicateLeavesOriginal", func(t *testing.T) { testCreateDuplicate(t, h) })
	t.Run("CreateRejectsMismatchedVariant", func(t *testing.T) { testCreateMismatch(t, h) })
	t.Run("ListProductsFilters", func(t *testing.T) { testListProducts(t, h) })
	t.Run("SetStock", func(t *testing.T) { testSetStock(t, h) })
	t.Run("StationarySaleScenario", func(t *testing.T) { testStationaryScenario(t, h) })
	t.Run("SaleUnknownProduct", func(t *testing.T) { testSaleUnknownProduct(t, h) })
	t.Run("PhotographyUnitPrice", func(t *testing.T) { testPhotographyPrice(t, h) })
	t.Run("ConcurrentSalesNeverOversell", func(t *testing.T) { testConcurrentSales(t, h) })
	t.Run("ConcurrentSalesAcrossProducts", func(t *testing.T) { testConcurrentAcrossProducts(t, h) })
	t.Run("BuildErrorAbortsSale", func(t *testing.T) { testBuildErrorAborts(t, h) })
	t.Run("PurchaseRestocks", func(t *testing.T) { testPurchase(t, h) })
	t.Run("TransactionsFilterAndOrder", func(t *testing.T) { testListTransactions(t, h) })
	t.Run("Summaries", func(t *testing.T) { testSummaries(t, h) })
	t.Run("AuditLogs", func(t *testing.T) { testAuditLogs(t, h) })
	if h.NewFailing != nil {
		t.Run("InjectedFailureIsAtomic", func(t *testing.T) { testInjectedFailure(t, h) })
	}
}

func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func ptr[T any](v T) *T { return &v }

func Stationary(id string, price float64, stock int) domain.Product {
	return domain.Product{
		ProductID:     id,
		Name:          "Stationary " + id,
		Category:      domain.CategoryStationary,
		StockQuantity: stock,
		Variant:       domain.StationaryProduct{Price: price, Type: "pen"},
	}
}

// SaleBuilder mirrors what the ledger service builds for a sale.
func SaleBuilder(qty int, total float64, singleSided *bool, at time.Time) store.SaleFunc {
	return func(p domain.Product) (domain.Sale, domain.Transaction, error) {
		sale := domain.Sale{
			SaleID:      fmt.Sprintf("SALE_%s_%d", p.ProductID, seq.Add(1)),
			ProductID:   p.ProductID,
			Quantity:    qty,
			UnitPrice:   domain.UnitPrice(p, singleSided),
			TotalAmount: total,
			Timestamp:   at,
		}
		if p.Category == domain.CategoryPhotography {
			sale.IsSingleSided = singleSided
		}
		category := p.Category
		productID := p.ProductID
		tx := domain.Transaction{
			TransactionID:   fmt.Sprintf("TRANS_%s_%d", p.ProductID, seq.Add(1)),
			Type:            domain.TransactionIncome,
			Amount:          total,
			Quantity:        qty,
			ProductID:       &productID,
			ProductCategory: &category,
			Description:     fmt.Sprintf("Sale of %d units of product %s", qty, p.ProductID),
			Timestamp:       at,
		}
		return sale, tx, nil
	}
}

func purchaseBuilder(qty int, unitCost float64, at time.Time) store.PurchaseFunc {
	return func(p domain.Product) (domain.Purchase, domain.Transaction, error) {
		category := p.Category
		productID := p.ProductID
		total := unitCost * float64(qty)
		return domain.Purchase{
				PurchaseID: fmt.Sprintf("PURCHASE_%s_%d", p.ProductID, seq.Add(1)),
				ProductID:  p.ProductID,
				Quantity:   qty,
				UnitCost:   unitCost,
				TotalCost:  total,
				Timestamp:  at,
			}, domain.Transaction{
				TransactionID:   fmt.Sprintf("TRANS_P_%s_%d", p.ProductID, seq.Add(1)),
				Type:            domain.TransactionExpense,
				Amount:          total,
				Quantity:        qty,
				ProductID:       &productID,
				ProductCategory: &category,
				Description:     fmt.Sprintf("Purchase of %d units of product %s", qty, p.ProductID),
				Timestamp:       at,
			}, nil
	}
}

func mustCreate(t *testing.T, repo store.Repository, p domain.Product) {
	t.Helper()
	_, err := repo.CreateProduct(context.Background(), p)
	require.NoError(t, err)
}

func testCreateAndGet(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	expiry := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	products := []domain.Product{
		{ProductID: "life-1", Name: "Hand Soap", Category: domain.CategoryLifeProducts, StockQuantity: 4, Rating: ptr(4.5),
			Variant: domain.LifeProduct{Price: 2.5, Type: "care", Manufacturer: "Acme", ExpiryDate: &expiry}},
		{ProductID: "stat-1", Name: "Pencil", Category: domain.CategoryStationary, StockQuantity: 10,
			Variant: domain.StationaryProduct{Price: 0.5, Type: "pencil"}},
		{ProductID: "photo-1", Name: "Print", Category: domain.CategoryPhotography, StockQuantity: 100,
			Variant: domain.PhotographyService{SingleSidePrice: 3, DoubleSidePrice: 5, ServiceType: "print"}},
		{ProductID: "pub-1", Name: "Atlas", Category: domain.CategoryPublications, StockQuantity: 0,
			Variant: domain.Publication{Price: 25, Author: "Various", Publisher: "Globe", ISBN: "978000"}},
	}

	for _, p := range products {
		created, err := repo.CreateProduct(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, p, *created)

		got, err := repo.GetProduct(ctx, p.ProductID)
		require.NoError(t, err)
		assert.Equal(t, p, *got)
		require.NotNil(t, got.Variant)
		assert.Equal(t, got.Category, got.Variant.Category())
	}

	_, err := repo.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testCreateDuplicate(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	original := Stationary("dup-1", 10, 5)
	mustCreate(t, repo, original)

	clash := domain.Product{
		ProductID:     "dup-1",
		Name:          "Clash",
		Category:      domain.CategoryPublications,
		StockQuantity: 1,
		Variant:       domain.Publication{Price: 9, Author: "a", Publisher: "b", ISBN: "c"},
	}
	_, err := repo.CreateProduct(ctx, clash)
	require.ErrorIs(t, err, store.ErrDuplicateProduct)
	assert.Equal(t, store.KindConflict, store.KindOf(err))

	got, err := repo.GetProduct(ctx, "dup-1")
	require.NoError(t, err)
	assert.Equal(t, original, *got)
}

func testCreateMismatch(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	_, err := repo.CreateProduct(ctx, domain.Product{
		ProductID: "bad-1",
		Name:      "Mismatch",
		Category:  domain.CategoryStationary,
		Variant:   domain.Publication{Price: 1, Author: "a", Publisher: "b", ISBN: "c"},
	})
	require.Error(t, err)
	assert.Equal(t, store.KindValidation, store.KindOf(err))

	_, err = repo.CreateProduct(ctx, domain.Product{
		ProductID: "bad-2",
		Name:      "Unknown",
		Category:  domain.Category("FOOD"),
		Variant:   domain.StationaryProduct{Price: 1, Type: "x"},
	})
	require.ErrorIs(t, err, store.ErrInvalidCategory)

	_, err = repo.GetProduct(ctx, "bad-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListProducts(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	mustCreate(t, repo, domain.Product{ProductID: "a", Name: "Blue Pen", Category: domain.CategoryStationary, StockQuantity: 5,
		Variant: domain.StationaryProduct{Price: 1, Type: "pen"}})
	mustCreate(t, repo, domain.Product{ProductID: "b", Name: "RED PEN", Category: domain.CategoryStationary, StockQuantity: 0,
		Variant: domain.StationaryProduct{Price: 1, Type: "pen"}})
	mustCreate(t, repo, domain.Product{ProductID: "c", Name: "Notebook", Category: domain.CategoryStationary, StockQuantity: 5,
		Variant: domain.StationaryProduct{Price: 3, Type: "book"}})
	mustCreate(t, repo, domain.Product{ProductID: "d", Name: "Novel", Category: domain.CategoryPublications, StockQuantity: 9,
		Variant: domain.Publication{Price: 12, Author: "x", Publisher: "y", ISBN: "z"}})

	all, err := repo.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(all))

	pens, err := repo.ListProducts(ctx, domain.ProductFilter{Search: "pEn"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(pens))

	available, err := repo.ListProducts(ctx, domain.ProductFilter{InStockOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, ids(available))

	top, err := repo.ListProducts(ctx, domain.ProductFilter{Category: domain.CategoryStationary, OrderByStock: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(top), "equal stock breaks ties by product id")
}

func testSetStock(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)
	mustCreate(t, repo, Stationary("s-1", 2, 5))

	updated, err := repo.SetStock(ctx, "s-1", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, updated.StockQuantity)

	_, err = repo.SetStock(ctx, "s-1", -1)
	assert.ErrorIs(t, err, store.ErrNegativeStock)

	_, err = repo.SetStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	txs, err := repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs, "stock overwrites never reach the ledger")
}

func testStationaryScenario(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)
	mustCreate(t, repo, Stationary("stat-10", 10, 5))

	at := Now()
	receipt, err := repo.ProcessSale(ctx, "stat-10", 3, SaleBuilder(3, 30, nil, at))
	require.NoError(t, err)
	assert.Equal(t, 10.0, receipt.Sale.UnitPrice)
	assert.Nil(t, receipt.Sale.IsSingleSided)
	assert.Equal(t, domain.TransactionIncome, receipt.Transaction.Type)
	assert.Equal(t, 30.0, receipt.Transaction.Amount)
	require.NotNil(t, receipt.Transaction.ProductCategory)
	assert.Equal(t, domain.CategoryStationary, *receipt.Transaction.ProductCategory)

	p, err := repo.GetProduct(ctx, "stat-10")
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity)

	txs, err := repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 30.0, txs[0].Amount)
	require.NotNil(t, txs[0].Product)
	assert.Equal(t, 2, txs[0].Product.StockQuantity)

	total, err := repo.SumSales(ctx, at.Add(-time.Minute), at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 30.0, total)

	_, err = repo.ProcessSale(ctx, "stat-10", 10, SaleBuilder(10, 100, nil, Now()))
	require.ErrorIs(t, err, store.ErrInsufficientStock)
	assert.Equal(t, store.KindConflict, store.KindOf(err))

	p, err = repo.GetProduct(ctx, "stat-10")
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity)

	txs, err = repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	total, err = repo.SumSales(ctx, at.Add(-time.Minute), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 30.0, total)
}

func testSaleUnknownProduct(t *testing.T, h Harness) {
	repo := h.New(t)
	_, err := repo.ProcessSale(context.Background(), "ghost", 1, SaleBuilder(1, 1, nil, Now()))
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, store.KindNotFound, store.KindOf(err))
}

func testPhotographyPrice(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)
	mustCreate(t, repo, domain.Product{
		ProductID:     "photo-3-5",
		Name:          "Photo Print",
		Category:      domain.CategoryPhotography,
		StockQuantity: 10,
		Variant:       domain.PhotographyService{SingleSidePrice: 3.0, DoubleSidePrice: 5.0},
	})

	single, err := repo.ProcessSale(ctx, "photo-3-5", 2, SaleBuilder(2, 6, ptr(true), Now()))
	require.NoError(t, err)
	assert.Equal(t, 3.0, single.Sale.UnitPrice)
	require.NotNil(t, single.Sale.IsSingleSided)
	assert.True(t, *single.Sale.IsSingleSided)

	double, err := repo.ProcessSale(ctx, "photo-3-5", 2, SaleBuilder(2, 10, ptr(false), Now().Add(time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, 5.0, double.Sale.UnitPrice)
	require.NotNil(t, double.Sale.IsSingleSided)
	assert.False(t, *double.Sale.IsSingleSided)
}

func testConcurrentSales(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	const stock = 10
	const callers = 25
	mustCreate(t, repo, Stationary("hot-1", 1, stock))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			at := Now().Add(time.Duration(i) * time.Microsecond)
			_, err := repo.ProcessSale(ctx, "hot-1", 1, SaleBuilder(1, 1, nil, at))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, store.ErrInsufficientStock):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, stock, successes)
	assert.Equal(t, callers-stock, conflicts)

	p, err := repo.GetProduct(ctx, "hot-1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)

	txs, err := repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, stock)
}

func testConcurrentAcrossProducts(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	productIDs := []string{"multi-a", "multi-b", "multi-c"}
	for _, id := range productIDs {
		mustCreate(t, repo, Stationary(id, 2, 4))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4*len(productIDs))
	for i, id := range productIDs {
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(id string, n int) {
				defer wg.Done()
				at := Now().Add(time.Duration(n) * time.Microsecond)
				if _, err := repo.ProcessSale(ctx, id, 1, SaleBuilder(1, 2, nil, at)); err != nil {
					errs <- err
				}
			}(id, i*10+j)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected sale error: %v", err)
	}
	for _, id := range productIDs {
		p, err := repo.GetProduct(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, p.StockQuantity, id)
	}
}

func testBuildErrorAborts(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)
	mustCreate(t, repo, Stationary("abort-1", 10, 5))

	_, err := repo.ProcessSale(ctx, "abort-1", 2, func(domain.Product) (domain.Sale, domain.Transaction, error) {
		return domain.Sale{}, domain.Transaction{}, store.ErrAmountMismatch
	})
	require.ErrorIs(t, err, store.ErrAmountMismatch)

	p, err := repo.GetProduct(ctx, "abort-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)

	txs, err := repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func testInjectedFailure(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.NewFailing(t)
	mustCreate(t, repo, Stationary("fragile-1", 10, 5))

	at := Now()
	_, err := repo.ProcessSale(ctx, "fragile-1", 3, SaleBuilder(3, 30, nil, at))
	require.Error(t, err)

	p, err := repo.GetProduct(ctx, "fragile-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity, "stock decrement must be rolled back")

	txs, err := repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)

	total, err := repo.SumSales(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, total, "no sale record may survive")
}

func testPurchase(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)
	mustCreate(t, repo, Stationary("restock-1", 4, 1))

	at := Now()
	receipt, err := repo.ProcessPurchase(ctx, "restock-1", 6, purchaseBuilder(6, 2.5, at))
	require.NoError(t, err)
	assert.Equal(t, 15.0, receipt.Purchase.TotalCost)
	assert.Equal(t, domain.TransactionExpense, receipt.Transaction.Type)

	p, err := repo.GetProduct(ctx, "restock-1")
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockQuantity)

	total, err := repo.SumPurchases(ctx, at, at.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 15.0, total)

	_, err = repo.ProcessPurchase(ctx, "ghost", 1, purchaseBuilder(1, 1, Now()))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testListTransactions(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)
	mustCreate(t, repo, Stationary("ledger-1", 10, 50))

	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	_, err := repo.ProcessSale(ctx, "ledger-1", 1, SaleBuilder(1, 10, nil, base))
	require.NoError(t, err)
	_, err = repo.ProcessSale(ctx, "ledger-1", 2, SaleBuilder(2, 20, nil, base.Add(2*time.Hour)))
	require.NoError(t, err)

	require.NoError(t, repo.AppendTransaction(ctx, domain.Transaction{
		TransactionID: "TRANS_rent",
		Type:          domain.TransactionExpense,
		Amount:        30,
		Quantity:      1,
		Description:   "Shop rent",
		Timestamp:     base.Add(time.Hour),
	}))

	all, err := repo.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Hour), all[0].Timestamp.UTC())
	assert.Equal(t, "TRANS_rent", all[1].TransactionID)
	assert.Nil(t, all[1].Product)
	assert.Nil(t, all[1].ProductCategory)
	require.NotNil(t, all[2].Product)
	assert.Equal(t, "ledger-1", all[2].Product.ProductID)

	start := base
	end := base.Add(time.Hour)
	window, err := repo.ListTransactions(ctx, domain.TransactionFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Len(t, window, 2, "both bounds are inclusive")

	incomes, err := repo.ListTransactions(ctx, domain.TransactionFilter{Type: domain.TransactionIncome})
	require.NoError(t, err)
	assert.Len(t, incomes, 2)

	uncategorized, err := repo.ListTransactions(ctx, domain.TransactionFilter{Category: domain.CategoryUncategorized})
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "TRANS_rent", uncategorized[0].TransactionID)

	stationery, err := repo.ListTransactions(ctx, domain.TransactionFilter{Category: domain.CategoryStationary, Limit: 1})
	require.NoError(t, err)
	require.Len(t, stationery, 1)
	assert.Equal(t, 20.0, stationery[0].Amount)

	ghost := "ghost"
	err = repo.AppendTransaction(ctx, domain.Transaction{
		TransactionID: "TRANS_ghost",
		Type:          domain.TransactionExpense,
		Amount:        1,
		ProductID:     &ghost,
		Timestamp:     base,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testSummaries(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	day1 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, repo.UpsertSalesSummary(ctx, domain.SalesSummary{SalesSummaryID: "ss-1", TotalValue: 100, Date: day1}))
	require.NoError(t, repo.UpsertSalesSummary(ctx, domain.SalesSummary{SalesSummaryID: "ss-2", TotalValue: 150, ChangePercentage: ptr(50.0), Date: day2}))
	require.NoError(t, repo.UpsertSalesSummary(ctx, domain.SalesSummary{SalesSummaryID: "ss-2b", TotalValue: 175, ChangePercentage: ptr(75.0), Date: day2}))

	sales, err := repo.ListSalesSummaries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "ss-2", sales[0].SalesSummaryID, "upsert keeps the first id for a date")
	assert.Equal(t, 175.0, sales[0].TotalValue)
	require.NotNil(t, sales[0].ChangePercentage)
	assert.Equal(t, 75.0, *sales[0].ChangePercentage)
	assert.Nil(t, sales[1].ChangePercentage)
	assert.True(t, day1.Equal(sales[1].Date))

	require.NoError(t, repo.UpsertPurchaseSummary(ctx, domain.PurchaseSummary{PurchaseSummaryID: "ps-1", TotalPurchased: 40, Date: day1}))
	purchases, err := repo.ListPurchaseSummaries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, 40.0, purchases[0].TotalPurchased)
}

func testAuditLogs(t *testing.T, h Harness) {
	ctx := context.Background()
	repo := h.New(t)

	at := Now()
	require.NoError(t, repo.CreateAuditLog(ctx, domain.AuditLog{ID: "audit-1", Actor: "admin", ActorRole: "admin", Action: "stock_update",
		EntityType: "product", EntityID: "p-1", Detail: "5 -> 7", CreatedAt: at}))
	require.NoError(t, repo.CreateAuditLog(ctx, domain.AuditLog{ID: "audit-2", Actor: "system", ActorRole: "system", Action: "product_create",
		EntityType: "product", EntityID: "p-2", CreatedAt: at.Add(time.Second)}))

	logs, err := repo.ListAuditLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "audit-2", logs[0].ID)
	assert.Equal(t, "5 -> 7", logs[1].Detail)
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ProductID)
	}
	return out
}
