package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
	"inventra/backend/internal/store/memory"
)

var fixedNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func newTestService(opts ...Option) (*Service, *memory.Store) {
	repo := memory.New()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(repo, nil, opts...), repo
}

func boolPtr(v bool) *bool        { return &v }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func mustCreate(t *testing.T, svc *Service, req domain.ProductCreateRequest) domain.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), req)
	if err != nil {
		t.Fatalf("create product %s failed: %v", req.ProductID, err)
	}
	return p
}

func stationaryRequest(id string, price float64, stock int) domain.ProductCreateRequest {
	return domain.ProductCreateRequest{
		ProductID:     id,
		Name:          "Gel Pen",
		Category:      "STATIONARY",
		StockQuantity: stock,
		Price:         price,
		Type:          "pen",
	}
}

func TestStationarySaleScenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, stationaryRequest("prod-stat-1", 10, 5))

	receipt, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "prod-stat-1", Quantity: 3, TotalAmount: 30})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if receipt.Sale.UnitPrice != 10 || receipt.Sale.TotalAmount != 30 {
		t.Fatalf("unexpected sale amounts: %+v", receipt.Sale)
	}
	if receipt.Sale.IsSingleSided != nil {
		t.Fatalf("non photography sale must not carry isSingleSided")
	}
	if !strings.HasPrefix(receipt.Sale.SaleID, "SALE_") || !strings.HasPrefix(receipt.Transaction.TransactionID, "TRANS_") {
		t.Fatalf("unexpected ids: %s %s", receipt.Sale.SaleID, receipt.Transaction.TransactionID)
	}
	if receipt.Transaction.Type != domain.TransactionIncome || receipt.Transaction.Amount != 30 {
		t.Fatalf("unexpected ledger entry: %+v", receipt.Transaction)
	}
	if receipt.Transaction.Description != "Sale of 3 units of product prod-stat-1" {
		t.Fatalf("unexpected description %q", receipt.Transaction.Description)
	}
	if !receipt.Sale.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected clock timestamp, got %s", receipt.Sale.Timestamp)
	}

	p, err := svc.GetProduct(ctx, "prod-stat-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if p.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", p.StockQuantity)
	}

	_, err = svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "prod-stat-1", Quantity: 10})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestEnforcePolicyDerivesAndChecksTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, stationaryRequest("pen", 1.25, 20))

	receipt, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "pen", Quantity: 3})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if receipt.Sale.TotalAmount != 3.75 {
		t.Fatalf("expected derived total 3.75, got %v", receipt.Sale.TotalAmount)
	}

	if _, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "pen", Quantity: 2, TotalAmount: 2.504}); err != nil {
		t.Fatalf("total within tolerance rejected: %v", err)
	}

	_, err = svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "pen", Quantity: 2, TotalAmount: 99})
	if !errors.Is(err, store.ErrAmountMismatch) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	if store.KindOf(err) != store.KindValidation {
		t.Fatalf("amount mismatch must be a validation error")
	}

	p, _ := svc.GetProduct(ctx, "pen")
	if p.StockQuantity != 15 {
		t.Fatalf("rejected sale must leave stock alone, got %d", p.StockQuantity)
	}
}

func TestTrustPolicyRecordsCallerTotal(t *testing.T) {
	svc, _ := newTestService(WithAmountPolicy(AmountPolicyTrust))
	mustCreate(t, svc, stationaryRequest("pen", 10, 5))

	receipt, err := svc.ProcessSale(context.Background(), domain.SaleRequest{ProductID: "pen", Quantity: 1, TotalAmount: 7.5})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if receipt.Sale.TotalAmount != 7.5 || receipt.Transaction.Amount != 7.5 {
		t.Fatalf("expected caller total, got %+v", receipt.Sale)
	}
}

func TestPhotographySaleUsesSidedness(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, domain.ProductCreateRequest{
		ProductID:       "photo-1",
		Name:            "Print",
		Category:        "photography",
		StockQuantity:   100,
		SingleSidePrice: floatPtr(3),
		DoubleSidePrice: floatPtr(5),
	})

	single, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "photo-1", Quantity: 2, IsSingleSided: boolPtr(true)})
	if err != nil {
		t.Fatalf("single sided sale failed: %v", err)
	}
	if single.Sale.UnitPrice != 3 || single.Sale.TotalAmount != 6 {
		t.Fatalf("unexpected single sided sale: %+v", single.Sale)
	}
	if single.Sale.IsSingleSided == nil || !*single.Sale.IsSingleSided {
		t.Fatalf("expected isSingleSided=true")
	}

	double, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "photo-1", Quantity: 1})
	if err != nil {
		t.Fatalf("double sided sale failed: %v", err)
	}
	if double.Sale.UnitPrice != 5 {
		t.Fatalf("expected double sided price 5, got %v", double.Sale.UnitPrice)
	}
	if double.Sale.IsSingleSided != nil {
		t.Fatalf("expected isSingleSided to stay unset, got %v", *double.Sale.IsSingleSided)
	}
}

func TestPhotographyDefaults(t *testing.T) {
	svc, _ := newTestService()
	p := mustCreate(t, svc, domain.ProductCreateRequest{Name: "Scan", Category: "PHOTOGRAPHY", StockQuantity: 1})

	if !strings.HasPrefix(p.ProductID, "PROD_") {
		t.Fatalf("expected generated product id, got %s", p.ProductID)
	}
	photo, ok := p.Variant.(domain.PhotographyService)
	if !ok {
		t.Fatalf("expected photography variant, got %T", p.Variant)
	}
	if photo.SingleSidePrice != defaultSingleSidePrice || photo.DoubleSidePrice != defaultDoubleSidePrice {
		t.Fatalf("unexpected default prices: %+v", photo)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.ProductCreateRequest
		want error
	}{
		{"missing name", domain.ProductCreateRequest{Category: "STATIONARY"}, store.ErrInvalidInput},
		{"negative stock", domain.ProductCreateRequest{Name: "x", Category: "STATIONARY", StockQuantity: -1}, store.ErrInvalidInput},
		{"rating out of range", domain.ProductCreateRequest{Name: "x", Category: "STATIONARY", Rating: floatPtr(6)}, store.ErrInvalidInput},
		{"unknown category", domain.ProductCreateRequest{Name: "x", Category: "FOOD"}, store.ErrInvalidCategory},
		{"bad expiry", domain.ProductCreateRequest{Name: "x", Category: "LIFE_PRODUCTS", ExpiryDate: "soon"}, store.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateLifeProductParsesExpiry(t *testing.T) {
	svc, _ := newTestService()
	p := mustCreate(t, svc, domain.ProductCreateRequest{
		ProductID:    "milk",
		Name:         "Milk",
		Category:     "LIFE_PRODUCTS",
		Price:        1.5,
		Type:         "dairy",
		Manufacturer: "Farm",
		ExpiryDate:   "2026-06-01",
	})
	life := p.Variant.(domain.LifeProduct)
	if life.ExpiryDate == nil || !life.ExpiryDate.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected expiry %v", life.ExpiryDate)
	}
}

func TestUpdateStockWritesAuditLog(t *testing.T) {
	tick := fixedNow
	svc, _ := newTestService(WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	mustCreate(t, svc, stationaryRequest("pen", 1, 4))
	ctx := WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})

	p, err := svc.UpdateStock(ctx, "pen", domain.StockUpdateRequest{StockQuantity: intPtr(12)})
	if err != nil {
		t.Fatalf("update stock failed: %v", err)
	}
	if p.StockQuantity != 12 {
		t.Fatalf("expected stock 12, got %d", p.StockQuantity)
	}

	logs, err := svc.ListAuditLogs(ctx, 0)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected create and stock update audit entries, got %d", len(logs))
	}
	latest := logs[0]
	if latest.Action != "stock_update" || latest.Actor != "admin" || latest.Detail != "stock=4->12" {
		t.Fatalf("unexpected audit entry: %+v", latest)
	}
	if logs[1].Actor != "system" {
		t.Fatalf("entries written without an actor belong to system, got %s", logs[1].Actor)
	}
}

func TestUpdateStockRejectsBadInput(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, stationaryRequest("pen", 1, 4))
	ctx := context.Background()

	if _, err := svc.UpdateStock(ctx, "pen", domain.StockUpdateRequest{}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing stock, got %v", err)
	}
	if _, err := svc.UpdateStock(ctx, "pen", domain.StockUpdateRequest{StockQuantity: intPtr(-3)}); !errors.Is(err, store.ErrNegativeStock) {
		t.Fatalf("expected negative stock, got %v", err)
	}
	if _, err := svc.UpdateStock(ctx, "ghost", domain.StockUpdateRequest{StockQuantity: intPtr(1)}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaleValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, stationaryRequest("pen", 1, 4))

	if _, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "pen", Quantity: 0}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero quantity, got %v", err)
	}
	if _, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: " ", Quantity: 1}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank product, got %v", err)
	}
	if _, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "ghost", Quantity: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordPurchaseRestocksAndBooksExpense(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, stationaryRequest("pen", 2, 1))

	receipt, err := svc.RecordPurchase(ctx, domain.PurchaseRequest{ProductID: "pen", Quantity: 4, UnitCost: 0.35})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if receipt.Purchase.TotalCost != 1.4 {
		t.Fatalf("expected total cost 1.4, got %v", receipt.Purchase.TotalCost)
	}
	if receipt.Transaction.Type != domain.TransactionExpense || receipt.Transaction.Description != "Purchase of 4 units of product pen" {
		t.Fatalf("unexpected ledger entry: %+v", receipt.Transaction)
	}

	p, _ := svc.GetProduct(ctx, "pen")
	if p.StockQuantity != 5 {
		t.Fatalf("expected stock 5, got %d", p.StockQuantity)
	}
}

func TestRecordExpenseAndSummary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, stationaryRequest("pen", 10, 10))

	if _, err := svc.ProcessSale(ctx, domain.SaleRequest{ProductID: "pen", Quantity: 2}); err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	rent, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Amount: 7, Description: "rent"})
	if err != nil {
		t.Fatalf("expense failed: %v", err)
	}
	if rent.ProductCategory != nil || rent.ProductID != nil {
		t.Fatalf("expense without category must stay uncategorized: %+v", rent)
	}
	if _, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Amount: 1, Description: "x", Category: "FOOD"}); !errors.Is(err, store.ErrInvalidCategory) {
		t.Fatalf("expected invalid category, got %v", err)
	}

	summary, err := svc.TransactionSummary(ctx, TransactionQuery{})
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalIncome != 20 || summary.TotalExpense != 7 || summary.NetAmount != 13 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.CategoryBreakdown["UNCATEGORIZED"].Expense != 7 {
		t.Fatalf("expected rent under UNCATEGORIZED: %+v", summary.CategoryBreakdown)
	}

	uncategorized, err := svc.ListTransactions(ctx, TransactionQuery{Category: "uncategorized"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(uncategorized) != 1 || uncategorized[0].TransactionID != rent.TransactionID {
		t.Fatalf("expected only the rent entry, got %+v", uncategorized)
	}
}

func TestTransactionQueryValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	start := fixedNow
	end := fixedNow.Add(-time.Hour)

	if _, err := svc.ListTransactions(ctx, TransactionQuery{Category: "FOOD"}); !errors.Is(err, store.ErrInvalidCategory) {
		t.Fatalf("expected invalid category, got %v", err)
	}
	if _, err := svc.ListTransactions(ctx, TransactionQuery{Type: "REFUND"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid type, got %v", err)
	}
	if _, err := svc.ListTransactions(ctx, TransactionQuery{Start: &start, End: &end}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected inverted range to fail, got %v", err)
	}
}

func TestLoneTimeBoundIsIgnored(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Amount: 10, Description: "rent"}); err != nil {
		t.Fatalf("expense failed: %v", err)
	}

	later := fixedNow.Add(48 * time.Hour)
	earlier := fixedNow.Add(-48 * time.Hour)
	for name, q := range map[string]TransactionQuery{
		"start only": {Start: &later},
		"end only":   {End: &earlier},
	} {
		txs, err := svc.ListTransactions(ctx, q)
		if err != nil {
			t.Fatalf("%s: list failed: %v", name, err)
		}
		if len(txs) != 1 {
			t.Fatalf("%s: expected the full ledger, got %d rows", name, len(txs))
		}
		summary, err := svc.TransactionSummary(ctx, q)
		if err != nil {
			t.Fatalf("%s: summary failed: %v", name, err)
		}
		if summary.TotalExpense != 10 {
			t.Fatalf("%s: expected totalExpense 10, got %v", name, summary.TotalExpense)
		}
	}

	txs, err := svc.ListTransactions(ctx, TransactionQuery{Start: &later, End: &later})
	if err != nil {
		t.Fatalf("bounded list failed: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected bounded range to exclude the expense, got %d rows", len(txs))
	}
}

func TestCategoryMetrics(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, stationaryRequest("pen", 1, 4))

	group, err := svc.CategoryMetrics(ctx, "stationary")
	if err != nil {
		t.Fatalf("category metrics failed: %v", err)
	}
	if group.Category != domain.CategoryStationary || len(group.Products) != 1 {
		t.Fatalf("unexpected group: %+v", group)
	}
	if _, err := svc.CategoryMetrics(ctx, "FOOD"); !errors.Is(err, store.ErrInvalidCategory) {
		t.Fatalf("expected invalid category, got %v", err)
	}
}

func TestParseTime(t *testing.T) {
	end, err := ParseTime("2026-05-10", true)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !end.Equal(time.Date(2026, 5, 10, 23, 59, 59, 999999999, time.UTC)) {
		t.Fatalf("unexpected end of day %s", end)
	}
	ts, err := ParseTime("2026-05-10T08:00:00+02:00", false)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ts.Hour() != 6 || ts.Location() != time.UTC {
		t.Fatalf("expected UTC conversion, got %s", ts)
	}
	if _, err := ParseTime("yesterday", false); err == nil {
		t.Fatalf("expected garbage to fail")
	}
}
