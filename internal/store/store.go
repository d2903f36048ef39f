package store

import (
	"context"
	"errors"
	"time"

	"inventra/backend/internal/domain"
)

type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION"
	KindConflict     Kind = "CONFLICT"
	KindStoreFailure Kind = "STORE_FAILURE"
)

// Error is a classified failure. Sentinels below are compared with
// errors.Is after wrapping.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Code: "PRODUCT_NOT_FOUND", Message: "product not found"}
	ErrInvalidInput      = &Error{Kind: KindValidation, Code: "INVALID_INPUT", Message: "invalid input"}
	ErrInvalidCategory   = &Error{Kind: KindValidation, Code: "INVALID_CATEGORY", Message: "invalid product category"}
	ErrNegativeStock     = &Error{Kind: KindValidation, Code: "NEGATIVE_STOCK", Message: "stock quantity cannot be negative"}
	ErrAmountMismatch    = &Error{Kind: KindValidation, Code: "AMOUNT_MISMATCH", Message: "total amount does not match unit price times quantity"}
	ErrInsufficientStock = &Error{Kind: KindConflict, Code: "INSUFFICIENT_STOCK", Message: "insufficient stock"}
	ErrDuplicateProduct  = &Error{Kind: KindConflict, Code: "DUPLICATE_PRODUCT", Message: "product already exists"}
)

// KindOf classifies err. Anything that is not a classified Error is a
// store failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return string(KindStoreFailure)
}

// SaleFunc builds the sale and ledger records for a locked product whose
// stock already covers the requested quantity. Returning an error aborts the
// sale with nothing written.
type SaleFunc func(product domain.Product) (domain.Sale, domain.Transaction, error)

// PurchaseFunc is the restocking counterpart of SaleFunc.
type PurchaseFunc func(product domain.Product) (domain.Purchase, domain.Transaction, error)

type Repository interface {
	Ping(ctx context.Context) error

	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	SetStock(ctx context.Context, productID string, qty int) (*domain.Product, error)

	ProcessSale(ctx context.Context, productID string, qty int, build SaleFunc) (*domain.SaleReceipt, error)
	ProcessPurchase(ctx context.Context, productID string, qty int, build PurchaseFunc) (*domain.PurchaseReceipt, error)
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)

	SumSales(ctx context.Context, from time.Time, to time.Time) (float64, error)
	SumPurchases(ctx context.Context, from time.Time, to time.Time) (float64, error)
	UpsertSalesSummary(ctx context.Context, summary domain.SalesSummary) error
	UpsertPurchaseSummary(ctx context.Context, summary domain.PurchaseSummary) error
	ListSalesSummaries(ctx context.Context, limit int) ([]domain.SalesSummary, error)
	ListPurchaseSummaries(ctx context.Context, limit int) ([]domain.PurchaseSummary, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error)
}
