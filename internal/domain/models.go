package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryLifeProducts Category = "LIFE_PRODUCTS"
	CategoryStationary   Category = "STATIONARY"
	CategoryPhotography  Category = "PHOTOGRAPHY"
	CategoryPublications Category = "PUBLICATIONS"

	// CategoryUncategorized labels ledger entries without a product category.
	// It is a reporting bucket, never a product category.
	CategoryUncategorized Category = "UNCATEGORIZED"
)

// Categories lists product categories in their canonical order.
var Categories = []Category{
	CategoryLifeProducts,
	CategoryStationary,
	CategoryPhotography,
	CategoryPublications,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryLifeProducts, CategoryStationary, CategoryPhotography, CategoryPublications:
		return true
	}
	return false
}

func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	return c, c.Valid()
}

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

func ParseTransactionType(raw string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, t == TransactionIncome || t == TransactionExpense
}

// Product is a base product joined with its category extension. Variant is
// nil only when the extension row is missing from storage.
type Product struct {
	ProductID     string
	Name          string
	Category      Category
	StockQuantity int
	Rating        *float64
	Variant       ProductVariant
}

func (p Product) Summary() ProductSummary {
	return ProductSummary{
		ProductID:     p.ProductID,
		Name:          p.Name,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		Rating:        p.Rating,
	}
}

type ProductSummary struct {
	ProductID     string   `json:"productId"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	StockQuantity int      `json:"stockQuantity"`
	Rating        *float64 `json:"rating"`
}

type Sale struct {
	SaleID        string    `json:"saleId"`
	ProductID     string    `json:"productId"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unitPrice"`
	TotalAmount   float64   `json:"totalAmount"`
	Timestamp     time.Time `json:"timestamp"`
	IsSingleSided *bool     `json:"isSingleSided"`
}

type Purchase struct {
	PurchaseID string    `json:"purchaseId"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	UnitCost   float64   `json:"unitCost"`
	TotalCost  float64   `json:"totalCost"`
	Timestamp  time.Time `json:"timestamp"`
}

// Transaction is an append-only ledger entry. Amount is a positive
// magnitude; Type carries the direction.
type Transaction struct {
	TransactionID   string          `json:"transactionId"`
	Type            TransactionType `json:"type"`
	Amount          float64         `json:"amount"`
	Quantity        int             `json:"quantity"`
	ProductID       *string         `json:"productId"`
	ProductCategory *Category       `json:"productCategory"`
	Description     string          `json:"description"`
	Timestamp       time.Time       `json:"timestamp"`
	Product         *ProductSummary `json:"product,omitempty"`
}

type SaleReceipt struct {
	Sale        Sale        `json:"sale"`
	Transaction Transaction `json:"transaction"`
}

type PurchaseReceipt struct {
	Purchase    Purchase    `json:"purchase"`
	Transaction Transaction `json:"transaction"`
}

type SalesSummary struct {
	SalesSummaryID   string    `json:"salesSummaryId"`
	TotalValue       float64   `json:"totalValue"`
	ChangePercentage *float64  `json:"changePercentage"`
	Date             time.Time `json:"date"`
}

type PurchaseSummary struct {
	PurchaseSummaryID string    `json:"purchaseSummaryId"`
	TotalPurchased    float64   `json:"totalPurchased"`
	ChangePercentage  *float64  `json:"changePercentage"`
	Date              time.Time `json:"date"`
}

type AuditLog struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	ActorRole  string    `json:"actorRole"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ProductFilter struct {
	Search       string
	Category     Category
	InStockOnly  bool
	OrderByStock bool
	Limit        int
}

// TransactionFilter bounds are inclusive. The service sets both or neither.
// Category may be CategoryUncategorized to select entries without a category.
type TransactionFilter struct {
	Start    *time.Time
	End      *time.Time
	Category Category
	Type     TransactionType
	Limit    int
}

// Matches reports whether tx passes the filter. Stores without a query
// language use it directly; SQL stores mirror it in their WHERE clauses.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Start != nil && tx.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && tx.Timestamp.After(*f.End) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	switch {
	case f.Category == "":
	case f.Category == CategoryUncategorized:
		if tx.ProductCategory != nil {
			return false
		}
	default:
		if tx.ProductCategory == nil || *tx.ProductCategory != f.Category {
			return false
		}
	}
	return true
}

type CategoryProducts struct {
	Category Category  `json:"category"`
	Products []Product `json:"products"`
}

type DashboardMetrics struct {
	PopularProducts []CategoryProducts `json:"popularProducts"`
	SalesSummary    []SalesSummary     `json:"salesSummary"`
	PurchaseSummary []PurchaseSummary  `json:"purchaseSummary"`
}

type ProductCreateRequest struct {
	ProductID       string   `json:"productId"`
	Name            string   `json:"name" validate:"required"`
	Category        string   `json:"category" validate:"required"`
	StockQuantity   int      `json:"stockQuantity" validate:"gte=0"`
	Rating          *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Price           float64  `json:"price"`
	Type            string   `json:"type"`
	Manufacturer    string   `json:"manufacturer"`
	ExpiryDate      string   `json:"expiryDate"`
	SingleSidePrice *float64 `json:"singleSidePrice"`
	DoubleSidePrice *float64 `json:"doubleSidePrice"`
	ServiceType     string   `json:"serviceType"`
	Author          string   `json:"author"`
	Publisher       string   `json:"publisher"`
	ISBN            string   `json:"isbn"`
}

type StockUpdateRequest struct {
	StockQuantity *int `json:"stockQuantity" validate:"required"`
}

type SaleRequest struct {
	ProductID     string  `json:"productId" validate:"required"`
	Quantity      int     `json:"quantity" validate:"gte=1"`
	TotalAmount   float64 `json:"totalAmount" validate:"gte=0"`
	IsSingleSided *bool   `json:"isSingleSided"`
}

type PurchaseRequest struct {
	ProductID   string  `json:"productId" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	UnitCost    float64 `json:"unitCost" validate:"gt=0"`
	Description string  `json:"description"`
}

type ExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}
