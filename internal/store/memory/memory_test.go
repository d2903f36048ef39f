package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
	"inventra/backend/internal/store/storetest"
)

func TestRepositoryContract(t *testing.T) {
	storetest.Run(t, storetest.Harness{
		New: func(t *testing.T) store.Repository { return New() },
		NewFailing: func(t *testing.T) store.Repository {
			return New(WithWriteHook(func(stage string) error {
				if stage == "sale.record" {
					return storetest.ErrInjected
				}
				return nil
			}))
		},
	})
}

func TestPurchaseHookFailureRestoresStock(t *testing.T) {
	ctx := context.Background()
	s := New(WithWriteHook(func(stage string) error {
		if stage == "purchase.record" {
			return storetest.ErrInjected
		}
		return nil
	}))
	_, err := s.CreateProduct(ctx, storetest.Stationary("p-1", 2, 3))
	require.NoError(t, err)

	_, err = s.ProcessPurchase(ctx, "p-1", 5, func(p domain.Product) (domain.Purchase, domain.Transaction, error) {
		return domain.Purchase{PurchaseID: "pu-1", ProductID: p.ProductID, Quantity: 5, UnitCost: 1, TotalCost: 5},
			domain.Transaction{TransactionID: "tx-1", Type: domain.TransactionExpense, Amount: 5}, nil
	})
	require.ErrorIs(t, err, storetest.ErrInjected)

	p, err := s.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity)
	assert.Empty(t, s.purchases)
	assert.Empty(t, s.ledger)
}

func TestSeededCatalogCoversEveryCategory(t *testing.T) {
	s := NewSeeded()

	for _, c := range domain.Categories {
		products, err := s.ListProducts(context.Background(), domain.ProductFilter{Category: c})
		require.NoError(t, err)
		assert.NotEmpty(t, products, c)
		for _, p := range products {
			require.NotNil(t, p.Variant)
			assert.Equal(t, c, p.Variant.Category())
		}
	}
}

func TestReturnedProductsAreCopies(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	p, err := s.GetProduct(ctx, "LIFE-SOAP-01")
	require.NoError(t, err)
	*p.Rating = 0
	p.StockQuantity = -10

	again, err := s.GetProduct(ctx, "LIFE-SOAP-01")
	require.NoError(t, err)
	assert.Equal(t, 4.2, *again.Rating)
	assert.Equal(t, 40, again.StockQuantity)
}
