package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
	"inventra/backend/internal/store/memory"
)

func TestLoadTestdata(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	res, err := Load(ctx, repo, "testdata", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, Result{Products: 4, Transactions: 2, SalesSummaries: 2}, res)

	photo, err := repo.GetProduct(ctx, "PHOTO-001")
	require.NoError(t, err)
	assert.Equal(t, domain.PhotographyService{SingleSidePrice: 3, DoubleSidePrice: 5, ServiceType: "printing"}, photo.Variant)

	life, err := repo.GetProduct(ctx, "LIFE-001")
	require.NoError(t, err)
	require.NotNil(t, life.Variant.(domain.LifeProduct).ExpiryDate)

	summary := domain.SummarizeTransactions(mustList(t, repo))
	assert.EqualValues(t, 120, summary.NetAmount)

	summaries, err := repo.ListSalesSummaries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "SS-SEED-1", summaries[0].SalesSummaryID)
	assert.Nil(t, summaries[1].ChangePercentage)
}

func mustList(t *testing.T, repo store.Repository) []domain.Transaction {
	t.Helper()
	txs, err := repo.ListTransactions(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	return txs
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	res, err := Load(context.Background(), memory.New(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestLoadStopsAtFirstBadRecord(t *testing.T) {
	dir := t.TempDir()
	products := `[
		{"productId": "ok-1", "name": "Pen", "category": "STATIONARY", "stockQuantity": 1, "price": 1, "type": "pen"},
		{"productId": "bad-1", "name": "Bread", "category": "FOOD", "stockQuantity": 1},
		{"productId": "ok-2", "name": "Pencil", "category": "STATIONARY", "stockQuantity": 1, "price": 1, "type": "pencil"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(products), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(`[]`), 0o600))

	repo := memory.New()
	res, err := Load(context.Background(), repo, dir, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidCategory)
	assert.Contains(t, err.Error(), "products.json")
	assert.Equal(t, 1, res.Products)

	_, err = repo.GetProduct(context.Background(), "ok-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadRejectsTransactionForUnknownProduct(t *testing.T) {
	dir := t.TempDir()
	txs := `[{"transactionId": "T-1", "type": "INCOME", "amount": 5, "productId": "ghost", "timestamp": "2026-05-09T10:00:00Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(txs), 0o600))

	_, err := Load(context.Background(), memory.New(), dir, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "salesSummary.json"), []byte(`{"not":"a list"}`), 0o600))

	_, err := Load(context.Background(), memory.New(), dir, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
