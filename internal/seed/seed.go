// Package seed loads a catalog and ledger history from JSON files.
package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/service"
	"inventra/backend/internal/store"
)

// Result counts the records written per file.
type Result struct {
	Products          int
	Transactions      int
	SalesSummaries    int
	PurchaseSummaries int
}

// Load reads products.json, transactions.json, salesSummary.json and
// purchaseSummary.json from dir, in that order. Missing files are skipped.
// The first record that fails aborts the load; records written before it
// stay in place.
func Load(ctx context.Context, repo store.Repository, dir string, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := service.New(repo, nil, service.WithLogger(logger))
	var res Result

	steps := []struct {
		file string
		run  func(data []byte) (int, error)
	}{
		{"products.json", func(data []byte) (int, error) {
			return each(data, func(req domain.ProductCreateRequest) error {
				_, err := svc.CreateProduct(ctx, req)
				return err
			})
		}},
		{"transactions.json", func(data []byte) (int, error) {
			return each(data, func(tx domain.Transaction) error {
				if _, ok := domain.ParseTransactionType(string(tx.Type)); !ok {
					return errors.WithMessagef(store.ErrInvalidInput, "transaction %s has type %q", tx.TransactionID, tx.Type)
				}
				if tx.ProductCategory != nil && !tx.ProductCategory.Valid() {
					return errors.WithMessagef(store.ErrInvalidCategory, "transaction %s", tx.TransactionID)
				}
				tx.Timestamp = tx.Timestamp.UTC()
				return repo.AppendTransaction(ctx, tx)
			})
		}},
		{"salesSummary.json", func(data []byte) (int, error) {
			return each(data, func(s domain.SalesSummary) error {
				return repo.UpsertSalesSummary(ctx, s)
			})
		}},
		{"purchaseSummary.json", func(data []byte) (int, error) {
			return each(data, func(s domain.PurchaseSummary) error {
				return repo.UpsertPurchaseSummary(ctx, s)
			})
		}},
	}

	counts := []*int{&res.Products, &res.Transactions, &res.SalesSummaries, &res.PurchaseSummaries}
	for i, step := range steps {
		path := filepath.Join(dir, step.file)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("seed file not found, skipping", zap.String("file", path))
			continue
		}
		if err != nil {
			return res, errors.Wrapf(err, "read %s", path)
		}

		n, err := step.run(data)
		*counts[i] = n
		if err != nil {
			return res, errors.WithMessagef(err, "seed %s", step.file)
		}
		logger.Info("seeded", zap.String("file", step.file), zap.Int("records", n))
	}
	return res, nil
}

func each[T any](data []byte, apply func(T) error) (int, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, errors.Wrap(err, "decode")
	}
	for i, record := range records {
		if err := apply(record); err != nil {
			return i, errors.WithMessagef(err, "record %d", i)
		}
	}
	return len(records), nil
}
