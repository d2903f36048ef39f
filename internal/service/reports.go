package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/store"
)

func (s *Service) DashboardMetrics(ctx context.Context) (domain.DashboardMetrics, error) {
	return s.dashboard.Metrics(ctx)
}

// CategoryMetrics returns the most popular products of one category.
func (s *Service) CategoryMetrics(ctx context.Context, raw string) (domain.CategoryProducts, error) {
	category, ok := domain.ParseCategory(raw)
	if !ok {
		return domain.CategoryProducts{}, errors.WithMessagef(store.ErrInvalidCategory, "category %q", raw)
	}
	return s.dashboard.CategoryProducts(ctx, category)
}

// TransactionQuery is the raw, unvalidated form of a ledger filter.
type TransactionQuery struct {
	Start    *time.Time
	End      *time.Time
	Category string
	Type     string
	Limit    int
}

func (q TransactionQuery) filter() (domain.TransactionFilter, error) {
	f := domain.TransactionFilter{Limit: q.Limit}
	if q.Limit < 0 {
		return f, errors.WithMessage(store.ErrInvalidInput, "limit must not be negative")
	}
	// A time range applies only when both bounds are given.
	if q.Start != nil && q.End != nil {
		if q.End.Before(*q.Start) {
			return f, errors.WithMessage(store.ErrInvalidInput, "endDate is before startDate")
		}
		f.Start, f.End = q.Start, q.End
	}

	if raw := strings.TrimSpace(q.Category); raw != "" {
		category := domain.Category(strings.ToUpper(raw))
		if category != domain.CategoryUncategorized && !category.Valid() {
			return f, errors.WithMessagef(store.ErrInvalidCategory, "category %q", raw)
		}
		f.Category = category
	}
	if raw := strings.TrimSpace(q.Type); raw != "" {
		kind, ok := domain.ParseTransactionType(raw)
		if !ok {
			return f, errors.WithMessagef(store.ErrInvalidInput, "type %q", raw)
		}
		f.Type = kind
	}
	return f, nil
}

// ListTransactions returns matching ledger entries, newest first.
func (s *Service) ListTransactions(ctx context.Context, q TransactionQuery) ([]domain.Transaction, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, f)
}

func (s *Service) TransactionSummary(ctx context.Context, q TransactionQuery) (domain.TransactionSummary, error) {
	q.Limit = 0
	txs, err := s.ListTransactions(ctx, q)
	if err != nil {
		return domain.TransactionSummary{}, err
	}
	return domain.SummarizeTransactions(txs), nil
}
