// Package rollup materializes daily sales and purchase summaries from the
// ledger, either on a cron schedule or on demand for backfills.
package rollup

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"inventra/backend/internal/domain"
	"inventra/backend/internal/xid"
)

// Store is the slice of store.Repository the roller reads and writes.
type Store interface {
	SumSales(ctx context.Context, from time.Time, to time.Time) (float64, error)
	SumPurchases(ctx context.Context, from time.Time, to time.Time) (float64, error)
	UpsertSalesSummary(ctx context.Context, summary domain.SalesSummary) error
	UpsertPurchaseSummary(ctx context.Context, summary domain.PurchaseSummary) error
}

type Roller struct {
	repo    Store
	logger  *zap.Logger
	now     func() time.Time
	sched   *cron.Cron
	timeout time.Duration
}

func New(repo Store, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{
		repo:    repo,
		logger:  logger,
		now:     time.Now,
		timeout: time.Minute,
	}
}

// Day truncates t to the start of its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RollupDay sums the sales and purchases booked on day and upserts the two
// summary rows for it. changePercentage compares against the previous day
// and stays nil when that day had no activity.
func (r *Roller) RollupDay(ctx context.Context, day time.Time) (domain.SalesSummary, domain.PurchaseSummary, error) {
	start := Day(day)
	end := start.AddDate(0, 0, 1)
	prev := start.AddDate(0, 0, -1)

	sales, err := r.repo.SumSales(ctx, start, end)
	if err != nil {
		return domain.SalesSummary{}, domain.PurchaseSummary{}, errors.Wrap(err, "sum sales")
	}
	prevSales, err := r.repo.SumSales(ctx, prev, start)
	if err != nil {
		return domain.SalesSummary{}, domain.PurchaseSummary{}, errors.Wrap(err, "sum previous sales")
	}
	purchases, err := r.repo.SumPurchases(ctx, start, end)
	if err != nil {
		return domain.SalesSummary{}, domain.PurchaseSummary{}, errors.Wrap(err, "sum purchases")
	}
	prevPurchases, err := r.repo.SumPurchases(ctx, prev, start)
	if err != nil {
		return domain.SalesSummary{}, domain.PurchaseSummary{}, errors.Wrap(err, "sum previous purchases")
	}

	salesSummary := domain.SalesSummary{
		SalesSummaryID:   xid.New("SALESSUM"),
		TotalValue:       domain.RoundMoney(sales),
		ChangePercentage: changePercentage(sales, prevSales),
		Date:             start,
	}
	if err := r.repo.UpsertSalesSummary(ctx, salesSummary); err != nil {
		return domain.SalesSummary{}, domain.PurchaseSummary{}, errors.Wrapf(err, "upsert sales summary %s", start.Format(time.DateOnly))
	}

	purchaseSummary := domain.PurchaseSummary{
		PurchaseSummaryID: xid.New("PURCHSUM"),
		TotalPurchased:    domain.RoundMoney(purchases),
		ChangePercentage:  changePercentage(purchases, prevPurchases),
		Date:              start,
	}
	if err := r.repo.UpsertPurchaseSummary(ctx, purchaseSummary); err != nil {
		return domain.SalesSummary{}, domain.PurchaseSummary{}, errors.Wrapf(err, "upsert purchase summary %s", start.Format(time.DateOnly))
	}

	return salesSummary, purchaseSummary, nil
}

// RollupRange rolls up every day in [from, to] inclusive.
func (r *Roller) RollupRange(ctx context.Context, from time.Time, to time.Time) (int, error) {
	days := 0
	for day := Day(from); !day.After(Day(to)); day = day.AddDate(0, 0, 1) {
		if _, _, err := r.RollupDay(ctx, day); err != nil {
			return days, err
		}
		days++
	}
	return days, nil
}

func changePercentage(current float64, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	pct := domain.RoundMoney((current - previous) / previous * 100)
	return &pct
}

// Start schedules a rollup of the previous UTC day. The schedule uses the
// standard five field cron syntax.
func (r *Roller) Start(schedule string) error {
	sched := cron.New(cron.WithLocation(time.UTC))
	if _, err := sched.AddFunc(schedule, r.runScheduled); err != nil {
		return errors.Wrapf(err, "schedule rollup %q", schedule)
	}
	r.sched = sched
	sched.Start()
	r.logger.Info("rollup scheduled", zap.String("schedule", schedule))
	return nil
}

func (r *Roller) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	day := Day(r.now()).AddDate(0, 0, -1)
	sales, purchases, err := r.RollupDay(ctx, day)
	if err != nil {
		r.logger.Error("daily rollup failed", zap.Time("day", day), zap.Error(err))
		return
	}
	r.logger.Info("daily rollup complete",
		zap.String("day", day.Format(time.DateOnly)),
		zap.Float64("sales", sales.TotalValue),
		zap.Float64("purchases", purchases.TotalPurchased))
}

// Stop halts the scheduler and waits for a running rollup to finish or ctx
// to expire.
func (r *Roller) Stop(ctx context.Context) {
	if r.sched == nil {
		return
	}
	select {
	case <-r.sched.Stop().Done():
	case <-ctx.Done():
	}
}
