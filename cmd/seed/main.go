package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventra/backend/internal/bootstrap"
	"inventra/backend/internal/config"
	"inventra/backend/internal/logging"
	"inventra/backend/internal/rollup"
	"inventra/backend/internal/seed"
)

type options struct {
	configPath string
	dir        string
	rollup     bool
	from       string
	to         string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", config.PathFromEnv(), "path to an optional YAML config file")
	flag.StringVar(&opts.dir, "dir", "", "directory holding products.json, transactions.json, salesSummary.json, purchaseSummary.json")
	flag.BoolVar(&opts.rollup, "rollup", false, "rebuild daily sales and purchase summaries after seeding")
	flag.StringVar(&opts.from, "from", "", "first day to roll up (YYYY-MM-DD, default 30 days ago)")
	flag.StringVar(&opts.to, "to", "", "last day to roll up (YYYY-MM-DD, default yesterday)")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Error("seed failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) error {
	if opts.dir == "" && !opts.rollup {
		return errors.New("nothing to do: pass -dir and/or -rollup")
	}
	if cfg.Store.DatabaseURL == "" && cfg.Store.SQLitePath == "" {
		return errors.New("seeding needs DATABASE_URL or SQLITE_PATH; the in-memory store does not persist")
	}

	repo, closeStore, err := bootstrap.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	if opts.dir != "" {
		res, err := seed.Load(ctx, repo, opts.dir, logger.Named("seed"))
		if err != nil {
			return err
		}
		logger.Info("seed complete",
			zap.Int("products", res.Products),
			zap.Int("transactions", res.Transactions),
			zap.Int("salesSummaries", res.SalesSummaries),
			zap.Int("purchaseSummaries", res.PurchaseSummaries))
	}

	if opts.rollup {
		from, to, err := rollupWindow(opts.from, opts.to, time.Now())
		if err != nil {
			return err
		}
		days, err := rollup.New(repo, logger.Named("rollup")).RollupRange(ctx, from, to)
		if err != nil {
			return err
		}
		logger.Info("rollup complete",
			zap.String("from", from.Format(time.DateOnly)),
			zap.String("to", to.Format(time.DateOnly)),
			zap.Int("days", days))
	}
	return nil
}

func rollupWindow(rawFrom string, rawTo string, now time.Time) (time.Time, time.Time, error) {
	to := rollup.Day(now).AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -29)

	if rawTo != "" {
		t, err := time.Parse(time.DateOnly, rawTo)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(err, "-to")
		}
		to = t
	}
	if rawFrom != "" {
		t, err := time.Parse(time.DateOnly, rawFrom)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(err, "-from")
		}
		from = t
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, errors.Errorf("-from %s is after -to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return from, to, nil
}
