package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventra/backend/internal/bootstrap"
	"inventra/backend/internal/config"
	"inventra/backend/internal/dashboard"
	"inventra/backend/internal/httpapi"
	"inventra/backend/internal/logging"
	"inventra/backend/internal/rollup"
	"inventra/backend/internal/service"
)

func main() {
	configPath := flag.String("config", config.PathFromEnv(), "path to an optional YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
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

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(cfg config.Config, logger *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closeStore, err := bootstrap.OpenStore(startCtx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}()

	dashCache, closeCache := bootstrap.OpenDashboardCache(startCtx, cfg.Redis, logger)
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("cache close failed", zap.Error(err))
		}
	}()

	engine := dashboard.NewEngine(repo, dashCache, cfg.DashboardCacheTTL(), logger.Named("dashboard"))
	svc := service.New(repo, engine,
		service.WithAmountPolicy(service.AmountPolicy(cfg.Ledger.AmountPolicy)),
		service.WithLogger(logger.Named("service")))
	auth := httpapi.NewAuthManager(cfg.Auth, cfg.AccessTokenTTL())
	api := httpapi.New(svc, auth, cfg.HTTP.AllowedOrigin, logger.Named("http"))

	var roller *rollup.Roller
	if cfg.Rollup.Enabled {
		roller = rollup.New(repo, logger.Named("rollup"))
		if err := roller.Start(cfg.Rollup.Schedule); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("inventra backend listening",
			zap.String("addr", cfg.Address()),
			zap.Bool("auth", cfg.Auth.Enabled),
			zap.String("amountPolicy", cfg.Ledger.AmountPolicy))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var runErr error
	select {
	case s := <-sig:
		logger.Info("shutdown requested", zap.String("signal", s.String()))
	case err, ok := <-serveErr:
		if ok {
			runErr = errors.Wrap(err, "http server")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
	if roller != nil {
		roller.Stop(shutdownCtx)
	}
	return runErr
}
