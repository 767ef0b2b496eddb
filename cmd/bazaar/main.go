package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/bazaar-lab/daily-bazaar/internal/core/config"
	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/bazaar-lab/daily-bazaar/internal/core/storage/postgres"
	"github.com/bazaar-lab/daily-bazaar/internal/economy"
	"github.com/bazaar-lab/daily-bazaar/internal/migrations"
	"github.com/bazaar-lab/daily-bazaar/internal/pool"
	"github.com/bazaar-lab/daily-bazaar/internal/purchase"
	"github.com/bazaar-lab/daily-bazaar/internal/query"
	"github.com/bazaar-lab/daily-bazaar/internal/rotation"
	"github.com/bazaar-lab/daily-bazaar/internal/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "bazaar.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration (failures here are fatal)
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	checkInterval, err := cfg.Rotation.CheckIntervalDuration()
	if err != nil {
		slog.Error("Invalid rotation check interval", "value", cfg.Rotation.CheckInterval, "error", err)
		os.Exit(1)
	}
	initialDelay, err := cfg.Rotation.InitialDelayDuration()
	if err != nil {
		slog.Error("Invalid rotation initial delay", "value", cfg.Rotation.InitialDelay, "error", err)
		os.Exit(1)
	}
	gatewayTimeout, err := cfg.Economy.TimeoutDuration()
	if err != nil {
		slog.Error("Invalid economy timeout", "value", cfg.Economy.Timeout, "error", err)
		os.Exit(1)
	}

	// 2. Material catalog: the enumeration pool entries validate against.
	catalog, err := shop.LoadCatalog(cfg.Shop.CatalogPath)
	if err != nil {
		slog.Error("Failed to load material catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded material catalog",
		"path", cfg.Shop.CatalogPath,
		"materials", len(catalog.Materials()))

	// 3. Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	if err := migrations.Run(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	stateStore := postgres.NewStateAdapter(dbAdapter.DB())
	ledgerStore := postgres.NewLedgerAdapter(dbAdapter.DB())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Schedule: config defaults, overridden by any persisted admin
	// schedule from a previous run.
	schedule := shop.Schedule{
		RefreshHour:   cfg.Rotation.RefreshHour,
		CheckInterval: checkInterval,
	}
	if persisted, ok, err := stateStore.LoadSchedule(ctx); err != nil {
		slog.Error("Failed to load persisted schedule", "error", err)
		os.Exit(1)
	} else if ok {
		schedule = persisted
		slog.Info("Adopted persisted schedule",
			"refresh_hour", schedule.RefreshHour,
			"check_interval", schedule.CheckInterval)
	}

	// 5. Rotation engine: adopt today's persisted rotation or draw fresh.
	rotationEngine := rotation.NewEngine(stateStore, cfg.Rotation.ItemCount)
	if err := rotationEngine.LoadOrInit(ctx); err != nil {
		slog.Error("Failed to initialize rotation", "error", err)
		os.Exit(1)
	}

	scheduler := rotation.NewScheduler(rotationEngine, schedule, initialDelay)

	// 6. Balance gateway: injected capability, unconfigured when no
	// provider URL is set. Every call is bounded by the timeout.
	var gateway economy.Gateway = economy.Unconfigured{}
	if cfg.Economy.BaseURL != "" {
		gateway = economy.NewBounded(economy.NewClient(cfg.Economy.BaseURL), gatewayTimeout)
		slog.Info("Balance gateway configured", "base_url", cfg.Economy.BaseURL, "timeout", gatewayTimeout)
	} else {
		slog.Warn("No balance provider configured, purchases will be rejected")
	}

	// 7. Services
	poolSvc := pool.NewService(stateStore, catalog)
	purchaseSvc := purchase.NewService(rotationEngine, gateway, ledgerStore, nil, cfg.Shop.OriginTag)
	querySvc := query.NewService(ledgerStore)
	rotationAPI := rotation.NewAPI(rotationEngine, scheduler, stateStore)

	// 8. Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	poolSvc.RegisterRoutes(srv.Engine)
	purchaseSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)
	rotationAPI.RegisterRoutes(srv.Engine)

	// 9. Run until signalled.
	scheduler.Start(ctx)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(runCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	scheduler.Stop()
	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
