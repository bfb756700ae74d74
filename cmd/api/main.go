package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/myceliumfarm/mycelium/internal/backup"
	"github.com/myceliumfarm/mycelium/internal/config"
	"github.com/myceliumfarm/mycelium/internal/handler"
	"github.com/myceliumfarm/mycelium/internal/logging"
	"github.com/myceliumfarm/mycelium/internal/repository"
	"github.com/myceliumfarm/mycelium/internal/service"
	"github.com/myceliumfarm/mycelium/internal/service/ledger"
	"github.com/myceliumfarm/mycelium/internal/service/production"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("mycelium-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	customerRepo := repository.NewCustomerRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	productRepo := repository.NewProductRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	harvestRepo := repository.NewHarvestRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	dirty := backup.NewFlag()
	runner := backup.NewRunner(db, dirty, cfg.BackupDir, time.Duration(cfg.BackupIntervalS)*time.Second)
	go runner.Run(logging.WithLogger(ctx, slog.Default()))

	ledgerSvc := ledger.NewService(ledgerRepo, customerRepo, dirty, db)
	customerSvc := service.NewCustomerService(customerRepo, dirty)
	productSvc := service.NewProductService(productRepo, dirty, db)
	productionSvc := production.NewService(productionRepo, harvestRepo, productRepo, dirty, db)
	salesSvc := service.NewSalesService(salesRepo, ledgerSvc, dirty, db)
	settingsSvc := service.NewSettingsService(settingsRepo, dirty)

	router := newRouter(handlers{
		health:     handler.NewHealthHandler(db),
		customers:  handler.NewCustomerHandler(customerSvc),
		ledger:     handler.NewLedgerHandler(ledgerSvc, customerSvc),
		products:   handler.NewProductHandler(productSvc),
		production: handler.NewProductionHandler(productionSvc),
		sales:      handler.NewSalesHandler(salesSvc),
		settings:   handler.NewSettingsHandler(settingsSvc),
		backup:     handler.NewBackupHandler(runner, dirty),
	}, cfg.CORSOrigins)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
