package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/config"
	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
	"github.com/mamadbah2/warehouse/internal/repository/mongodb"
	"github.com/mamadbah2/warehouse/internal/repository/sheets"
	"github.com/mamadbah2/warehouse/internal/scheduler"
	"github.com/mamadbah2/warehouse/internal/server/handlers"
	"github.com/mamadbah2/warehouse/internal/server/router"
	inboundsvc "github.com/mamadbah2/warehouse/internal/service/inbound"
	reportingsvc "github.com/mamadbah2/warehouse/internal/service/reporting"
	shipmentsvc "github.com/mamadbah2/warehouse/internal/service/shipments"
	warehousesvc "github.com/mamadbah2/warehouse/internal/service/warehouse"
	"github.com/mamadbah2/warehouse/pkg/clients/webhook"
	"github.com/mamadbah2/warehouse/pkg/logger"
	"github.com/mamadbah2/warehouse/pkg/metrics"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	store, err := mongodb.Connect(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(startupCtx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	db := store.Database()
	shipmentRepo := mongodb.NewShipmentRepository(db)
	recordRepo := mongodb.NewWarehouseRecordRepository(db)
	inboundRepo := mongodb.NewInboundOrderRepository(db)
	snapshotRepo := mongodb.NewSnapshotRepository(db)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}

	calc := storagefee.NewCalculator(cfg.Storage.RejectInvertedIntervals)
	appMetrics := metrics.New()

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, snapshot export disabled")
	}

	var notifier webhook.Client
	if cfg.Notify.Enabled() {
		notifier = webhook.NewClient(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
		baseLogger.Info("webhook notifications enabled")
	}

	shipmentSvc := shipmentsvc.NewService(shipmentRepo, logger.Named(baseLogger, "svc.shipments"))
	warehouseSvc := warehousesvc.NewService(recordRepo, shipmentRepo, calc, cfg.Storage.Tariff, appMetrics, logger.Named(baseLogger, "svc.warehouse"))
	inboundSvc := inboundsvc.NewService(inboundRepo, shipmentRepo, logger.Named(baseLogger, "svc.inbound"))
	reportingSvc := reportingsvc.NewService(recordRepo, shipmentRepo, snapshotRepo, sheetsRepo, calc, loc, logger.Named(baseLogger, "svc.reporting"))

	engine := router.New(router.Handlers{
		Health: handlers.NewHealthHandler(store, map[string]handlers.Counter{
			"shipments":        shipmentRepo,
			"warehouseRecords": recordRepo,
			"inboundOrders":    inboundRepo,
		}, logger.Named(baseLogger, "handlers.health")),
		Shipments:  handlers.NewShipmentHandler(shipmentSvc, logger.Named(baseLogger, "handlers.shipments")),
		Warehouse:  handlers.NewWarehouseHandler(warehouseSvc, logger.Named(baseLogger, "handlers.warehouse")),
		Inbound:    handlers.NewInboundHandler(inboundSvc, logger.Named(baseLogger, "handlers.inbound")),
		StorageFee: handlers.NewStorageFeeHandler(calc, cfg.Storage.Tariff, reportingSvc, appMetrics, logger.Named(baseLogger, "handlers.fees")),
	}, appMetrics, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, warehouseSvc, reportingSvc, notifier, appMetrics, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
