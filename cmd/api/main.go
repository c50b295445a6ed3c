package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"bakery/internal/config"
	"bakery/internal/handler"
	"bakery/internal/infra/db"
	"bakery/internal/infra/memory"
	infraRepo "bakery/internal/infra/repository"
	"bakery/internal/logging"
	"bakery/internal/metrics"
	repo "bakery/internal/repository"
	"bakery/internal/server"
	"bakery/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//.env は無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.NewLogger("bakery", cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	//ストア（TransactionManager）
	tx, health, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheus(reg)

	//Usecase生成
	allocator := usecase.NewIdentifierAllocator(rec)
	productUC := usecase.NewProductUsecase(tx, allocator, log)
	orderUC := usecase.NewOrderUsecase(tx, log, rec)
	lifecycleUC := usecase.NewOrderLifecycleUsecase(tx, cfg.RestockPolicy, log, rec)
	identifierUC := usecase.NewIdentifierUsecase(tx)

	//Handler生成
	e := server.New(log, server.Handlers{
		Health:      handler.NewHealthHandler(health),
		Products:    handler.NewProductHandler(productUC),
		Orders:      handler.NewOrderHandler(orderUC),
		Lifecycle:   handler.NewOrderLifecycleHandler(lifecycleUC),
		Identifiers: handler.NewIdentifierHandler(identifierUC),
	}, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting",
		zap.String("store", string(cfg.Store)),
		zap.String("restock_policy", string(cfg.RestockPolicy)),
	)
	return server.Start(ctx, cfg.Addr(), e, log)
}

func openStore(cfg config.Config) (repo.TransactionManager, func(ctx context.Context) error, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memory.NewStore(), nil, func() {}, nil
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, nil, nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return infraRepo.NewTxManagerGorm(gormDB), sqlDB.PingContext, func() { _ = sqlDB.Close() }, nil
}
