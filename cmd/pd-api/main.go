package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/product-discount/internal/config"
	"github.com/tuanvumaihuynh/product-discount/internal/discount"
	"github.com/tuanvumaihuynh/product-discount/internal/http"
	"github.com/tuanvumaihuynh/product-discount/internal/log"
	"github.com/tuanvumaihuynh/product-discount/internal/repository"
	"github.com/tuanvumaihuynh/product-discount/internal/service"
	"github.com/tuanvumaihuynh/product-discount/internal/storage/db"
	"github.com/tuanvumaihuynh/product-discount/internal/telemetry"
	"github.com/tuanvumaihuynh/product-discount/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running api application: %v\n", err)
		os.Exit(1)
	}
}

// run serves the product API only. Product change events still land in the
// outbox table and are published by pd-relay.
func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Discount config.Discount
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	evaluator, err := discount.NewEvaluatorFromConfig(cfg.Discount)
	if err != nil {
		return fmt.Errorf("error creating discount evaluator: %w", err)
	}
	loc, err := cfg.Discount.Location()
	if err != nil {
		return fmt.Errorf("error loading discount timezone: %w", err)
	}

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	productService := service.NewProductService(
		dbClient,
		repository.NewProductRepository(dbClient),
		repository.NewOutboxMsgRepository(dbClient),
	)

	svc := http.New(cfg.HTTP, logger, productService, evaluator, func() time.Time {
		return time.Now().In(loc)
	}, dbClient)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}

	logger.InfoContext(ctx, "http service started",
		slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)),
		slog.Any("discount_rules", evaluator.Rules()),
	)

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}

	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
