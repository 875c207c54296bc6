package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/Retail-Checkout-System/internal/config"
	"github.com/dmehra2102/Retail-Checkout-System/internal/shipping/application"
	shippingkafka "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/infrastructure/kafka"
	shippingpg "github.com/dmehra2102/Retail-Checkout-System/internal/shipping/infrastructure/postgres"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/idempotency"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/shutdown"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", "shipping-service", "env", cfg.AppEnv)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "shipping-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		drainCtx, drainCancel := shutdown.Drain(5 * time.Second)
		defer drainCancel()
		_ = tp.Shutdown(drainCtx)
	}()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := shippingpg.Migrate(ctx, pool); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	svc := application.NewService(log, shippingpg.NewRepository(log, pool))
	consumer := shippingkafka.NewConsumer(log, cfg.KafkaBrokers, cfg.CheckoutTopic, cfg.ShippingGroup, svc, idem)

	log.Info("shipping consumer started", "topic", cfg.CheckoutTopic, "group", cfg.ShippingGroup)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shipping-service shutdown complete")
}
