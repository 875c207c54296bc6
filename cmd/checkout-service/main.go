package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	checkoutapp "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/application"
	checkoutkafka "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/kafka"
	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/notify"
	checkoutpg "github.com/dmehra2102/Retail-Checkout-System/internal/checkout/infrastructure/postgres"
	"github.com/dmehra2102/Retail-Checkout-System/internal/config"
	inventoryapp "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/application"
	"github.com/dmehra2102/Retail-Checkout-System/internal/inventory/infrastructure/seed"
	paymentapp "github.com/dmehra2102/Retail-Checkout-System/internal/payment/application"
	paymentpg "github.com/dmehra2102/Retail-Checkout-System/internal/payment/infrastructure/postgres"
	storefront "github.com/dmehra2102/Retail-Checkout-System/internal/storefront/application"
	storefronthttp "github.com/dmehra2102/Retail-Checkout-System/internal/storefront/infrastructure/http"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/idempotency"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/logging"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/outbox"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/shutdown"
	"github.com/dmehra2102/Retail-Checkout-System/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel).With("service", "checkout-service", "env", cfg.AppEnv)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var closer shutdown.Closer

	tp, err := tracing.Init(ctx, "checkout-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	closer.Add(tp.Shutdown)

	// Postgres Setup
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	closer.Add(func(context.Context) error { pool.Close(); return nil })

	if err := migrate(ctx, pool); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	// Kafka producer
	writer := checkoutkafka.NewWriter(cfg.KafkaBrokers)
	closer.Add(func(context.Context) error { return writer.Close() })

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	closer.Add(func(context.Context) error { return rdb.Close() })
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	// Repository & Outbox store
	repo := checkoutpg.NewRepository(log, pool)
	store := checkoutpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.CheckoutTopic)
	relay := outbox.NewRelay(log, store, dispatch, "checkout-service-relay",
		outbox.WithInterval(cfg.RelayInterval),
		outbox.WithBatchSize(cfg.RelayBatchSize),
		outbox.WithMaxAttempts(cfg.RelayAttempts),
		outbox.WithRetryBackoff(cfg.RelayBackoff),
	)

	ledger := paymentapp.NewLedger(log, paymentpg.NewRepository(log, pool))
	notifier := notify.WithLedger(notify.NewLogger(log), log, ledger)
	checkouts := checkoutapp.NewService(log, repo, notifier, "checkout-service")
	shop := storefront.NewService(log, checkouts)

	if cfg.CatalogPath != "" {
		if _, err := inventoryapp.Seed(log, seed.NewFileLoader(cfg.CatalogPath), shop, shop.Now()); err != nil {
			log.Error("catalog seed failed", "path", cfg.CatalogPath, "err", err)
			os.Exit(1)
		}
	}

	handler := storefronthttp.NewHandler(log, shop,
		storefronthttp.WithCheckoutReader(repo),
		storefronthttp.WithIdempotency(idem),
	)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Run relay
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// Run HTTP
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	drainCtx, drainCancel := shutdown.Drain(10 * time.Second)
	defer drainCancel()

	_ = srv.Shutdown(drainCtx)
	if n, err := relay.Flush(drainCtx); err != nil {
		log.Error("final outbox flush failed", "err", err)
	} else if n > 0 {
		log.Info("final outbox flush", "events", n)
	}
	if err := closer.Close(drainCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	log.Info("checkout-service shutdown complete")
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := checkoutpg.Migrate(ctx, pool); err != nil {
		return err
	}
	return paymentpg.Migrate(ctx, pool)
}
