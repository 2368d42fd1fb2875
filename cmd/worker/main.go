package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"payos/internal/client"
	"payos/internal/engine/webhooks"
	"payos/internal/pkg/logger"
	"payos/internal/platform/config"
	"payos/internal/platform/database"
	"payos/internal/platform/repositories"
	"payos/internal/workers"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	gateway, err := client.New(cfg.PayOS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway client")
	}

	events := repositories.NewEventRepository(db)
	subs := repositories.NewSubscriptionRepository(db)
	dispatcher := webhooks.NewDispatcher(subs, events, cfg.Webhooks, nil)

	jobs := workers.NewJobs(
		gateway.PaymentRequests,
		repositories.NewPaymentLinkRepository(db),
		events,
		repositories.NewIdempotencyRepository(db),
		dispatcher,
		cfg.Workers,
		cfg.Webhooks.RetryAttempts,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("starting background workers")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		workers.Every(ctx, "reconcile_payment_links", cfg.Workers.ReconcileInterval, func(ctx context.Context) error {
			n, err := jobs.ReconcilePaymentLinks(ctx)
			if n > 0 {
				log.Info().Int("changed", n).Msg("payment links reconciled")
			}
			return err
		})
	}()
	go func() {
		defer wg.Done()
		workers.Every(ctx, "retry_failed_deliveries", cfg.Workers.RetryInterval, func(ctx context.Context) error {
			n, err := jobs.RetryFailedDeliveries(ctx)
			if n > 0 {
				log.Info().Int("delivered", n).Msg("failed deliveries retried")
			}
			return err
		})
	}()
	go func() {
		defer wg.Done()
		workers.Every(ctx, "prune_idempotency_keys", cfg.Workers.PruneInterval, func(ctx context.Context) error {
			n, err := jobs.PruneIdempotencyKeys(ctx)
			if n > 0 {
				log.Info().Int64("deleted", n).Msg("idempotency keys pruned")
			}
			return err
		})
	}()

	wg.Wait()
	log.Info().Msg("workers stopped")
}
