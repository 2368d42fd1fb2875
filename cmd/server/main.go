package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"payos/internal/api"
	"payos/internal/api/handlers"
	"payos/internal/api/middleware"
	"payos/internal/client"
	"payos/internal/engine/analytics"
	"payos/internal/engine/webhooks"
	"payos/internal/pkg/logger"
	"payos/internal/platform/audit"
	"payos/internal/platform/auth"
	"payos/internal/platform/config"
	"payos/internal/platform/database"
	"payos/internal/platform/repositories"
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

	if _, err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	gateway, err := client.New(cfg.PayOS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway client")
	}

	// Repositories
	events := repositories.NewEventRepository(db)
	subs := repositories.NewSubscriptionRepository(db)
	links := repositories.NewPaymentLinkRepository(db)
	idempotency := repositories.NewIdempotencyRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLogger := audit.NewLogger(db)
	metrics := &webhooks.Metrics{}
	dispatcher := webhooks.NewDispatcher(subs, events, cfg.Webhooks, metrics)
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	deps := &api.Dependencies{
		WebhookHandler:      handlers.NewWebhookHandler(cfg.PayOS.ChecksumKey, events, links, dispatcher, metrics),
		EventHandler:        handlers.NewEventHandler(events, dispatcher, auditLogger),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subs, auditLogger),
		PaymentLinkHandler:  handlers.NewPaymentLinkHandler(gateway, links, auditLogger),
		PayoutHandler:       handlers.NewPayoutHandler(gateway, idempotency, auditLogger, cfg.Workers.IdempotencyTTL),
		ConfirmHandler:      handlers.NewConfirmHandler(gateway, auditLogger),
		AuthHandler:         handlers.NewAuthHandler(cfg.Admin, tokenSvc, auditLogger),
		AuditHandler:        handlers.NewAuditHandler(auditLogger),
		StatsHandler:        handlers.NewStatsHandler(analytics.NewRepository(db)),
		HealthHandler:       handlers.NewHealthHandler(db),
		MetricsHandler:      handlers.NewMetricsHandler(metrics),
		AuthMiddleware:      middleware.NewAuthMiddleware(tokenSvc),
		RateLimiter:         rateLimiter,
		RateLimits:          cfg.RateLimit,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("receiver starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Wait()
	auditLogger.Wait()
}
