package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "payos/internal/api/context"
	"payos/internal/api/handlers"
	"payos/internal/api/middleware"
	"payos/internal/platform/config"
)

type Dependencies struct {
	WebhookHandler      *handlers.WebhookHandler
	EventHandler        *handlers.EventHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	PaymentLinkHandler  *handlers.PaymentLinkHandler
	PayoutHandler       *handlers.PayoutHandler
	ConfirmHandler      *handlers.ConfirmHandler
	AuthHandler         *handlers.AuthHandler
	AuditHandler        *handlers.AuditHandler
	StatsHandler        *handlers.StatsHandler
	HealthHandler       *handlers.HealthHandler
	MetricsHandler      *handlers.MetricsHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimiter         *middleware.RateLimiter
	RateLimits          config.RateLimitConfig
}

// NewRouter wires the receiver and admin routes and wraps them in request logging.
func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	rl := deps.RateLimiter
	authMid := deps.AuthMiddleware
	admin := func(h http.HandlerFunc) httprouter.Handle {
		return chain(h, rl.RateLimit("admin", deps.RateLimits.AdminPerMinute), authMid.Handle)
	}

	// Public
	router.POST("/webhooks/payos", chain(deps.WebhookHandler.Receive, rl.RateLimit("webhook", deps.RateLimits.WebhookPerMinute)))
	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, rl.RateLimit("login", deps.RateLimits.LoginPerMinute)))

	// Received events
	router.GET("/api/v1/events", admin(deps.EventHandler.List))
	router.GET("/api/v1/events/:event_id", admin(deps.EventHandler.Get))
	router.POST("/api/v1/events/:event_id/redeliver", admin(deps.EventHandler.Redeliver))

	// Forwarding subscriptions
	router.POST("/api/v1/subscriptions", admin(deps.SubscriptionHandler.Create))
	router.GET("/api/v1/subscriptions", admin(deps.SubscriptionHandler.List))
	router.DELETE("/api/v1/subscriptions/:subscription_id", admin(deps.SubscriptionHandler.Delete))

	// Payment links
	router.POST("/api/v1/payment-links", admin(deps.PaymentLinkHandler.Create))
	router.GET("/api/v1/payment-links/:link_id", admin(deps.PaymentLinkHandler.Get))
	router.POST("/api/v1/payment-links/:link_id/cancel", admin(deps.PaymentLinkHandler.Cancel))
	router.GET("/api/v1/payment-links/:link_id/qr", admin(deps.PaymentLinkHandler.QRCode))

	// Payouts
	router.POST("/api/v1/payouts", admin(deps.PayoutHandler.Create))
	router.GET("/api/v1/payouts", admin(deps.PayoutHandler.List))
	router.POST("/api/v1/payouts/estimate", admin(deps.PayoutHandler.Estimate))
	router.GET("/api/v1/payouts/:payout_id", admin(deps.PayoutHandler.Get))
	router.GET("/api/v1/balance", admin(deps.PayoutHandler.Balance))

	router.POST("/api/v1/webhook/confirm", admin(deps.ConfirmHandler.Confirm))
	router.GET("/api/v1/audit", admin(deps.AuditHandler.List))
	router.GET("/api/v1/stats/daily", admin(deps.StatsHandler.Daily))

	return middleware.RequestLogger(router)
}

func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// wrap converts an http.HandlerFunc to an httprouter.Handle and exposes the
// route params through the request context.
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
