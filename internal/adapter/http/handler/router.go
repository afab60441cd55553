package handler

import (
	"time"

	"order-webhook-service/internal/adapter/http/middleware"
	"order-webhook-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DefaultMaxBodyBytes caps request bodies when RouterDeps.MaxBodyBytes is 0.
const DefaultMaxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WebhookSvc      ports.WebhookService
	AdminAuthSvc    ports.AdminAuthService
	BundleSvc       ports.OrderBundleService
	NotificationSvc ports.NotificationService
	RateLimitStore  middleware.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	AuditSvc        ports.AuditService // nil = audit logging disabled
	WebhookTimeout  time.Duration
	MaxBodyBytes    int64
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", Health)
	r.GET("/ready", Ready(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Gateway webhook (signature-authenticated in the service) ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc, deps.WebhookTimeout)
	r.POST("/webhook/razorpay", rl("webhook"), webhookHandler.Handle)

	// --- Admin API ---
	adminHandler := NewAdminHandler(deps.AdminAuthSvc, deps.BundleSvc, deps.NotificationSvc)
	admin := r.Group("/api/v1/admin")
	if deps.AuditSvc != nil {
		admin.Use(middleware.AuditLog(deps.AuditSvc))
	}
	admin.POST("/login", rl("admin_login"), adminHandler.Login)

	authed := admin.Group("", middleware.AdminAuth(deps.AdminAuthSvc), rl("admin"))
	{
		authed.POST("/logout", adminHandler.Logout)
		authed.GET("/orders/:id", adminHandler.GetOrder)
		authed.GET("/orders/:id/preview", adminHandler.PreviewConfirmation)
		authed.POST("/orders/:id/resend-confirmation", adminHandler.ResendConfirmation)
	}

	return r
}
