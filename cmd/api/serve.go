package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"order-webhook-service/config"
	"order-webhook-service/internal/adapter/gateway"
	httpHandler "order-webhook-service/internal/adapter/http/handler"
	"order-webhook-service/internal/adapter/mailer"
	"order-webhook-service/internal/adapter/storage/memory"
	pgStorage "order-webhook-service/internal/adapter/storage/postgres"
	redisStorage "order-webhook-service/internal/adapter/storage/redis"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/internal/service"
	tmpl "order-webhook-service/internal/template"
	"order-webhook-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	sessionSweep    = time.Minute
)

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *cfgFile)
		},
	}
}

func runServe(parent context.Context, cfgFile string) error {
	if parent == nil {
		parent = context.Background()
	}

	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("mail_transport", cfg.Mail.Transport).
		Str("session_store", cfg.Admin.SessionStore).
		Msg("Starting Order Webhook Service")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	defer pool.Close()

	healthCheckers := []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}

	// Redis is optional: it backs sessions, dedupe and rate limiting.
	var (
		sessions  ports.SessionStore
		deduper   ports.EventDeduper
		rateStore *redisStorage.RateLimitStore
	)
	if needsRedis(cfg) {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		defer rdb.Close()

		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		rateStore = redisStorage.NewRateLimitStore(rdb)
		if cfg.Webhook.DedupeTTL > 0 {
			deduper = redisStorage.NewEventDeduper(rdb)
		}
		if cfg.Admin.SessionStore == "redis" {
			sessions = redisStorage.NewSessionStore(rdb)
		}
	}
	if sessions == nil {
		memSessions := memory.NewSessionStore()
		go memSessions.RunSweeper(ctx, sessionSweep)
		sessions = memSessions
	}

	// Outbound mail
	mail, mailCloser, mailHealth, err := newMailer(cfg, logger.Component(log, "mailer"))
	if err != nil {
		return err
	}
	defer mailCloser.Close()
	if mailHealth != nil {
		healthCheckers = append(healthCheckers, mailHealth)
	}

	// Repositories
	orderRepo := pgStorage.NewOrderRepo(pool)
	purchaserRepo := pgStorage.NewPurchaserRepo(pool)
	addressRepo := pgStorage.NewAddressRepo(pool)
	itemRepo := pgStorage.NewLineItemRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)

	// Core services
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.Admin.JWTSecret, cfg.Admin.Issuer)
	capturer := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret,
		&http.Client{Timeout: cfg.Gateway.Timeout})

	// Business services
	templates := tmpl.NewLoader(cfg.Notification.TemplatePath)
	if _, err := templates.Load(); err != nil {
		return fmt.Errorf("loading confirmation template: %w", err)
	}
	bundleSvc := service.NewOrderBundleService(orderRepo, purchaserRepo, addressRepo, itemRepo, logger.Component(log, "order_bundle"))
	renderer := service.NewNotificationRenderer(templates, service.Branding{
		StoreName:    cfg.Notification.StoreName,
		LogoURL:      cfg.Notification.LogoURL,
		StoreURL:     cfg.Notification.StoreURL,
		SupportEmail: cfg.Notification.SupportEmail,
	})
	notificationSvc := service.NewNotificationService(bundleSvc, renderer, mail, logger.Component(log, "notifier"))
	webhookSvc := service.NewWebhookService(service.WebhookConfig{
		Secret:             cfg.Gateway.WebhookSecret,
		SettlementCurrency: cfg.Gateway.SettlementCurrency,
		DedupeTTL:          cfg.Webhook.DedupeTTL,
	}, sigSvc, capturer, notificationSvc, deduper, logger.Component(log, "webhook"))
	adminAuthSvc := service.NewAdminAuthService(cfg.Admin.PasswordHash, cfg.Admin.SessionTTL, hashSvc, tokenSvc, sessions)
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))

	deps := httpHandler.RouterDeps{
		WebhookSvc:      webhookSvc,
		AdminAuthSvc:    adminAuthSvc,
		BundleSvc:       bundleSvc,
		NotificationSvc: notificationSvc,
		HealthCheckers:  healthCheckers,
		AuditSvc:        auditSvc,
		WebhookTimeout:  cfg.Webhook.Timeout,
		Logger:          log,
	}
	if rateStore != nil {
		deps.RateLimitStore = rateStore
	}
	router := httpHandler.SetupRouter(deps)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := auditSvc.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Audit writer did not drain")
	}

	log.Info().Msg("Server exited")
	return nil
}

// needsRedis reports whether any configured feature is backed by Redis.
// Rate limiting is only active when Redis is in use.
func needsRedis(cfg *config.Config) bool {
	return cfg.Admin.SessionStore == "redis" || cfg.Webhook.DedupeTTL > 0
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newMailer builds the configured transport. The returned closer releases
// its connection; the health checker is nil for transports without one.
func newMailer(cfg *config.Config, log zerolog.Logger) (ports.Mailer, io.Closer, ports.HealthChecker, error) {
	switch cfg.Mail.Transport {
	case "nats":
		conn, err := mailer.Connect(cfg.Mail.NATS, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return mailer.NewNATSMailer(conn, cfg.Mail.NATS.Subject, cfg.Mail.From),
			natsCloser{conn}, mailer.NewNATSHealthCheck(conn), nil
	default:
		return mailer.NewSMTPMailer(cfg.Mail.SMTP, cfg.Mail.From), nopCloser{}, nil, nil
	}
}

type natsCloser struct{ conn *nats.Conn }

func (c natsCloser) Close() error {
	return c.conn.Drain()
}
