package service

import (
	"context"
	"errors"
	"time"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/internal/metrics"
	"order-webhook-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// WebhookConfig holds the dispatcher's settings.
type WebhookConfig struct {
	Secret             string
	SettlementCurrency string
	// DedupeTTL > 0 suppresses repeated payment.captured deliveries that
	// carry the same event id. Requires a deduper.
	DedupeTTL time.Duration
}

// WebhookServiceImpl implements ports.WebhookService. Each call is
// independent: verify, classify, then capture or confirm.
type WebhookServiceImpl struct {
	cfg      WebhookConfig
	sigSvc   ports.SignatureService
	capturer ports.PaymentCapturer
	notifier ports.NotificationService
	deduper  ports.EventDeduper
	log      zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl. deduper may be nil.
func NewWebhookService(
	cfg WebhookConfig,
	sigSvc ports.SignatureService,
	capturer ports.PaymentCapturer,
	notifier ports.NotificationService,
	deduper ports.EventDeduper,
	log zerolog.Logger,
) *WebhookServiceImpl {
	if cfg.SettlementCurrency == "" {
		cfg.SettlementCurrency = domain.DefaultCurrency
	}
	return &WebhookServiceImpl{
		cfg:      cfg,
		sigSvc:   sigSvc,
		capturer: capturer,
		notifier: notifier,
		deduper:  deduper,
		log:      log,
	}
}

// HandleEvent verifies req against the raw body before parsing anything,
// then routes by event kind.
func (s *WebhookServiceImpl) HandleEvent(ctx context.Context, req ports.WebhookRequest) (domain.WebhookOutcome, error) {
	if !s.sigSvc.Verify(s.cfg.Secret, req.Body, req.Signature) {
		metrics.WebhookSignatureFailures.Inc()
		s.log.Warn().Str("event_id", req.EventID).Msg("webhook: invalid signature")
		return "", apperror.ErrInvalidSignature()
	}

	evt, err := domain.ParseWebhookEvent(req.Body)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", req.EventID).Msg("webhook: unparsable body")
		return "", apperror.ErrBadJSON(err)
	}
	evt.ID = req.EventID

	var outcome domain.WebhookOutcome
	switch evt.Kind {
	case domain.EventPaymentAuthorized:
		s.captureAuthorized(ctx, evt)
		outcome = domain.OutcomeCapturedFromAuthorized
	case domain.EventPaymentCaptured:
		outcome, err = s.confirmCaptured(ctx, evt)
	default:
		s.log.Debug().Str("kind", string(evt.Kind)).Msg("webhook: ignoring event")
		outcome = domain.OutcomeIgnored
	}

	s.record(evt.Kind, outcome, err)
	return outcome, err
}

// captureAuthorized makes one capture attempt. Failures are logged and never
// reach the gateway: an uncaptured authorization expires on its side.
func (s *WebhookServiceImpl) captureAuthorized(ctx context.Context, evt *domain.WebhookEvent) {
	paymentID := evt.PaymentID()
	amount, ok := evt.PaymentAmount()
	if paymentID == "" || !ok {
		metrics.CaptureAttemptsTotal.WithLabelValues("skipped").Inc()
		s.log.Warn().Str("payment_id", paymentID).Bool("has_amount", ok).Msg("webhook: authorized event without payment id or amount")
		return
	}

	start := time.Now()
	result, err := s.capturer.Capture(ctx, paymentID, amount, s.cfg.SettlementCurrency)
	metrics.CaptureDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CaptureAttemptsTotal.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Str("payment_id", paymentID).Int64("amount", amount).Msg("webhook: capture failed")
		return
	}

	metrics.CaptureAttemptsTotal.WithLabelValues("captured").Inc()
	ev := s.log.Info().Str("payment_id", paymentID).Int64("amount", amount)
	if result != nil {
		ev = ev.Str("status", result.Status)
	}
	ev.Msg("webhook: payment captured")
}

func (s *WebhookServiceImpl) confirmCaptured(ctx context.Context, evt *domain.WebhookEvent) (domain.WebhookOutcome, error) {
	orderID, err := evt.InternalOrderID()
	switch {
	case errors.Is(err, domain.ErrMissingOrderID):
		s.log.Warn().Str("event_id", evt.ID).Msg("webhook: captured event without internal_order_id")
		return "", apperror.ErrMissingInternalOrderID()
	case err != nil:
		s.log.Warn().Str("event_id", evt.ID).Msg("webhook: captured event with invalid internal_order_id")
		return "", apperror.ErrInvalidInternalOrderID()
	}

	if s.dedupeEnabled(evt) {
		first, err := s.deduper.FirstDelivery(ctx, evt.ID, s.cfg.DedupeTTL)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", evt.ID).Msg("webhook: dedupe check failed, processing anyway")
		} else if !first {
			s.log.Info().Str("event_id", evt.ID).Int64("order_id", orderID).Msg("webhook: duplicate delivery suppressed")
			return domain.OutcomeDuplicate, nil
		}
	}

	if err := s.notifier.SendOrderConfirmation(ctx, orderID); err != nil {
		s.log.Error().Err(err).Int64("order_id", orderID).Msg("webhook: order confirmation failed")
		if s.dedupeEnabled(evt) {
			// Let the gateway's retry through.
			if ferr := s.deduper.Forget(context.WithoutCancel(ctx), evt.ID); ferr != nil {
				s.log.Warn().Err(ferr).Str("event_id", evt.ID).Msg("webhook: failed to release dedupe key")
			}
		}
		return "", apperror.ErrConfirmationFailed(err)
	}
	return domain.OutcomeOK, nil
}

func (s *WebhookServiceImpl) dedupeEnabled(evt *domain.WebhookEvent) bool {
	return s.deduper != nil && s.cfg.DedupeTTL > 0 && evt.ID != ""
}

func (s *WebhookServiceImpl) record(kind domain.EventKind, outcome domain.WebhookOutcome, err error) {
	label := string(kind)
	if kind != domain.EventPaymentAuthorized && kind != domain.EventPaymentCaptured {
		label = "other"
	}
	result := string(outcome)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			result = appErr.Code
		} else {
			result = "error"
		}
	}
	metrics.WebhookEventsTotal.WithLabelValues(label, result).Inc()
}
