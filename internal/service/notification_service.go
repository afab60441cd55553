package service

import (
	"context"
	"fmt"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/internal/metrics"

	"github.com/rs/zerolog"
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	bundles  ports.OrderBundleService
	renderer ports.NotificationRenderer
	mailer   ports.Mailer
	log      zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(
	bundles ports.OrderBundleService,
	renderer ports.NotificationRenderer,
	mailer ports.Mailer,
	log zerolog.Logger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		bundles:  bundles,
		renderer: renderer,
		mailer:   mailer,
		log:      log,
	}
}

// SendOrderConfirmation aggregates, renders and sends the confirmation
// for orderID. Any failure abandons the attempt; nothing is re-queued.
func (s *NotificationServiceImpl) SendOrderConfirmation(ctx context.Context, orderID int64) error {
	n, err := s.Preview(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, n.To, n.Subject, n.HTMLBody); err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultDeliveryFailed).Inc()
		s.log.Error().Err(err).Int64("order_id", orderID).Msg("confirmation: send failed")
		return fmt.Errorf("send confirmation for order %d: %w", orderID, err)
	}

	metrics.NotificationsTotal.WithLabelValues(metrics.ResultSent).Inc()
	s.log.Info().Int64("order_id", orderID).Msg("confirmation: sent")
	return nil
}

// Preview renders the confirmation without sending it.
func (s *NotificationServiceImpl) Preview(ctx context.Context, orderID int64) (*domain.RenderedNotification, error) {
	bundle, err := s.bundles.Fetch(ctx, orderID)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultLookupFailed).Inc()
		return nil, err
	}

	n, err := s.renderer.Render(bundle)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultRenderFailed).Inc()
		s.log.Error().Err(err).Int64("order_id", orderID).Msg("confirmation: render failed")
		return nil, fmt.Errorf("render confirmation for order %d: %w", orderID, err)
	}
	return n, nil
}
