package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook metrics
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_webhook_events_total",
			Help: "Total number of gateway webhook deliveries by event kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	WebhookSignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ows_webhook_signature_failures_total",
			Help: "Total number of deliveries rejected for a bad signature",
		},
	)

	// Capture metrics
	CaptureAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_capture_attempts_total",
			Help: "Total number of payment capture calls by result",
		},
		[]string{"result"},
	)

	CaptureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ows_capture_duration_seconds",
			Help:    "Duration of payment capture calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Confirmation metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_notifications_total",
			Help: "Total number of order confirmations by result",
		},
		[]string{"result"},
	)

	MailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ows_mail_send_duration_seconds",
			Help:    "Duration of outbound mail sends in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ows_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ows_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"group"},
	)
)

// Notification results.
const (
	ResultSent           = "sent"
	ResultLookupFailed   = "lookup_failed"
	ResultRenderFailed   = "render_failed"
	ResultDeliveryFailed = "delivery_failed"
)
