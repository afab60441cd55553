package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-webhook-service/config"
	"order-webhook-service/internal/metrics"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher is the subset of *nats.Conn the relay needs.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// MailMessage is the job published to the mail relay subject.
type MailMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTMLBody  string    `json:"html_body"`
	CreatedAt time.Time `json:"created_at"`
}

// NATSMailer implements ports.Mailer by handing messages to a relay
// service over NATS. A successful publish counts as a send.
type NATSMailer struct {
	pub     Publisher
	subject string
	from    string
	now     func() time.Time
}

// NewNATSMailer creates a NATS relay transport.
func NewNATSMailer(pub Publisher, subject, from string) *NATSMailer {
	return &NATSMailer{
		pub:     pub,
		subject: subject,
		from:    from,
		now:     time.Now,
	}
}

// Send publishes one message to the relay subject.
func (m *NATSMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.MailSendDuration.WithLabelValues("nats").Observe(time.Since(start).Seconds())
	}()

	job := MailMessage{
		ID:        uuid.NewString(),
		From:      m.from,
		To:        to,
		Subject:   subject,
		HTMLBody:  htmlBody,
		CreatedAt: m.now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	msg := nats.NewMsg(m.subject)
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set(nats.MsgIdHdr, job.ID)

	if err := m.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Connect opens a NATS connection for the mail relay.
func Connect(cfg config.NATSConfig, log zerolog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("order-webhook-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return conn, nil
}

// NATSHealthCheck implements ports.HealthChecker for the relay connection.
type NATSHealthCheck struct {
	conn *nats.Conn
}

func NewNATSHealthCheck(conn *nats.Conn) *NATSHealthCheck {
	return &NATSHealthCheck{conn: conn}
}

func (h *NATSHealthCheck) Ping(_ context.Context) error {
	if !h.conn.IsConnected() {
		return fmt.Errorf("nats status %s", h.conn.Status())
	}
	return nil
}

func (h *NATSHealthCheck) Name() string {
	return "nats"
}
