// Package mailer holds the outbound mail transports.
package mailer

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"order-webhook-service/config"
	"order-webhook-service/internal/metrics"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPMailer implements ports.Mailer over SMTP. Each Send opens its own
// connection, and cancelling ctx closes it.
type SMTPMailer struct {
	host     string
	port     int
	from     string
	username string
	password string
	timeout  time.Duration
	now      func() time.Time
}

// NewSMTPMailer creates an SMTP transport. Auth is only used when a
// username is configured; STARTTLS is used when the server offers it.
func NewSMTPMailer(cfg config.SMTPConfig, from string) *SMTPMailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     from,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Send delivers one HTML message. It returns once the server accepts the
// message, ctx ends, or the configured timeout passes.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("smtp: invalid recipient")
	}

	msg, err := m.buildMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.MailSendDuration.WithLabelValues("smtp").Observe(time.Since(start).Seconds())
	}()

	var stop func() bool
	defer func() {
		if stop != nil {
			stop()
		}
	}()
	dial := func(dialCtx context.Context, network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(dialCtx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline := time.Now().Add(m.timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = conn.SetDeadline(deadline)
		stop = context.AfterFunc(ctx, func() { _ = conn.Close() })
		return conn, nil
	}

	client, err := mail.NewClient(m.host, m.clientOptions(dial)...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send: %w", ctxErr)
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) clientOptions(dial mail.DialContextFunc) []mail.Option {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(m.port),
		mail.WithTimeout(m.timeout),
		mail.WithDialContextFunc(dial),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	return opts
}

func (m *SMTPMailer) buildMessage(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("smtp: invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp: invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(m.now())
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}
