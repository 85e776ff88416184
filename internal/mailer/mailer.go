// Package mailer owns the SMTP transport and the email template contract.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sony/gobreaker"
)

// Mailer is the outbound mail transport. Send returns a message identifier
// on success; Verify is a connectivity probe for health reporting,
// independent of send.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
	Verify(ctx context.Context) (time.Duration, error)
}

// SMTPMailer sends through a single SMTP relay with StartTLS. The send path
// runs behind a circuit breaker so a dead relay fails fast into the durable
// retry queue instead of holding request goroutines on SMTP timeouts.
type SMTPMailer struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	breaker *gobreaker.CircuitBreaker
}

// NewSMTPMailer creates an SMTPMailer for the given relay.
func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("smtp breaker state change", "from", from.String(), "to", to.String())
		},
	})
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from, breaker: breaker}
}

var _ Mailer = (*SMTPMailer)(nil)

// Send delivers one plain-text email via StartTLS and returns the generated
// message id.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.host == "" {
		return "", fmt.Errorf("smtp not configured")
	}

	msgID := fmt.Sprintf("<%d@%s>", time.Now().UnixNano(), m.host)

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	e.Headers.Set("Message-Id", msgID)

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	tlsConfig := &tls.Config{
		ServerName: m.host,
		MinVersion: tls.VersionTLS12,
	}

	_, err := m.breaker.Execute(func() (any, error) {
		return nil, e.SendWithStartTLS(net.JoinHostPort(m.host, m.port), auth, tlsConfig)
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return msgID, nil
}

// Verify dials the relay and reports the round-trip time. It does not send
// anything and does not count against the breaker.
func (m *SMTPMailer) Verify(ctx context.Context) (time.Duration, error) {
	if m.host == "" {
		return 0, fmt.Errorf("smtp not configured")
	}

	start := time.Now()
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(m.host, m.port))
	if err != nil {
		return 0, fmt.Errorf("verify smtp: %w", err)
	}
	_ = conn.Close()
	return time.Since(start), nil
}
