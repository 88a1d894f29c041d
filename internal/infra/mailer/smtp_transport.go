package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"reserver_notifier/internal/domain/mail"

	gomail "github.com/go-mail/mail/v2"
)

// SMTPConfig describes the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// SMTPTransport delivers messages through an SMTP server, upgrading with STARTTLS.
type SMTPTransport struct {
	dialer *gomail.Dialer
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return &SMTPTransport{dialer: d}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send dials, delivers and closes the connection. go-mail has no context support, so the
// context is only checked before dialing.
func (t *SMTPTransport) Send(ctx context.Context, msg mail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}
	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp delivery to %v failed: %w", msg.To, err)
	}
	return nil
}
