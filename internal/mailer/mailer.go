package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP delivery settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends plain text email over SMTP
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a message to a single recipient
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
