// Package email sends transactional mail. The agenda worker is the only
// producer today; it mails each owner their morning summary.
package email

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/agendahub/agenda-api/config"
)

type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Configured reports whether the SMTP settings are complete enough to dial.
// Workers skip their mail runs entirely when this is false.
func Configured(cfg config.SMTPConfig) bool {
	return cfg.Host != "" && cfg.Port != 0 && cfg.From != ""
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) Send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	// gomail dials without context support; honor cancellation up front.
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}
