package providers

import (
	"context"
	"fmt"
	"io"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/delivery"
	"gopkg.in/gomail.v2"
)

// NewMailer builds the SMTP mailer. Without a host it returns a mailer
// that refuses every message with delivery.ErrMailDisabled.
func NewMailer(cfg config.MailConfig) delivery.Mailer {
	if cfg.Host == "" {
		return DisabledMailer{}
	}
	return NewSMTPMailer(cfg)
}

// DisabledMailer is used when SMTP is not configured
type DisabledMailer struct{}

// Send implements delivery.Mailer
func (DisabledMailer) Send(context.Context, *delivery.Email) error {
	return delivery.ErrMailDisabled
}

// SMTPMailer sends mail through an SMTP relay with STARTTLS when offered
type SMTPMailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}
}

// Send implements delivery.Mailer. gomail has no context support, so the
// context is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, e *delivery.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.message(e)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}

func (m *SMTPMailer) message(e *delivery.Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, m.fromName)
	if e.ToName != "" {
		msg.SetAddressHeader("To", e.To, e.ToName)
	} else {
		msg.SetHeader("To", e.To)
	}
	replyTo := e.ReplyTo
	if replyTo == "" {
		replyTo = m.fromEmail
	}
	msg.SetHeader("Reply-To", replyTo)
	msg.SetHeader("Subject", e.Subject)

	msg.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		msg.AddAlternative("text/html", e.HTML)
	}

	for _, att := range e.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		msg.Attach(att.Filename, settings...)
	}
	return msg
}
