package mailer

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/prashanttechie/portfolio-project/internal/config"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	dialer Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)}
}

func NewSMTPMailerWithDialer(d Dialer) *SMTPMailer {
	return &SMTPMailer{dialer: d}
}

func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	msg, err := buildMessage(e)
	if err != nil {
		return err
	}

	// gomail takes no context; give up waiting once ctx is done
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	}
}

func buildMessage(e Email) (*gomail.Message, error) {
	if e.From == "" {
		return nil, errors.New("mailer: From is required")
	}
	if len(e.AllRecipients()) == 0 {
		return nil, errors.New("mailer: at least one recipient is required")
	}
	if e.TextBody == "" && e.HTMLBody == "" {
		return nil, errors.New("mailer: empty body")
	}

	msg := gomail.NewMessage()
	if e.FromName != "" {
		msg.SetAddressHeader("From", e.From, e.FromName)
	} else {
		msg.SetHeader("From", e.From)
	}
	if len(e.To) > 0 {
		msg.SetHeader("To", e.To...)
	}
	if len(e.Cc) > 0 {
		msg.SetHeader("Cc", e.Cc...)
	}
	if len(e.Bcc) > 0 {
		msg.SetHeader("Bcc", e.Bcc...)
	}
	msg.SetHeader("Subject", e.Subject)
	for k, v := range e.Headers {
		msg.SetHeader(k, v)
	}

	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		msg.SetBody("text/plain", e.TextBody)
		msg.AddAlternative("text/html", e.HTMLBody)
	case e.HTMLBody != "":
		msg.SetBody("text/html", e.HTMLBody)
	default:
		msg.SetBody("text/plain", e.TextBody)
	}
	return msg, nil
}
