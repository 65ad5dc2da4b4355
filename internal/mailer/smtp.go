package mailer

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrMissingCredentials is returned when the sender address or secret is
// not configured. It is fatal for a run and raised before any send.
var ErrMissingCredentials = errors.New("missing mail sender credentials")

// Message is one outgoing mail.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTPSender creates a sender. username and password are the deployment
// secrets; both are required.
func NewSMTPSender(host string, port int, username, password string) (*SMTPSender, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if host == "" || port <= 0 {
		return nil, fmt.Errorf("invalid SMTP relay %q:%d", host, port)
	}
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password)}, nil
}

// Send delivers msg, opening a new connection per message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
