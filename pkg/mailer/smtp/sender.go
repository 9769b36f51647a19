// Package smtp implements mailer.Sender over SMTP using gomail.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/mailcast/pkg/id"
	"github.com/dmitrymomot/mailcast/pkg/mailer"
)

type dialer interface {
	Dial() (gomail.SendCloser, error)
	DialAndSend(m ...*gomail.Message) error
}

// Sender implements mailer.Sender over an authenticated SMTP connection.
// Each Send opens its own connection, so a Sender is safe for concurrent use.
type Sender struct {
	dialer      dialer
	from        string
	senderEmail string
}

// New creates an SMTP sender.
// Returns mailer.ErrSenderNotConfigured when the sender email or password is missing.
func New(cfg Config) (*Sender, error) {
	if cfg.SenderEmail == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp: %w", mailer.ErrSenderNotConfigured)
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return newSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.SenderEmail, cfg.Password), cfg), nil
}

func newSender(d dialer, cfg Config) *Sender {
	return &Sender{
		dialer:      d,
		from:        mailer.Address(cfg.SenderName, cfg.SenderEmail),
		senderEmail: cfg.SenderEmail,
	}
}

// Send implements mailer.Sender. The returned id is the generated Message-ID header.
// When ctx is done before the server answers, Send returns ctx.Err(); the SMTP
// transaction itself cannot be interrupted and completes in the background.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	if err := email.Validate(); err != nil {
		return "", err
	}

	messageID := id.NewMessageID(s.senderEmail)
	msg := s.message(email, messageID)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", errors.Join(mailer.ErrSendFailed, fmt.Errorf("smtp: %w", err))
		}
		return messageID, nil
	}
}

// Healthcheck dials and authenticates against the SMTP server.
func (s *Sender) Healthcheck(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		conn, err := s.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: healthcheck: %w", err)
		}
		return nil
	}
}

func (s *Sender) message(email *mailer.Email, messageID string) *gomail.Message {
	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = s.from
	}
	m.SetHeader("From", from)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetDateHeader("Date", time.Now())
	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}
	for _, k := range slices.Sorted(maps.Keys(email.Headers)) {
		m.SetHeader(k, email.Headers[k])
	}

	if email.Text != "" {
		m.SetBody("text/plain", email.Text)
		m.AddAlternative("text/html", email.HTML)
	} else {
		m.SetBody("text/html", email.HTML)
	}

	for _, a := range email.Attachments {
		content := a.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		m.Attach(a.Filename, settings...)
	}

	return m
}
