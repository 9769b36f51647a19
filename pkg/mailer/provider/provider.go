// Package provider selects the mail transport from configuration.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/mailcast/pkg/mailer"
	"github.com/dmitrymomot/mailcast/pkg/mailer/resend"
	"github.com/dmitrymomot/mailcast/pkg/mailer/smtp"
)

// Supported provider names.
const (
	SMTP   = "smtp"
	Resend = "resend"
)

// ErrUnknownProvider is returned for a MAILER_PROVIDER value that is not supported.
var ErrUnknownProvider = errors.New("mailer: unknown provider")

// Config selects and configures one transport.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Provider string `env:"MAILER_PROVIDER" envDefault:"smtp"`
	SMTP     smtp.Config
	Resend   resend.Config
}

// Transport is a configured sender plus an optional readiness probe.
type Transport struct {
	Sender mailer.Sender
	// Healthcheck is nil when the provider has nothing cheap to probe.
	Healthcheck func(ctx context.Context) error
	Name        string
}

// New builds the transport named by cfg.Provider.
// Missing credentials return mailer.ErrSenderNotConfigured.
func New(cfg Config) (*Transport, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = SMTP
	}

	switch name {
	case SMTP:
		s, err := smtp.New(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		return &Transport{Name: name, Sender: s, Healthcheck: s.Healthcheck}, nil
	case Resend:
		s, err := resend.New(cfg.Resend)
		if err != nil {
			return nil, err
		}
		return &Transport{Name: name, Sender: s}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
