package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// Level is the lowest level shipped as a Sentry log entry. Issues are opened for errors only.
	Level string `env:"SENTRY_LEVEL" envDefault:"warn"`
}

// FlushSentry blocks up to timeout while queued events are delivered.
// Safe to call when Sentry is disabled.
func FlushSentry(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	})
	if err != nil {
		return nil, err
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLevels(ParseLevel(cfg.Level)),
	}.NewSentryHandler(context.Background()), nil
}

// sentryLevels lists the slog levels at or above lowest.
func sentryLevels(lowest slog.Level) []slog.Level {
	var levels []slog.Level
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l >= lowest {
			levels = append(levels, l)
		}
	}
	return levels
}
