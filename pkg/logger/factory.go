package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Config is parsed from the environment by the service and the CLI alike.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or text
	Sentry SentryConfig
}

// NewFromConfig creates a logger writing to w. When cfg.Sentry.DSN is set, records
// are also forwarded to Sentry; initialization failures fall back to w only.
func NewFromConfig(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	if cfg.Sentry.DSN != "" {
		reporter, err := newSentryHandler(cfg.Sentry)
		if err != nil {
			slog.New(handler).Warn("sentry disabled", slog.String("error", err.Error()))
		} else {
			handler = fanout{handler, reporter}
		}
	}

	return slog.New(WithExtractors(handler, extractors...))
}

// NewNope returns a logger that discards everything. Packages use it as their default.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps debug, info, warn/warning and error to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
