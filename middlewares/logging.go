package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailcast/internal"
)

// LoggingConfig configures the logging middleware.
type LoggingConfig struct {
	Now        func() time.Time // Clock used for durations
	SkipPaths  []string         // Paths that are not logged (e.g. probes)
	LogStarted bool             // Also log when a request starts
}

// LoggingOption configures LoggingConfig.
type LoggingOption func(*LoggingConfig)

// WithLoggingSkipPaths excludes paths from request logging.
func WithLoggingSkipPaths(paths ...string) LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.SkipPaths = append(cfg.SkipPaths, paths...)
	}
}

// WithLoggingStarted logs a line when the request starts, not only when it finishes.
// Useful for streaming endpoints that stay open for minutes.
func WithLoggingStarted() LoggingOption {
	return func(cfg *LoggingConfig) {
		cfg.LogStarted = true
	}
}

// WithLoggingClock replaces the clock used to measure durations.
func WithLoggingClock(now func() time.Time) LoggingOption {
	return func(cfg *LoggingConfig) {
		if now != nil {
			cfg.Now = now
		}
	}
}

// Logging returns middleware that logs each request with its status, size and duration.
// Request ID is automatically included via RequestIDExtractor() if configured.
// Server errors are logged at error level, client errors at warn level.
func Logging(opts ...LoggingOption) internal.Middleware {
	cfg := &LoggingConfig{
		Now: time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			req := c.Request()
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			start := cfg.Now()
			if cfg.LogStarted {
				c.LogInfo("request started",
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
				)
			}

			err := next(c)

			status, size := 0, int64(0)
			if rw := c.ResponseWriter(); rw != nil {
				status, size = rw.Status(), rw.Size()
			}
			if !c.Written() {
				// The error handler writes after this middleware returns.
				status = errorStatus(err)
			}

			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Int64("size", size),
				slog.Duration("duration", cfg.Now().Sub(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}

			switch {
			case status >= 500:
				c.LogError("request finished", attrs...)
			case status >= 400:
				c.LogWarn("request finished", attrs...)
			default:
				c.LogInfo("request finished", attrs...)
			}

			return err
		}
	}
}

// errorStatus guesses the status the error handler will render for err.
func errorStatus(err error) int {
	if err == nil {
		return 200
	}
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return httpErr.Code
	}
	return 500
}
