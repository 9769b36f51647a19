package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailcast/internal"
	"github.com/dmitrymomot/mailcast/pkg/id"
	"github.com/dmitrymomot/mailcast/pkg/logger"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds IDs accepted from upstream proxies.
const maxRequestIDLen = 128

type requestIDKey struct{}

type requestIDConfig struct {
	generate func() string
	headers  []string
}

// RequestIDOption configures the RequestID middleware.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders replaces the incoming headers checked for an upstream ID, in priority order.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator replaces the ULID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// RequestID tags each request with an ID, reusing a trace ID set by a proxy
// when one is present and sane. The ID is stored on the request context
// and returned in the X-Request-ID header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		generate: id.NewULID,
		headers:  []string{RequestIDHeader, "X-Correlation-ID"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID := upstreamID(c, cfg.headers)
			if reqID == "" {
				reqID = cfg.generate()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)
			return next(c)
		}
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	v, _ := c.Get(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}

// upstreamID returns the first non-empty header value that fits maxRequestIDLen.
func upstreamID(c internal.Context, headers []string) string {
	for _, h := range headers {
		if v := c.Header(h); v != "" && len(v) <= maxRequestIDLen {
			return v
		}
	}
	return ""
}
