package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/mailcast/internal"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

// corsConfig lets browser dashboards start a dispatch and read the
// tracking headers of the progress stream.
type corsConfig struct {
	origins []string
	methods []string
	headers []string
	expose  []string
	maxAge  time.Duration
}

// CORSOption configures the CORS middleware.
type CORSOption func(*corsConfig)

// WithAllowOrigins restricts CORS to the listed origins.
// Blank entries are dropped; an empty list keeps the "*" default.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *corsConfig) {
		list := slices.DeleteFunc(slices.Clone(origins), func(o string) bool { return strings.TrimSpace(o) == "" })
		for i := range list {
			list[i] = strings.TrimSpace(list[i])
		}
		if len(list) > 0 {
			cfg.origins = list
		}
	}
}

// WithExposeHeaders adds response headers readable by the browser.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *corsConfig) {
		cfg.expose = append(cfg.expose, headers...)
	}
}

// WithMaxAge sets the preflight cache duration. Zero omits the header.
func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *corsConfig) {
		cfg.maxAge = d
	}
}

// CORS answers preflight requests and decorates cross-origin responses.
// Requests from origins outside the allow list pass through without CORS
// headers and are blocked by the browser.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &corsConfig{
		origins: []string{"*"},
		methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		headers: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		expose:  []string{"X-Request-ID", "X-Dispatch-ID"},
		maxAge:  DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	wildcard := slices.Contains(cfg.origins, "*")
	methods := strings.Join(cfg.methods, ", ")
	headers := strings.Join(cfg.headers, ", ")
	expose := strings.Join(cfg.expose, ", ")
	maxAge := strconv.Itoa(int(cfg.maxAge.Seconds()))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || (!wildcard && !slices.Contains(cfg.origins, origin)) {
				return next(c)
			}

			h := c.ResponseWriter().Header()
			h.Add("Vary", "Origin")
			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.maxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
