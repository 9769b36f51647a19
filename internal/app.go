package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailcast/pkg/health"
	"github.com/dmitrymomot/mailcast/pkg/logger"
)

// Server limits. There is no default write timeout: a progress stream lives
// as long as its batch.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 0
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
	defaultMaxBodyBytes      = 32 << 20
)

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// App is the HTTP service: a chi router with the middleware stack, the
// health probes and the routes of every registered Handler. Configure it
// with options; it does not change after New.
type App struct {
	router       chi.Router
	errorHandler ErrorHandler
	health       *healthConfig
	logger       *slog.Logger
	middlewares  []Middleware
	handlers     []Handler
	maxBodyBytes int64
}

// Option configures an App.
type Option func(*App)

// New builds the App.
//
//	app := mailcast.New(
//		mailcast.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//		mailcast.WithHandlers(handlers.NewDispatch(dispatcher)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		logger:       logger.NewNope(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(a)
	}

	// Unknown routes go through the error handler so clients always get the same error body.
	a.router.NotFound(a.wrapHandler(func(Context) error {
		return NewHTTPError(http.StatusNotFound, "not found", WithErrorCode("not_found"))
	}))
	a.router.MethodNotAllowed(a.wrapHandler(func(Context) error {
		return NewHTTPError(http.StatusMethodNotAllowed, "method not allowed", WithErrorCode("method_not_allowed"))
	}))

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}
	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(a.health.checks,
			health.WithLogger(a.logger),
			health.WithOptional(a.health.optional...),
		))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
	return a
}

// ServeHTTP makes App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// WithMiddleware appends app-wide middleware; the first one is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, mw...) }
}

// WithHandlers registers handlers whose Routes are declared during New.
func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithErrorHandler renders errors returned before the response was written.
// Without one, errors are written as plain text.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.errorHandler = h }
}

// WithLogger sets the app logger used by Context logging and the health probes.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMaxBodySize limits request bodies read by BindJSON. Defaults to 32MB.
// Inline base64 attachments count against it.
func WithMaxBodySize(n int64) Option {
	return func(a *App) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}

func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError renders err unless the response already started, in which case
// it is only logged.
func (a *App) handleError(c Context, err error) {
	switch {
	case c.Written():
		c.LogError("handler error after response was written", "error", err)
	case a.errorHandler != nil:
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", "error", herr, "cause", err)
		}
	default:
		code, msg := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
		if httpErr := AsHTTPError(err); httpErr != nil {
			code, msg = httpErr.Code, httpErr.Message
		}
		http.Error(c.ResponseWriter(), msg, code)
	}
}

type healthConfig struct {
	checks        health.Checks
	optional      []string
	livenessPath  string
	readinessPath string
}

// HealthOption configures the health probes.
type HealthOption func(*healthConfig)

// WithHealthChecks mounts /health/live and /health/ready.
//
//	mailcast.WithHealthChecks(
//		mailcast.WithReadinessCheck("mailer", transport.Healthcheck),
//		mailcast.WithOptionalReadinessCheck("storage", store.Healthcheck),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{livenessPath: defaultLivenessPath, readinessPath: defaultReadinessPath}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

// WithLivenessPath moves the liveness probe.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath moves the readiness probe.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a check whose failure makes readiness answer 503.
// A nil fn is ignored.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn == nil {
			return
		}
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithOptionalReadinessCheck adds a check whose failure only reports "degraded".
// A nil fn is ignored.
func WithOptionalReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			WithReadinessCheck(name, fn)(c)
			c.optional = append(c.optional, name)
		}
	}
}
