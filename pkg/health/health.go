package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailcast/pkg/logger"
)

// DefaultTimeout bounds a whole readiness probe.
const DefaultTimeout = 5 * time.Second

// Status is the state of one check or of the whole service.
type Status string

const (
	StatusOK          Status = "ok"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

// CheckFunc reports a dependency as healthy by returning nil.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to check functions.
type Checks map[string]CheckFunc

// Result is the outcome of one check.
type Result struct {
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Optional   bool   `json:"optional,omitempty"`
}

// Report is the outcome of a readiness probe.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status Status            `json:"status"`
}

type config struct {
	logger   *slog.Logger
	optional map[string]bool
	timeout  time.Duration
}

// Option configures a probe.
type Option func(*config)

// WithTimeout bounds the whole probe. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional marks checks whose failure degrades the service without making it unavailable.
func WithOptional(names ...string) Option {
	return func(c *config) {
		for _, n := range names {
			c.optional[n] = true
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout:  DefaultTimeout,
		logger:   logger.NewNope(),
		optional: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks in parallel and aggregates them into a Report.
// No checks means the service is ok.
func Run(ctx context.Context, checks Checks, opts ...Option) *Report {
	return run(ctx, checks, newConfig(opts...))
}

func run(ctx context.Context, checks Checks, cfg *config) *Report {
	report := &Report{Status: StatusOK}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	report.Checks = make(map[string]Result, len(checks))

	for name, check := range checks {
		g.Go(func() error {
			res := runCheck(ctx, check)
			res.Optional = cfg.optional[name]
			if res.Status != StatusOK {
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Bool("optional", res.Optional),
					slog.String("error", res.Error),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = res
			switch {
			case res.Status == StatusOK:
			case res.Optional && report.Status == StatusOK:
				report.Status = StatusDegraded
			case !res.Optional:
				report.Status = StatusUnavailable
			}
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func runCheck(ctx context.Context, check CheckFunc) (res Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Status = StatusUnavailable
			res.Error = fmt.Sprintf("%v: %v", ErrCheckPanicked, p)
		}
		res.DurationMs = time.Since(start).Milliseconds()
	}()

	res.Status = StatusOK
	if err := check(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrCheckTimeout, err)
		}
		res.Status = StatusUnavailable
		res.Error = err.Error()
	}
	return res
}
