package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/mailer"
	"github.com/dmitrymomot/mailcast/pkg/sanitizer"
)

// Config holds dispatcher settings.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	From        string        `env:"MAILER_FROM"`
	SendTimeout time.Duration `env:"MAILER_SEND_TIMEOUT" envDefault:"30s"`
	DelayMs     int           `env:"MAILER_DEFAULT_DELAY_MS" envDefault:"2000"`
	JitterMs    int           `env:"MAILER_DEFAULT_JITTER_MS" envDefault:"250"`
}

// DefaultSendTimeout bounds a single send when Config.SendTimeout is not set.
const DefaultSendTimeout = 30 * time.Second

// Job is one batch: rows to filter, how to read them and what to send.
type Job struct {
	ExtraContext    map[string]any
	Attachments     AttachmentIndex
	DelayMs         *float64 // nil uses the dispatcher default
	JitterMs        *float64 // nil uses the dispatcher default
	Mapping         Mapping
	Template        string
	SubjectTemplate string
	Format          mailer.Format
	Rows            []Row
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithAttachmentLoader enables attachments that reference a storage key.
func WithAttachmentLoader(l AttachmentLoader) Option {
	return func(d *Dispatcher) {
		d.loader = l
	}
}

// WithRandom replaces the jitter source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.rand = fn
		}
	}
}

// WithSleep replaces the pacing wait. fn must return ctx.Err() when ctx is done.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// WithClock replaces the clock used for item timestamps.
func WithClock(fn func() time.Time) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.now = fn
		}
	}
}

// Dispatcher runs dispatch jobs against one mail sender.
// It holds no per-job state and is safe for concurrent use by independent jobs.
type Dispatcher struct {
	sender mailer.Sender
	loader AttachmentLoader
	logger *slog.Logger
	rand   func() float64
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
	cfg    Config
	pacing Pacing
}

// New creates a Dispatcher. sender may be nil, in which case Run fails with
// mailer.ErrSenderNotConfigured before emitting anything.
func New(sender mailer.Sender, cfg Config, opts ...Option) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}

	d := &Dispatcher{
		sender: sender,
		cfg:    cfg,
		pacing: Pacing{DelayMs: cfg.DelayMs, JitterMs: cfg.JitterMs}.normalized(),
		logger: logger.NewNope(),
		rand:   rand.Float64,
		sleep:  sleepContext,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ready reports whether a sender is configured.
func (d *Dispatcher) Ready() bool {
	return d.sender != nil
}

// Pacing returns the default pacing applied when a job leaves it unset.
func (d *Dispatcher) Pacing() Pacing {
	return d.pacing
}

// Run executes job and emits start, one item per filtered row and done to sink.
//
// A failed send or attachment becomes an item with status "error" and the loop moves
// on. Run returns early, without a done event, when ctx is cancelled (ctx.Err())
// or when sink rejects an event (wrapped in ErrStreamClosed). A send already in
// flight is not interrupted by cancellation; it is bounded by the send timeout.
func (d *Dispatcher) Run(ctx context.Context, job Job, sink Sink) (Summary, error) {
	if d.sender == nil {
		return Summary{}, mailer.ErrSenderNotConfigured
	}

	rows := Filter(job.Rows, job.Mapping)
	index := job.Attachments.Normalized()
	pacing := NewPacing(job.DelayMs, job.JitterMs, d.pacing)
	summary := Summary{Total: len(rows)}

	log := d.logger.With(
		slog.Int("total", summary.Total),
		slog.Int("delay_ms", pacing.DelayMs),
		slog.Int("jitter_ms", pacing.JitterMs),
	)
	log.InfoContext(ctx, "dispatch started", slog.Int("rows", len(job.Rows)))

	if err := sink.Emit(newStartEvent(summary.Total)); err != nil {
		return summary, d.streamClosed(ctx, log, summary, err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, d.cancelled(ctx, log, summary, err)
		}

		item := d.deliver(ctx, log, i, row, job, index)
		if item.Status == StatusSent {
			summary.Sent++
		} else {
			summary.Failed++
		}

		if err := sink.Emit(item); err != nil {
			return summary, d.streamClosed(ctx, log, summary, err)
		}

		if i < len(rows)-1 {
			if err := d.sleep(ctx, pacing.Wait(d.rand)); err != nil {
				return summary, d.cancelled(ctx, log, summary, err)
			}
		}
	}

	if err := sink.Emit(newDoneEvent(summary)); err != nil {
		return summary, d.streamClosed(ctx, log, summary, err)
	}

	log.InfoContext(ctx, "dispatch finished",
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed),
	)
	return summary, nil
}

// deliver renders, resolves and sends one row. It never fails; problems are
// reported through the returned item.
func (d *Dispatcher) deliver(ctx context.Context, log *slog.Logger, i int, row Row, job Job, index AttachmentIndex) ItemEvent {
	to := row[job.Mapping.Recipient]
	log = log.With(slog.Int("index", i), slog.String("to", to))

	content := RenderMessage(job.Template, job.SubjectTemplate, row, job.Mapping, job.ExtraContext)
	if content.Body.Fallback() {
		log.WarnContext(ctx, "body template fell back to raw text", slog.Any("error", content.Body.Err))
	}
	if content.Subject.Fallback() {
		log.WarnContext(ctx, "subject template fell back to raw text", slog.Any("error", content.Subject.Err))
	}

	files := Resolve(row[job.Mapping.Name], index)

	item := ItemEvent{
		Type:        EventItem,
		Index:       i,
		To:          to,
		Subject:     content.Subject.Text,
		Attachments: len(files),
	}

	messageID, err := d.send(ctx, log, to, content, files, job.Format)
	item.Timestamp = d.now().UTC().Format(TimestampLayout)

	if err != nil {
		item.Status = StatusError
		item.Error = err.Error()
		log.WarnContext(ctx, "send failed", slog.Any("error", err))
		return item
	}

	item.Status = StatusSent
	item.MessageID = messageID
	log.DebugContext(ctx, "sent", slog.String("message_id", messageID))
	return item
}

func (d *Dispatcher) send(ctx context.Context, log *slog.Logger, to string, content Content, files []Attachment, format mailer.Format) (messageID string, err error) {
	// Covers attachment loaders as well as the transport.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", mailer.ErrSendFailed, p)
		}
	}()

	// The send outlives a client disconnect so the in-flight item can still be reported.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.SendTimeout)
	defer cancel()

	attachments, err := materialize(sendCtx, files, d.loader)
	if err != nil {
		return "", err
	}

	html, err := mailer.BodyHTML(content.Body.Text, format)
	if err != nil {
		log.WarnContext(ctx, "markdown conversion failed, sending body as is", slog.Any("error", err))
	}

	email := &mailer.Email{
		From:        d.cfg.From,
		To:          []string{to},
		Subject:     content.Subject.Text,
		HTML:        html,
		Text:        sanitizer.PlainText(html),
		Attachments: attachments,
	}

	return d.sender.Send(sendCtx, email)
}

func (d *Dispatcher) cancelled(ctx context.Context, log *slog.Logger, s Summary, err error) error {
	log.InfoContext(ctx, "dispatch cancelled",
		slog.Int("processed", s.Processed()),
		slog.Int("sent", s.Sent),
		slog.Int("failed", s.Failed),
		slog.Any("error", err),
	)
	return err
}

func (d *Dispatcher) streamClosed(ctx context.Context, log *slog.Logger, s Summary, err error) error {
	log.InfoContext(ctx, "progress stream closed",
		slog.Int("processed", s.Processed()),
		slog.Any("error", err),
	)
	if errors.Is(err, ErrStreamClosed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStreamClosed, err)
}
