package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcast"
	"github.com/dmitrymomot/mailcast/pkg/dispatch"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/mailer"
)

// DispatchIDHeader carries the job id of a dispatch stream.
const DispatchIDHeader = "X-Dispatch-ID"

// dispatchRequest is the JSON body of POST /api/dispatch.
type dispatchRequest struct {
	ExtraContext      map[string]any                   `json:"extraContext"`
	AttachmentsByName map[string][]dispatch.Attachment `json:"attachmentsByName" validate:"omitempty,dive,dive"`
	DelayMs           *float64                         `json:"delayMs" validate:"omitempty,lte=86400000"`
	JitterMs          *float64                         `json:"jitterMs" validate:"omitempty,lte=86400000"`
	Mapping           dispatch.Mapping                 `json:"mapping"`
	Template          string                           `json:"template" validate:"required"`
	SubjectTemplate   string                           `json:"subjectTemplate"`
	Format            string                           `json:"format" validate:"omitempty,oneof=html markdown"`
	Rows              []dispatch.Row                   `json:"rows" validate:"required"`
}

func (r *dispatchRequest) job() dispatch.Job {
	return dispatch.Job{
		Rows:            r.Rows,
		Mapping:         r.Mapping,
		Template:        r.Template,
		SubjectTemplate: r.SubjectTemplate,
		ExtraContext:    r.ExtraContext,
		Attachments:     dispatch.AttachmentIndex(r.AttachmentsByName),
		DelayMs:         r.DelayMs,
		JitterMs:        r.JitterMs,
		Format:          mailer.Format(r.Format),
	}
}

// Dispatch serves the batch dispatch endpoint.
type Dispatch struct {
	dispatcher *dispatch.Dispatcher
	newID      func() string
}

// DispatchOption configures the Dispatch handler.
type DispatchOption func(*Dispatch)

// WithDispatchIDGenerator replaces the job id generator. Defaults to random UUIDs.
func WithDispatchIDGenerator(fn func() string) DispatchOption {
	return func(h *Dispatch) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// NewDispatch creates the dispatch handler.
func NewDispatch(d *dispatch.Dispatcher, opts ...DispatchOption) *Dispatch {
	h := &Dispatch{
		dispatcher: d,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements mailcast.Handler.
func (h *Dispatch) Routes(r mailcast.Router) {
	r.POST("/api/dispatch", h.dispatch)
}

// dispatch validates the request, then streams NDJSON progress until the batch ends
// or the client disconnects. Errors after the first byte are logged, not returned.
func (h *Dispatch) dispatch(c mailcast.Context) error {
	if h.dispatcher == nil || !h.dispatcher.Ready() {
		return mailcast.ErrInternal("mail sender is not configured",
			mailcast.WithErrorCode("sender_not_configured"),
			mailcast.WithError(mailer.ErrSenderNotConfigured),
		)
	}

	var req dispatchRequest
	verrs, err := c.BindJSON(&req)
	if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
		return mailcast.ErrRequestTooLarge("request body too large",
			mailcast.WithErrorCode("body_too_large"),
			mailcast.WithError(err),
		)
	}
	if err != nil {
		return mailcast.ErrBadRequest("invalid JSON body",
			mailcast.WithErrorCode("invalid_json"),
			mailcast.WithError(err),
		)
	}
	if len(verrs) > 0 {
		return mailcast.ErrBadRequest("invalid request",
			mailcast.WithErrorCode("validation_failed"),
			mailcast.WithFields(verrs.Fields()),
			mailcast.WithError(verrs),
		)
	}

	dispatchID := h.newID()
	c.Set(dispatchIDKey{}, dispatchID)
	c.SetHeader(DispatchIDHeader, dispatchID)

	w := c.ResponseWriter()
	dispatch.SetStreamHeaders(w.Header())
	w.WriteHeader(http.StatusOK)
	w.Flush()

	summary, err := h.dispatcher.Run(c, req.job(), dispatch.NewStreamEncoder(w))
	if err != nil {
		c.LogWarn("dispatch stream ended early",
			slog.Any("error", err),
			slog.Int("processed", summary.Processed()),
			slog.Int("total", summary.Total),
		)
		return nil
	}

	c.LogInfo("dispatch stream completed",
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed),
	)
	return nil
}

type dispatchIDKey struct{}

// DispatchIDExtractor adds "dispatch_id" to log entries written during a dispatch.
func DispatchIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(dispatchIDKey{}).(string); ok && v != "" {
			return slog.String("dispatch_id", v), true
		}
		return slog.Attr{}, false
	}
}
