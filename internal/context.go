package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailcast/pkg/validator"
)

// ValidationErrors lists the rule violations found by BindJSON.
type ValidationErrors = validator.ValidationErrors

// ErrEmptyBody is returned by BindJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Context is the per-request handle passed to handlers and middleware.
// It is a context.Context cancelled when the client goes away, so it can be
// handed straight to the dispatcher.
type Context interface {
	context.Context

	Request() *http.Request
	// ResponseWriter is shared by every layer of the request and can Flush.
	ResponseWriter() *ResponseWriter
	// Written reports whether the status line has been sent.
	Written() bool

	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error

	// BindJSON decodes the body into v and runs its `validate` tags.
	// Decode failures are returned as error, rule violations as ValidationErrors.
	BindJSON(v any) (ValidationErrors, error)

	// Set stores a request-scoped value, visible to later layers and to log extractors.
	Set(key, value any)
	Get(key any) any

	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)
}

type requestContext struct {
	context.Context // replaced by Set

	req     *http.Request
	w       *ResponseWriter
	log     *slog.Logger
	maxBody int64
}

// newContext reuses w when an outer layer already wrapped it.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{Context: r.Context(), req: r, w: rw, log: app.logger, maxBody: app.maxBodyBytes}
}

func (c *requestContext) Request() *http.Request          { return c.req }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.w }
func (c *requestContext) Written() bool                   { return c.w.Written() }
func (c *requestContext) Header(name string) string       { return c.req.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string)    { c.w.Header().Set(name, value) }

func (c *requestContext) JSON(code int, v any) error {
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(code)
	return json.NewEncoder(c.w).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := io.WriteString(c.w, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.w.WriteHeader(code)
	return nil
}

func (c *requestContext) BindJSON(v any) (ValidationErrors, error) {
	if c.req.Body == nil || c.req.Body == http.NoBody {
		return nil, fmt.Errorf("bind json: %w", ErrEmptyBody)
	}

	if err := json.NewDecoder(http.MaxBytesReader(c.w, c.req.Body, c.maxBody)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyBody
		}
		return nil, fmt.Errorf("bind json: %w", err)
	}

	err := validator.Struct(v)
	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		return verrs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func (c *requestContext) Set(key, value any) {
	c.Context = context.WithValue(c.Context, key, value)
	c.req = c.req.WithContext(c.Context)
}

func (c *requestContext) Get(key any) any { return c.Value(key) }

func (c *requestContext) LogInfo(msg string, attrs ...any)  { c.log.InfoContext(c, msg, attrs...) }
func (c *requestContext) LogWarn(msg string, attrs ...any)  { c.log.WarnContext(c, msg, attrs...) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.log.ErrorContext(c, msg, attrs...) }
