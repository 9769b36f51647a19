package middlewares_test

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/mailcast/internal"
	"github.com/dmitrymomot/mailcast/pkg/validator"
)

type logEntry struct {
	msg   string
	attrs []any
	level slog.Level
}

// testContext is an internal.Context that records log calls.
type testContext struct {
	context.Context

	response *internal.ResponseWriter
	request  *http.Request
	logs     []logEntry
	mu       sync.Mutex
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{Context: r.Context(), response: internal.NewResponseWriter(w), request: r}
}

func (c *testContext) Request() *http.Request                   { return c.request }
func (c *testContext) ResponseWriter() *internal.ResponseWriter { return c.response }
func (c *testContext) Written() bool                            { return c.response.Written() }
func (c *testContext) Header(name string) string                { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string)             { c.response.Header().Set(name, value) }
func (c *testContext) JSON(code int, _ any) error               { return c.NoContent(code) }
func (c *testContext) NoContent(code int) error                 { c.response.WriteHeader(code); return nil }

func (c *testContext) String(code int, s string) error {
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) BindJSON(any) (validator.ValidationErrors, error) { return nil, nil }

func (c *testContext) Set(key, value any) {
	c.Context = context.WithValue(c.Context, key, value)
	c.request = c.request.WithContext(c.Context)
}

func (c *testContext) Get(key any) any { return c.Value(key) }

func (c *testContext) log(level slog.Level, msg string, attrs []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, logEntry{level: level, msg: msg, attrs: attrs})
}

func (c *testContext) LogInfo(msg string, attrs ...any)  { c.log(slog.LevelInfo, msg, attrs) }
func (c *testContext) LogWarn(msg string, attrs ...any)  { c.log(slog.LevelWarn, msg, attrs) }
func (c *testContext) LogError(msg string, attrs ...any) { c.log(slog.LevelError, msg, attrs) }

func (c *testContext) entries() []logEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]logEntry(nil), c.logs...)
}

// attrValue finds a slog.Attr by key among logged attributes.
func attrValue(attrs []any, key string) (slog.Value, bool) {
	for _, a := range attrs {
		if attr, ok := a.(slog.Attr); ok && attr.Key == key {
			return attr.Value, true
		}
	}
	return slog.Value{}, false
}
