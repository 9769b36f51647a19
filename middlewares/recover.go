package middlewares

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/dmitrymomot/mailcast/internal"
)

// DefaultStackSize caps the captured stack trace in bytes.
const DefaultStackSize = 4096

// PanicError is returned by Recover in place of a panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is off
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError reports whether err wraps a recovered panic.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

// RecoverOption configures the Recover middleware.
type RecoverOption func(*int)

// WithRecoverStackSize sets the captured stack size. Zero or less disables capture.
func WithRecoverStackSize(size int) RecoverOption {
	return func(n *int) { *n = size }
}

// Recover turns handler panics into a *PanicError for the error handler.
// A panic after the progress stream started cannot become an error response,
// so the log line records response_started.
func Recover(opts ...RecoverOption) internal.Middleware {
	stackSize := DefaultStackSize
	for _, opt := range opts {
		opt(&stackSize)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r}
				attrs := []any{
					"panic", r,
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"response_started", c.Written(),
				}
				if stackSize > 0 {
					buf := make([]byte, stackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)
				err = pe
			}()

			return next(c)
		}
	}
}
