package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailcast"
	"github.com/dmitrymomot/mailcast/middlewares"
)

// ErrorResponse is the JSON body of every error rendered before a stream starts.
type ErrorResponse struct {
	Fields    map[string][]string `json:"fields,omitempty"`
	Error     string              `json:"error"`
	Code      string              `json:"code,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

// ErrorHandler renders handler errors as JSON.
// HTTPErrors keep their status and message. Anything else, panics included,
// becomes a 500 with a generic message.
func ErrorHandler(c mailcast.Context, err error) error {
	resp := ErrorResponse{RequestID: middlewares.GetRequestID(c)}
	status := http.StatusInternalServerError

	if he := mailcast.AsHTTPError(err); he != nil {
		status = he.Code
		resp.Error = he.Message
		resp.Code = he.ErrorCode
		resp.Fields = he.Fields
	} else {
		resp.Error = http.StatusText(http.StatusInternalServerError)
		resp.Code = "internal_error"
	}

	if status >= http.StatusInternalServerError {
		attrs := []any{slog.Int("status", status), slog.Any("error", err)}
		if pe, ok := middlewares.AsPanicError(err); ok {
			attrs = append(attrs, slog.Any("panic", pe.Value))
		}
		c.LogError("request failed", attrs...)
	}

	if rerr := c.JSON(status, resp); rerr != nil {
		c.LogError("failed to write error response", slog.Any("error", rerr))
		return rerr
	}
	return nil
}
