package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sentry down") }

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, warn bytes.Buffer
	h := fanout{
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	log := slog.New(h).With(slog.String("component", "dispatch"))

	log.Info("dispatch started")
	log.Warn("send failed")

	assert.Contains(t, info.String(), "dispatch started")
	assert.Contains(t, info.String(), "send failed")
	assert.NotContains(t, warn.String(), "dispatch started")
	assert.Contains(t, warn.String(), `"component":"dispatch"`)
}

func TestFanout_KeepsWritingAfterFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := fanout{
		failingHandler{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&buf, nil),
	}

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelError, "boom", 0))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "boom")
}

func TestWithExtractors_NoExtractorsReturnsHandler(t *testing.T) {
	t.Parallel()

	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	assert.Same(t, base, WithExtractors(base, nil, nil))
}

func TestSentryLevels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []slog.Level{slog.LevelWarn, slog.LevelError}, sentryLevels(slog.LevelWarn))
	assert.Equal(t, []slog.Level{slog.LevelError}, sentryLevels(slog.LevelError))
	assert.Len(t, sentryLevels(slog.LevelDebug), 4)
}
