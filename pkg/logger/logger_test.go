package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcast/pkg/logger"
)

type ctxKey struct{}

func dispatchIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return slog.String("dispatch_id", id), true
	}
	return slog.Attr{}, false
}

func TestNewFromConfig_JSONWithExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewFromConfig(&buf, logger.Config{Level: "debug"}, dispatchIDExtractor, nil)

	ctx := context.WithValue(context.Background(), ctxKey{}, "job-1")
	log.With(slog.Int("index", 2)).DebugContext(ctx, "sent")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "sent", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "job-1", rec["dispatch_id"])
	assert.EqualValues(t, 2, rec["index"])
}

func TestNewFromConfig_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewFromConfig(&buf, logger.Config{Level: "warn"})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewFromConfig_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewFromConfig(&buf, logger.Config{Format: "TEXT"})
	log.Info("hello", slog.String("to", "a@x.com"))

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=hello"), out)
	assert.Contains(t, out, "to=a@x.com")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	log.Error("discarded")
}
