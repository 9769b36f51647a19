package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcast/internal"
	"github.com/dmitrymomot/mailcast/middlewares"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        []middlewares.CORSOption
		method      string
		origin      string
		wantOrigin  string
		wantStatus  int
		wantReached bool
	}{
		{name: "no origin", method: http.MethodPost, wantStatus: http.StatusOK, wantReached: true},
		{name: "wildcard", method: http.MethodPost, origin: "https://ops.example.com", wantOrigin: "*", wantStatus: http.StatusOK, wantReached: true},
		{
			name:        "listed origin is echoed",
			opts:        []middlewares.CORSOption{middlewares.WithAllowOrigins("https://ops.example.com", " ")},
			method:      http.MethodPost,
			origin:      "https://ops.example.com",
			wantOrigin:  "https://ops.example.com",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:        "unlisted origin gets no headers",
			opts:        []middlewares.CORSOption{middlewares.WithAllowOrigins("https://ops.example.com")},
			method:      http.MethodPost,
			origin:      "https://evil.example.com",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
		{
			name:       "preflight short-circuits",
			method:     http.MethodOptions,
			origin:     "https://ops.example.com",
			wantOrigin: "*",
			wantStatus: http.StatusNoContent,
		},
		{
			name:        "blank origin list keeps wildcard",
			opts:        []middlewares.CORSOption{middlewares.WithAllowOrigins("", "  ")},
			method:      http.MethodPost,
			origin:      "https://ops.example.com",
			wantOrigin:  "*",
			wantStatus:  http.StatusOK,
			wantReached: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/dispatch", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			reached := false
			handler := middlewares.CORS(tt.opts...)(func(c internal.Context) error {
				reached = true
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, handler(newTestContext(rec, req)))
			assert.Equal(t, tt.wantReached, reached)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_ExposesTrackingHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/dispatch", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()

	handler := middlewares.CORS(middlewares.WithExposeHeaders("X-Batch"))(func(c internal.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(newTestContext(rec, req)))

	assert.Equal(t, "X-Request-ID, X-Dispatch-ID, X-Batch", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, []string{"Origin"}, rec.Header().Values("Vary"))
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	t.Run("default max age", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/dispatch", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		handler := middlewares.CORS()(func(internal.Context) error {
			t.Fatal("preflight must not reach the handler")
			return nil
		})
		require.NoError(t, handler(newTestContext(rec, req)))

		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, []string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"}, rec.Header().Values("Vary"))
	})

	t.Run("zero max age omits header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/dispatch", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		rec := httptest.NewRecorder()

		handler := middlewares.CORS(middlewares.WithMaxAge(0))(func(internal.Context) error { return nil })
		require.NoError(t, handler(newTestContext(rec, req)))

		assert.Empty(t, rec.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("custom max age", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/dispatch", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		rec := httptest.NewRecorder()

		handler := middlewares.CORS(middlewares.WithMaxAge(time.Minute))(func(internal.Context) error { return nil })
		require.NoError(t, handler(newTestContext(rec, req)))

		assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))
	})
}
