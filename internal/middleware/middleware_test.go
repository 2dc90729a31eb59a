package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/social-connections/internal/metrics"
	"github.com/sakif/social-connections/internal/middleware"
)

func newRouter(logger *slog.Logger, collector *metrics.Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(collector))

	r.Get("/api/users/{userStrID}/friends", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "userStrID") == "ghost" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("[]"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := newRouter(logger, nil)

	tests := []struct {
		path   string
		status int
		level  string
		route  string
	}{
		{"/api/users/alice/friends", http.StatusOK, "INFO", "/api/users/{userStrID}/friends"},
		{"/api/users/ghost/friends", http.StatusNotFound, "WARN", "/api/users/{userStrID}/friends"},
		{"/boom", http.StatusInternalServerError, "ERROR", "/boom"},
		{"/nowhere", http.StatusNotFound, "WARN", "unmatched"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()

			rr := serve(h, tt.path)
			require.Equal(t, tt.status, rr.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.path, entry["path"])
			assert.Equal(t, tt.route, entry["route"])
			assert.EqualValues(t, tt.status, entry["status"])
			assert.NotEmpty(t, entry["request_id"])
		})
	}
}

func TestLogger_CountsBytes(t *testing.T) {
	var buf bytes.Buffer
	h := newRouter(slog.New(slog.NewJSONHandler(&buf, nil)), nil)

	serve(h, "/api/users/alice/friends")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 2, entry["bytes"])
}

func TestMetrics(t *testing.T) {
	collector := metrics.NewCollector("test")
	h := newRouter(slog.New(slog.DiscardHandler), collector)

	serve(h, "/api/users/alice/friends")
	serve(h, "/api/users/bob/friends")
	serve(h, "/api/users/ghost/friends")
	serve(h, "/nowhere")

	const route = "/api/users/{userStrID}/friends"
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", route, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", route, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_NilCollector(t *testing.T) {
	h := newRouter(slog.New(slog.DiscardHandler), nil)
	assert.Equal(t, http.StatusOK, serve(h, "/api/users/alice/friends").Code)
}
