package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/social-connections/internal/config"
)

func testConfig(driver string) config.Config {
	cfg := config.Default()
	cfg.Store.Driver = driver
	cfg.Store.SQLitePath = ":memory:"
	cfg.Metrics.Namespace = "test"
	return cfg
}

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	srv, err := New(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(data)
}

// =========================================================================
// END TO END
// =========================================================================

func TestServer_EndToEnd(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ts := newTestServer(t, testConfig(driver))

			for _, u := range []string{"alice", "bob", "carol", "dave", "erin"} {
				status, body := call(t, ts, http.MethodPost, "/api/users",
					`{"user_str_id":"`+u+`","display_name":"`+strings.ToUpper(u[:1])+u[1:]+`"}`)
				require.Equal(t, http.StatusCreated, status, body)
			}

			for _, pair := range [][2]string{{"alice", "bob"}, {"carol", "bob"}, {"carol", "dave"}} {
				status, body := call(t, ts, http.MethodPost, "/api/connections",
					`{"user1_str_id":"`+pair[0]+`","user2_str_id":"`+pair[1]+`"}`)
				require.Equal(t, http.StatusCreated, status, body)
			}

			status, body := call(t, ts, http.MethodGet, "/api/users/bob/friends", "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `[
				{"user_str_id":"alice","display_name":"Alice"},
				{"user_str_id":"carol","display_name":"Carol"}
			]`, body)

			status, body = call(t, ts, http.MethodGet, "/api/users/alice/friends-of-friends", "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `[{"user_str_id":"carol","display_name":"Carol"}]`, body)

			status, body = call(t, ts, http.MethodGet, "/api/connections/degree?from_user_str_id=alice&to_user_str_id=dave", "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `{"degree":3}`, body)

			status, body = call(t, ts, http.MethodGet, "/api/connections/degree?from_user_str_id=alice&to_user_str_id=erin", "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `{"degree":-1,"message":"not_connected"}`, body)

			status, _ = call(t, ts, http.MethodDelete, "/api/connections", `{"user1_str_id":"bob","user2_str_id":"carol"}`)
			assert.Equal(t, http.StatusOK, status)

			status, body = call(t, ts, http.MethodGet, "/api/connections/degree?from_user_str_id=alice&to_user_str_id=dave", "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `{"degree":-1,"message":"not_connected"}`, body)

			status, body = call(t, ts, http.MethodGet, "/health", "")
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, `{"status":"ok"}`, body)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, testConfig(config.DriverMemory))

	call(t, ts, http.MethodPost, "/api/users", `{"user_str_id":"alice","display_name":"Alice"}`)
	call(t, ts, http.MethodPost, "/api/users", `{"user_str_id":"alice","display_name":"Alice"}`)

	status, body := call(t, ts, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `test_http_requests_total{method="POST",route="/api/users",status="201"} 1`)
	assert.Contains(t, body, `test_http_requests_total{method="POST",route="/api/users",status="409"} 1`)
	assert.Contains(t, body, `test_graph_operations_total{operation="register_user",outcome="user_exists"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Metrics.Enabled = false
	ts := newTestServer(t, cfg)

	status, _ := call(t, ts, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_CORSPreflight(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
	ts := newTestServer(t, cfg)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/connections", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "https://app.example.com", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_RequestIDHeaderIsLogged(t *testing.T) {
	var buf bytes.Buffer
	srv, err := New(context.Background(), testConfig(config.DriverMemory), slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)
	defer srv.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	srv.Handler().ServeHTTP(rr, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
}

// =========================================================================
// STORE SELECTION
// =========================================================================

func TestNew_SQLiteFileCreatesDirectory(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "nested", "dir", "social.db")

	srv, err := New(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	_, err = os.Stat(cfg.Store.SQLitePath)
	assert.NoError(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig("redis"), slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "unknown store driver")
}
