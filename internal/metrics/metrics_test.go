package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveHTTP("GET", "/x", 200, time.Millisecond)
		c.RecordOperation("connect", "ok")
		c.ObserveTraversal("degree", time.Millisecond)
		c.SetGraphSize(3, 2)
	})
	assert.Nil(t, c.Registry())
}

func TestRecordOperation(t *testing.T) {
	c := NewCollector("test")

	c.RecordOperation("connect", "ok")
	c.RecordOperation("connect", "ok")
	c.RecordOperation("connect", "connection_exists")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Commands.WithLabelValues("connect", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("connect", "connection_exists")))
}

func TestSetGraphSize(t *testing.T) {
	c := NewCollector("test")

	c.SetGraphSize(4, 3)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.GraphUsers))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.GraphEdges))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("test")
	b := NewCollector("test")

	a.RecordOperation("register", "ok")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.Commands.WithLabelValues("register", "ok")))
}

func TestHandler(t *testing.T) {
	c := NewCollector("social")
	c.ObserveHTTP("GET", "/api/users/{userStrID}/friends", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "social_http_requests_total"))
	assert.True(t, strings.Contains(body, `route="/api/users/{userStrID}/friends"`))
}
