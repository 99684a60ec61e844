package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/v1/teams", 200, 20*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/teams/{id}", 404, 5*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/users/login", 401, 5*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/users/login", 200, 5*time.Millisecond)
	m.IncAuthFailure("login")
	m.IncAuthSuccess("login")
	m.IncRegistration("player")
	m.IncRegistration("player")
	m.IncRegistration("coach")
	m.IncRateLimitRejection("login")
	m.IncAuditEvent()
	m.SetAuditBufferSize(3)
	m.ObserveAuditFlush(time.Millisecond, nil)
	m.ObserveAuditFlush(time.Millisecond, errors.New("db down"))
	m.RegisterDBPoolCollector(func() (int32, int32, int32) { return 4, 3, 1 })

	s, err := m.Summarize()
	require.NoError(t, err)

	assert.Equal(t, 4.0, s.HTTP.TotalRequests)
	assert.Equal(t, 0.5, s.HTTP.ErrorRate)
	assert.Greater(t, s.HTTP.P95Latency, 0.0)
	assert.Equal(t, 1.0, s.Auth.Failures)
	assert.Equal(t, 1.0, s.Auth.Successes)
	assert.Equal(t, map[string]int{"player": 2, "coach": 1}, s.Registrations)
	assert.Equal(t, 1.0, s.RateLimit.Rejections)
	assert.Equal(t, 3.0, s.Audit.BufferSize)
	assert.Equal(t, 2.0, s.Audit.TotalFlushes)
	assert.Equal(t, 1.0, s.Audit.FlushErrors)
	assert.Equal(t, 1.0, s.Audit.Events)
	assert.Equal(t, 4.0, s.DB.TotalConns)
	assert.Equal(t, 1.0, s.DB.AcquiredConns)
	assert.Greater(t, s.Server.StartTime, 0.0)
}

func TestHandlerServesJSON(t *testing.T) {
	m := New()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "http")
	assert.Contains(t, body, "audit")
}

func TestPrometheusHandler(t *testing.T) {
	m := New()
	m.IncRegistration("admin")

	rec := httptest.NewRecorder()
	m.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `teamtrack_registrations_total{role="admin"} 1`))
}

func TestHistogramPercentileEmpty(t *testing.T) {
	assert.Equal(t, 0.0, histogramPercentile(nil, 0.5))
	assert.Equal(t, 0.0, computeErrorRate(nil))
}
