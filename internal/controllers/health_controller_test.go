package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthBody(t *testing.T, hc *HealthController) map[string]interface{} {
	t.Helper()
	rr := httptest.NewRecorder()
	hc.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealth_StartingBeforeFirstCycle(t *testing.T) {
	resp := healthBody(t, NewHealthController(&stubSource{}))

	assert.Equal(t, "starting", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.NotContains(t, resp, "last_cycle_id")
}

func TestHealth_OkAfterCycle(t *testing.T) {
	resp := healthBody(t, NewHealthController(&stubSource{summary: finishedSummary(), ok: true}))

	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1789", resp["last_cycle_id"])
	assert.Equal(t, "2025-05-01T12:00:00Z", resp["last_cycle_at"])
	assert.NotContains(t, resp, "last_error")
}

func TestHealth_DegradedAfterFailedCycle(t *testing.T) {
	summary := finishedSummary()
	summary.Err = errors.New("session: login failed")
	resp := healthBody(t, NewHealthController(&stubSource{summary: summary, ok: true}))

	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "session: login failed", resp["last_error"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	hc := NewHealthController(&stubSource{})

	rr := httptest.NewRecorder()
	hc.Health(rr, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero", 0, "0h0m0s"},
		{"one minute", 60 * time.Second, "0h1m0s"},
		{"one hour", time.Hour, "1h0m0s"},
		{"mixed", time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
