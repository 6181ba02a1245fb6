package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerGET(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHandlerHEAD(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Zero(t, rec.Body.Len())
}

func TestHealthHandler_FailingCheck(t *testing.T) {
	checks := []HealthCheck{
		{Name: "redis", Check: func(context.Context) error { return nil }},
		{Name: "db", Check: func(context.Context) error { return errors.New("connection refused") }},
		{Name: "skipped"},
	}
	rec := httptest.NewRecorder()
	HealthHandler(checks...)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, map[string]string{"db": "connection refused"}, body.Checks)
}

func TestHealthHandler_HEADFailing(t *testing.T) {
	check := HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("down") }}
	rec := httptest.NewRecorder()
	HealthHandler(check)(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
