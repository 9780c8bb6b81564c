package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(routerOptions{upstreamURL: "http://127.0.0.1:0"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-gateway", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestTestEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(routerOptions{upstreamURL: "http://127.0.0.1:0"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestCORSPreflightAllowedOrigin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(routerOptions{
		upstreamURL:    "http://127.0.0.1:0",
		allowedOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightRejectedOrigin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(routerOptions{
		upstreamURL:    "http://127.0.0.1:0",
		allowedOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"),
		"a non-allow-listed origin must not be granted access")
}

func TestRequestsWithoutOriginPassThrough(t *testing.T) {
	t.Parallel()

	router := newTestRouter(routerOptions{
		upstreamURL:    "http://127.0.0.1:0",
		allowedOrigins: []string{"https://app.example.com"},
	})

	// Non-browser clients send no Origin header and are always served.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
