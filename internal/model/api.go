package model

import (
	"encoding/json"
	"time"
)

// Response bodies for the gateway's own endpoints.

type HealthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
}

type TestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UpstreamErrorResponse surfaces a failure reported by the inference service.
// Detail carries the upstream's raw error payload for caller diagnostics.
type UpstreamErrorResponse struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail,omitempty"`
}
