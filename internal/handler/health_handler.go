package handler

import (
	"net/http"
	"time"

	"github.com/lensa-net/lensa-be/internal/model"
)

type HealthHandler struct {
	serviceName string
	version     string
	environment string
}

func NewHealthHandler(serviceName, version, environment string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		environment: environment,
	}
}

// Check reports process liveness. The gateway holds no state and no
// connections of its own, so there is nothing further to probe.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondWithJson(w, http.StatusOK, model.HealthResponse{
		Status:      "ok",
		Service:     h.serviceName,
		Version:     h.version,
		Environment: h.environment,
		Timestamp:   time.Now().UTC(),
	})
}

// Test memastikan gateway siap menerima request dari frontend.
func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	respondWithJson(w, http.StatusOK, model.TestResponse{
		Status:  "ok",
		Message: "Gateway is up and reachable",
	})
}
