package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lensa-net/lensa-be/internal/model"
	"github.com/lensa-net/lensa-be/internal/service"
)

// respondWithError adalah helper untuk mengirim respons error dalam format JSON.
// Setiap error body minimal punya field "error".
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJson(w, code, map[string]string{"error": message})
}

// respondWithJson adalah helper serbaguna untuk mengirim respons dalam format JSON.
// Fungsi ini menangani marshaling, setting header, dan penulisan respons.
func respondWithJson(w http.ResponseWriter, code int, payload interface{}) {
	dat, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal JSON response: %v", payload)
		// Avoid recursion - write error directly
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(dat)
}

// respondWithUpstreamError relays a failure reported by the inference
// service: the gateway's status mirrors the upstream's, and the raw upstream
// body rides along under "detail" for diagnostics.
func respondWithUpstreamError(w http.ResponseWriter, upstreamErr *service.UpstreamError) {
	detail := json.RawMessage(upstreamErr.Body)
	if !json.Valid(upstreamErr.Body) {
		// Non-JSON upstream bodies are quoted so the envelope stays valid.
		quoted, err := json.Marshal(string(upstreamErr.Body))
		if err != nil {
			quoted = []byte(`""`)
		}
		detail = quoted
	}

	respondWithJson(w, upstreamErr.StatusCode, model.UpstreamErrorResponse{
		Error:  "analysis failed",
		Detail: detail,
	})
}
