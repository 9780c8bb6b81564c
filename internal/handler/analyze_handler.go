package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/lensa-net/lensa-be/internal/model"
	"github.com/lensa-net/lensa-be/internal/service"
)

// AnalyzeService adalah interface yang mendefinisikan kontrak untuk service analisis.
// Handler bergantung pada interface ini, bukan pada implementasi konkretnya.
type AnalyzeService interface {
	Analyze(ctx context.Context, upload *model.UploadRequest) (*model.AnalysisResult, error)
}

// File parts beyond this stay in memory; larger ones spill to temp files.
const multipartMemoryLimit = 32 << 20

type AnalyzeHandler struct {
	service        AnalyzeService
	maxUploadBytes int64
	logger         *log.Logger
}

func NewAnalyzeHandler(s AnalyzeService, maxUploadBytes int64, l *log.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service:        s,
		maxUploadBytes: maxUploadBytes,
		logger:         l,
	}
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Invalid request method")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		if isBodyTooLarge(err) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Uploaded file exceeds the maximum allowed size")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}()

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Field 'image' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Printf("ERROR: failed to read uploaded file: %v", err)
		respondWithError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	upload := &model.UploadRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}
	if values, ok := r.MultipartForm.Value["context_json"]; ok && len(values) > 0 {
		// Opaque pass-through; the upstream owns this schema.
		upload.ContextJSON = values[0]
		upload.HasContext = true
	}

	if err := validate.Struct(upload); err != nil {
		respondWithError(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	h.logger.Printf("Received upload %q (%d bytes, %s)", upload.Filename, upload.Size, upload.ContentType)

	result, err := h.service.Analyze(r.Context(), upload)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	// Byte-for-byte pass-through of the upstream's JSON body.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.Body)
}

func (h *AnalyzeHandler) respondServiceError(w http.ResponseWriter, err error) {
	h.logger.Printf("ERROR: %v", err)

	var upstreamErr *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUpstreamTimeout):
		respondWithError(w, http.StatusGatewayTimeout, "Analysis request timed out")
	case errors.As(err, &upstreamErr):
		respondWithUpstreamError(w, upstreamErr)
	default:
		// Transport-level failure (DNS, connection refused, TLS, ...).
		respondWithError(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// isBodyTooLarge reports whether err came from the MaxBytesReader cap. The
// multipart reader does not always preserve the error type, so the message is
// checked as a fallback.
func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
