package service_test

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensa-net/lensa-be/internal/model"
	"github.com/lensa-net/lensa-be/internal/service"
)

func newTestService(upstreamURL string, timeout time.Duration) *service.AnalysisService {
	return service.NewAnalysisService(service.AnalysisConfig{
		BaseURL:          upstreamURL,
		Token:            "test-token",
		Timeout:          timeout,
		MaxResponseBytes: 10 << 20,
	}, log.New(io.Discard, "", 0))
}

func testUpload() *model.UploadRequest {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03}
	return &model.UploadRequest{
		Filename:    "leaf.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Data:        data,
	}
}

func TestAnalyzeForwardsMultipartVerbatim(t *testing.T) {
	t.Parallel()

	upload := testUpload()
	upload.ContextJSON = `{"crop":"tomato"}`
	upload.HasContext = true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, upload.Data, got)
		assert.Equal(t, "leaf.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		assert.Equal(t, `{"crop":"tomato"}`, r.FormValue("context_json"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	result, err := newTestService(server.URL, 2*time.Second).Analyze(context.Background(), upload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, `{"result":"ok"}`, string(result.Body))
	assert.Equal(t, int64(len(`{"result":"ok"}`)), result.Size)
}

func TestAnalyzeOmitsContextWhenAbsent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		_, hasContext := r.MultipartForm.Value["context_json"]
		assert.False(t, hasContext, "context_json must be absent when not provided")

		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL, 2*time.Second).Analyze(context.Background(), testUpload())
	require.NoError(t, err)
}

func TestAnalyzeSurfacesUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"bad image"}`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL, 2*time.Second).Analyze(context.Background(), testUpload())
	require.Error(t, err)

	var upstreamErr *service.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusUnprocessableEntity, upstreamErr.StatusCode)
	assert.Equal(t, `{"detail":"bad image"}`, string(upstreamErr.Body))
}

func TestAnalyzeTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestService(server.URL, 50*time.Millisecond).Analyze(context.Background(), testUpload())
	elapsed := time.Since(start)

	require.ErrorIs(t, err, service.ErrUpstreamTimeout)
	assert.Less(t, elapsed, time.Second, "timeout must not wait for the upstream to finish")
}

func TestAnalyzeTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newTestService(server.URL, 2*time.Second).Analyze(context.Background(), testUpload())
	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrUpstreamTimeout))
	var upstreamErr *service.UpstreamError
	assert.False(t, errors.As(err, &upstreamErr))
}

func TestAnalyzeRejectsEmptyUpload(t *testing.T) {
	t.Parallel()

	svc := newTestService("http://127.0.0.1:0", 2*time.Second)

	_, err := svc.Analyze(context.Background(), nil)
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Analyze(context.Background(), &model.UploadRequest{Filename: "empty.png"})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}
