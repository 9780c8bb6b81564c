package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/lensa-net/lensa-be/internal/model"
)

const (
	analyzePath = "/analyze"

	fileFieldName    = "image"
	contextFieldName = "context_json"
)

// AnalysisConfig holds the static upstream settings the service needs.
type AnalysisConfig struct {
	BaseURL          string
	Token            string
	Timeout          time.Duration
	MaxResponseBytes int64
}

// AnalysisService forwards uploads to the inference service. It performs no
// retries and keeps no state: one inbound request maps to exactly one
// outbound call.
type AnalysisService struct {
	baseURL             string
	token               string
	timeout             time.Duration
	maxResponseBodySize int64
	httpClient          *http.Client
	logger              *log.Logger
}

func NewAnalysisService(cfg AnalysisConfig, logger *log.Logger) *AnalysisService {
	// Create a custom transport with optimized settings for a single
	// upstream host.
	transport := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &AnalysisService{
		baseURL:             strings.TrimRight(cfg.BaseURL, "/"),
		token:               cfg.Token,
		timeout:             cfg.Timeout,
		maxResponseBodySize: cfg.MaxResponseBytes,
		httpClient:          &http.Client{Transport: transport},
		logger:              logger,
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildMultipartBody rebuilds the outbound multipart payload from the upload.
// The file part is created manually because CreateFormFile would force
// application/octet-stream; the client's declared content type must survive
// verbatim.
func buildMultipartBody(upload *model.UploadRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			fileFieldName, quoteEscaper.Replace(upload.Filename)))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	partHeader.Set("Content-Type", contentType)

	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	if upload.HasContext {
		if err := writer.WriteField(contextFieldName, upload.ContextJSON); err != nil {
			return nil, "", fmt.Errorf("write context field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// Analyze sends the upload to the inference service and returns its response.
// Failures are classified for the handler: ErrInvalidInput for a missing
// file, ErrUpstreamTimeout when the timeout budget is exceeded, *UpstreamError
// when the upstream reported a failure status, and a plain wrapped error for
// any other transport-level problem.
func (s *AnalysisService) Analyze(ctx context.Context, upload *model.UploadRequest) (*model.AnalysisResult, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: image file is required", ErrInvalidInput)
	}

	startTime := time.Now()

	body, contentType, err := buildMultipartBody(upload)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	targetURL := s.baseURL + analyzePath
	httpRequest, err := http.NewRequestWithContext(reqCtx, http.MethodPost, targetURL, body)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", contentType)
	httpRequest.Header.Set("Authorization", "Bearer "+s.token)

	s.logger.Printf("Forwarding %q (%d bytes) to %s", upload.Filename, upload.Size, targetURL)

	httpResponse, err := s.httpClient.Do(httpRequest)
	duration := time.Since(startTime)
	if err != nil {
		// The deadline from WithTimeout surfaces through the wrapped
		// url.Error chain.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v", ErrUpstreamTimeout, duration.Round(time.Millisecond))
		}
		return nil, fmt.Errorf("failed to execute request to inference service: %w", err)
	}
	defer httpResponse.Body.Close()

	limitedReader := &io.LimitedReader{R: httpResponse.Body, N: s.maxResponseBodySize}
	bodyBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w while reading response body", ErrUpstreamTimeout)
		}
		return nil, fmt.Errorf("read upstream response body: %w", err)
	}

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{
			StatusCode: httpResponse.StatusCode,
			Body:       bodyBytes,
		}
	}

	return &model.AnalysisResult{
		StatusCode: httpResponse.StatusCode,
		Body:       bodyBytes,
		Size:       int64(len(bodyBytes)),
		Duration:   duration,
		Timestamp:  startTime,
	}, nil
}
