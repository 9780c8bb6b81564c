package model

import (
	"encoding/json"
	"time"
)

// UploadRequest is the transient, in-memory form of an inbound multipart
// upload. It exists for the lifetime of a single request and is never stored.
type UploadRequest struct {
	Filename    string `validate:"required"`
	ContentType string
	Size        int64  `validate:"gt=0"`
	Data        []byte `validate:"required,min=1"`

	// ContextJSON is an opaque JSON string owned by the upstream service.
	// It is forwarded verbatim when HasContext is true and never parsed here.
	ContextJSON string
	HasContext  bool
}

// AnalysisResult carries a successful upstream response back to the handler.
// Body is relayed byte-for-byte; the gateway does not reshape it.
type AnalysisResult struct {
	StatusCode int
	Body       json.RawMessage
	Size       int64
	Duration   time.Duration
	Timestamp  time.Time
}
