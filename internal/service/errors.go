package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUpstreamTimeout = errors.New("upstream request timeout")
)

// UpstreamError is returned when the inference service answered, but with a
// failure status. The raw body is kept so the handler can surface it to the
// caller for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
