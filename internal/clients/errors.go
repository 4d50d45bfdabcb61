package clients

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("client not configured")
	ErrMediaTooLarge = errors.New("media exceeds size limit")
	ErrEmptyMedia    = errors.New("media is empty")
	// ErrForbiddenMediaHost is returned when a media URL resolves to a loopback, private
	// or link-local address.
	ErrForbiddenMediaHost = errors.New("media host not allowed")
)

// UpstreamError is returned when a remote service answers with a non-2xx status.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Preview    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Preview)
}
