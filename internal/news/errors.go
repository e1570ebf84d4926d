package news

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FailureClass partitions fetch failures for the retry policy.
type FailureClass string

// Failure classes. Transient failures are retried up to the backoff
// ceiling; permanent and thin-content failures go straight to the fallback
// record.
const (
	FailureTransient   FailureClass = "transient"
	FailurePermanent   FailureClass = "permanent"
	FailureThinContent FailureClass = "thin_content"
)

// FetchError wraps one failed fetch attempt with its class.
type FetchError struct {
	Class      FailureClass
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch failed (%s, status %d): %v", e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s): %v", e.Class, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrThinContent marks a page that parsed but yielded too little text.
var ErrThinContent = errors.New("extracted text below minimum length")

// ClassifyStatus maps an HTTP status code to a failure class. 403 and 404
// are permanent: the page will not appear on retry. Everything else non-2xx
// is treated as transient.
func ClassifyStatus(status int) FailureClass {
	switch status {
	case http.StatusForbidden, http.StatusNotFound:
		return FailurePermanent
	default:
		return FailureTransient
	}
}

// ClassifyError maps a transport-level error to a failure class. Context
// cancellation and deadline expiry count as transient; the retry loop stops
// on its own when the context is done.
func ClassifyError(err error) FailureClass {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Class
	}
	if errors.Is(err, ErrThinContent) {
		return FailureThinContent
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTransient
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureTransient
	}
	return FailureTransient
}
