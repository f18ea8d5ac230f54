package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotConfigured means the source has no URL, or needs a key it doesn't have.
	ErrNotConfigured = errors.New("feed not configured")
	// ErrTimeout means the request did not complete within the fetch timeout.
	ErrTimeout = errors.New("feed request timed out")
	// ErrEmptyBody means the endpoint answered 2xx with nothing in it.
	ErrEmptyBody = errors.New("feed returned an empty body")
	// ErrTooLarge means the body exceeded the read limit.
	ErrTooLarge = errors.New("feed body too large")
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}

// NetworkError wraps transport failures other than timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "feed request failed: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a buffer that is not a valid GTFS-RT FeedMessage.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode feed: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// FailureKind is a coarse label for a failed poll, used in logs and metrics.
type FailureKind string

const (
	FailureConfig  FailureKind = "config"
	FailureTimeout FailureKind = "timeout"
	FailureStatus  FailureKind = "status"
	FailureNetwork FailureKind = "network"
	FailureEmpty   FailureKind = "empty"
	FailureSize    FailureKind = "too_large"
	FailureDecode  FailureKind = "decode"
	FailureUnknown FailureKind = "unknown"
)

// Classify maps an error from Fetch or Decode to a FailureKind.
func Classify(err error) FailureKind {
	var (
		statusErr *StatusError
		decodeErr *DecodeError
		netErr    *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return FailureConfig
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, ErrEmptyBody):
		return FailureEmpty
	case errors.Is(err, ErrTooLarge):
		return FailureSize
	case errors.As(err, &statusErr):
		return FailureStatus
	case errors.As(err, &decodeErr):
		return FailureDecode
	case errors.As(err, &netErr):
		return FailureNetwork
	}
	return FailureUnknown
}

// isTimeout reports whether a transport error was caused by a deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
