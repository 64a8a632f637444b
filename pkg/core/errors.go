package core

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes the pipeline distinguishes.
//
// Timeout, NetworkUnavailable and RateLimited are transient: the search
// client retries them locally before they ever reach the coordinator.
// Everything else propagates immediately. Cancelled is internal; the
// coordinator silently drops cancelled results and never publishes them.
var (
	ErrNetworkUnavailable       = errors.New("network unavailable")
	ErrTimeout                  = errors.New("request timed out")
	ErrRateLimited              = errors.New("rate limited by upstream")
	ErrInvalidCredentials       = errors.New("invalid upstream credentials")
	ErrDecode                   = errors.New("malformed upstream response")
	ErrLocationPermissionDenied = errors.New("location permission denied")
	ErrCancelled                = errors.New("search cancelled")
)

// UpstreamError carries a non-OK status returned in an upstream payload,
// other than the rate-limit status (which maps to ErrRateLimited instead).
// It is never retried.
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %s", e.Code)
	}
	return fmt.Sprintf("upstream status %s: %s", e.Code, e.Message)
}

// IsTransient reports whether err represents a failure worth retrying:
// a timeout, a connectivity loss, or an upstream rate limit.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrNetworkUnavailable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsCancelled reports whether err is a cancellation, either our own sentinel
// or a context cancellation bubbling up from a superseded request.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
