package bankapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Closed set of upstream failure kinds. All HTTP status classification happens
// here; callers match with errors.Is and never see raw status codes.
var (
	// ErrInvalidRequest means the upstream rejected the request as malformed.
	ErrInvalidRequest = errors.New("bank api: invalid request")

	// ErrInvalidToken means the upstream rejected the bearer token.
	ErrInvalidToken = errors.New("bank api: token rejected")

	// ErrForbidden means the token is valid but not allowed this operation.
	ErrForbidden = errors.New("bank api: forbidden")

	// ErrRateLimited means the per-token request budget is exhausted; the
	// caller must back off before retrying.
	ErrRateLimited = errors.New("bank api: rate limited")

	// ErrUnavailable means a transient 5xx upstream failure.
	ErrUnavailable = errors.New("bank api: upstream unavailable")

	// ErrUpstream covers unclassified upstream failures.
	ErrUpstream = errors.New("bank api: upstream error")
)

func classifyStatus(status int, description string) error {
	var kind error
	switch {
	case status == http.StatusBadRequest:
		kind = ErrInvalidRequest
	case status == http.StatusUnauthorized:
		kind = ErrInvalidToken
	case status == http.StatusForbidden:
		kind = ErrForbidden
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status >= 500:
		kind = ErrUnavailable
	default:
		kind = ErrUpstream
	}

	if description == "" {
		return fmt.Errorf("%w (status %d)", kind, status)
	}
	return fmt.Errorf("%w (status %d): %s", kind, status, description)
}
