package backend

import (
	"errors"
	"net/http"
)

var (
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")
	ErrRequestRejected     = errors.New("upstream_rejected")
	ErrNotFound            = errors.New("upstream_not_found")
	ErrUnauthorized        = errors.New("upstream_unauthorized")
)

// Error is a 4xx answer from the backend. Message carries the backend's
// "error" or "message" field when it sent one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrRequestRejected:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	default:
		return false
	}
}
