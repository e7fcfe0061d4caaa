package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/orderdesk/internal/backend"
)

var (
	ErrInvalidKind = errors.New("invalid_kind")
	ErrInvalidCode = errors.New("invalid_code")
	ErrMissingName = errors.New("missing_required_field")
	ErrNotFound    = errors.New("not_found")
)

// ValidationError is a required field missing on a master-data form. It is
// raised before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrMissingName }

// Backend is the part of the REST backend master data depends on.
type Backend interface {
	List(ctx context.Context, token, resource string) ([]backend.Record, error)
	Get(ctx context.Context, token, resource, code string) ([]backend.Record, error)
	Create(ctx context.Context, token, resource string, payload any) (backend.Result, error)
	Update(ctx context.Context, token, resource, code string, payload any) (backend.Result, error)
}

type Service interface {
	List(ctx context.Context, clientID string, kind Kind) ([]Entry, error)
	Get(ctx context.Context, clientID string, kind Kind, code string) (Entry, error)
	Create(ctx context.Context, clientID string, kind Kind, fields map[string]any) (backend.Result, error)
	Update(ctx context.Context, clientID string, kind Kind, code string, fields map[string]any) (backend.Result, error)
}

// Validate checks the kind's required field.
func Validate(kind Kind, fields map[string]any) error {
	def, ok := kinds[kind]
	if !ok {
		return ErrInvalidKind
	}
	if v, _ := fields[def.requiredField].(string); strings.TrimSpace(v) != "" {
		return nil
	}
	return &ValidationError{Field: def.requiredField, Message: def.requiredLabel + " is required."}
}
