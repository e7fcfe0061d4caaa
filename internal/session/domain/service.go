package domain

import (
	"context"

	"github.com/smallbiznis/orderdesk/internal/backend"
)

// Backend is the part of the REST backend sessions depend on.
type Backend interface {
	Me(ctx context.Context, token, roleType string) ([]backend.Record, error)
	Update(ctx context.Context, token, resource, code string, payload any) (backend.Result, error)
	SignupAdmin(ctx context.Context, token string, payload any) (backend.Result, error)
}

// Reader is how every component other than the session service observes sessions.
type Reader interface {
	Current(ctx context.Context, clientID string) (Session, error)
	Token(ctx context.Context, clientID string) (string, error)
}

type Service interface {
	Reader
	Login(ctx context.Context, clientID string, req LoginRequest) (LoginResult, error)
	Restore(ctx context.Context, clientID string, req RestoreRequest) (Session, error)
	Logout(ctx context.Context, clientID string) error
	SignupAdmin(ctx context.Context, req SignupAdminRequest) (SignupResult, error)
	ProvisionAccount(ctx context.Context, req ProvisionRequest) (SignupResult, error)
}
