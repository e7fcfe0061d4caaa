package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidClient = errors.New("invalid_client")
	ErrInvalidKey    = errors.New("invalid_key")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrLockTimeout   = errors.New("client_state_locked")
)

// Store is a per-client string key/value store.
type Store interface {
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID string, keys ...string) error
}

// Locker serializes writers of one client's state.
type Locker interface {
	Lock(ctx context.Context, clientID string) (unlock func(), err error)
}

// CredentialService manages the per-role login autofill history.
type CredentialService interface {
	History(ctx context.Context, clientID, role string) ([]Credential, error)
	Save(ctx context.Context, clientID, role, email, username string) ([]Credential, error)
	Remove(ctx context.Context, clientID, role, email string) ([]Credential, error)
	Clear(ctx context.Context, clientID, role string) error
}
