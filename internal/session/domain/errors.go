package domain

import "errors"

const MessageNotProvisioned = "account not provisioned for this role"

var (
	ErrInvalidTransition = errors.New("invalid_session_transition")
	ErrAuthentication    = errors.New("authentication_failed")
	ErrProfileNotFound   = errors.New("profile_not_found")
	ErrNoSession         = errors.New("no_session")
	ErrInvalidClient     = errors.New("invalid_client")
	ErrInvalidRoleType   = errors.New("invalid_role_type")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPassword   = errors.New("invalid_password")
	ErrInvalidUsername   = errors.New("invalid_username")
	ErrInvalidCode       = errors.New("invalid_code")
	ErrInvalidKind       = errors.New("invalid_account_kind")
	ErrRateLimited       = errors.New("too_many_attempts")
)
