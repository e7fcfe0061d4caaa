package identity

import (
	"errors"
	"strings"
)

var (
	ErrRejected      = errors.New("identity_rejected")
	ErrUnavailable   = errors.New("identity_unavailable")
	ErrNotConfigured = errors.New("identity_not_configured")
	ErrInvalidToken  = errors.New("invalid_identity_token")
)

// Error is a request the identity provider answered with a failure code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return target == ErrRejected }

var providerMessages = map[string]string{
	"INVALID_PASSWORD":            "The password is invalid.",
	"EMAIL_NOT_FOUND":             "There is no account for this email.",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password.",
	"INVALID_EMAIL":               "The email address is badly formatted.",
	"USER_DISABLED":               "This account has been disabled.",
	"EMAIL_EXISTS":                "The email address is already in use by another account.",
	"WEAK_PASSWORD":               "Password should be at least 6 characters.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Try again later.",
	"TOKEN_EXPIRED":               "The session has expired. Sign in again.",
	"INVALID_REFRESH_TOKEN":       "The session is no longer valid. Sign in again.",
	"USER_NOT_FOUND":              "The account no longer exists.",
	"INVALID_ID_TOKEN":            "The session is no longer valid. Sign in again.",
}

// newProviderError maps the provider's message, which may carry a detail
// suffix such as "WEAK_PASSWORD : Password should be ...", to an Error.
func newProviderError(raw string) *Error {
	raw = strings.TrimSpace(raw)
	code := raw
	if idx := strings.Index(raw, " : "); idx >= 0 {
		code = strings.TrimSpace(raw[:idx])
	}
	if code == "" {
		code = "UNKNOWN"
	}
	if msg, ok := providerMessages[code]; ok {
		return &Error{Code: code, Message: msg}
	}
	return &Error{Code: code, Message: strings.ToLower(strings.ReplaceAll(code, "_", " "))}
}

// Message returns the user-facing text of err when the provider rejected it.
func Message(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return "The sign-in service is unavailable. Try again."
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
