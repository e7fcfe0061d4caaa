package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields this service reads from an ID token.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// ParseClaims decodes an ID token without checking its signature. Tokens are
// verified by the backend on every call; here they only drive refresh timing
// and display.
func ParseClaims(idToken string) (Claims, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// ExpiresSoon reports whether the token is expired or expires within leeway.
func (c Claims) ExpiresSoon(now time.Time, leeway time.Duration) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Add(leeway).Before(c.ExpiresAt.Time)
}
