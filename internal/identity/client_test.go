package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, uid, email string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: uid,
		Email:  email,
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.IdentityConfig{
		APIKey:          "key-123",
		IdentityBaseURL: srv.URL + "/v1",
		TokenBaseURL:    srv.URL + "/v1",
		Timeout:         time.Second,
	}, zap.NewNop())
}

func TestSignInSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "key-123", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dist@acme.in", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"idToken":      "id-1",
			"refreshToken": "refresh-1",
			"localId":      "uid-1",
			"email":        "dist@acme.in",
			"expiresIn":    "3600",
		})
	})
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	token, err := client.SignIn(context.Background(), " dist@acme.in ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "id-1", token.IDToken)
	assert.Equal(t, "uid-1", token.UID)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt)
}

func TestSignInRejected(t *testing.T) {
	tests := []struct {
		raw     string
		code    string
		message string
	}{
		{raw: "INVALID_PASSWORD", code: "INVALID_PASSWORD", message: "The password is invalid."},
		{raw: "INVALID_LOGIN_CREDENTIALS", code: "INVALID_LOGIN_CREDENTIALS", message: "Invalid email or password."},
		{raw: "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled", code: "TOO_MANY_ATTEMPTS_TRY_LATER", message: "Too many attempts. Try again later."},
		{raw: "OPERATION_NOT_ALLOWED", code: "OPERATION_NOT_ALLOWED", message: "operation not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"` + tt.raw + `"}}`))
			})

			_, err := client.SignIn(context.Background(), "a@b.c", "bad")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRejected)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.code, perr.Code)
			assert.Equal(t, tt.message, Message(err))
		})
	}
}

func TestProviderOutage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.SignUp(context.Background(), "a@b.c", "secret1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrRejected)
	assert.Equal(t, "The sign-in service is unavailable. Try again.", Message(err))
}

func TestNotConfigured(t *testing.T) {
	client := NewClient(config.IdentityConfig{}, zap.NewNop())
	_, err := client.SignIn(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDeleteSendsIDToken(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:delete", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = body["idToken"]
		_, _ = w.Write([]byte(`{}`))
	})
	require.NoError(t, client.Delete(context.Background(), "id-9"))
	assert.Equal(t, "id-9", got)
}

func TestRefresh(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	idToken := signedToken(t, "uid-7", "corp@acme.in", exp)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "r-1", r.PostForm.Get("refresh_token"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id_token":      idToken,
			"refresh_token": "r-2",
			"user_id":       "uid-7",
			"expires_in":    "3600",
		})
	})

	token, err := client.Refresh(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "r-2", token.RefreshToken)
	assert.Equal(t, "corp@acme.in", token.Email)
}

func TestParseClaims(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	raw := signedToken(t, "uid-1", "a@b.c", now.Add(10*time.Minute))

	claims, err := ParseClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.False(t, claims.ExpiresSoon(now, time.Minute))
	assert.True(t, claims.ExpiresSoon(now, 15*time.Minute))

	_, err = ParseClaims("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
