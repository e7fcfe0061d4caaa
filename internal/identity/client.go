package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/orderdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Token is an issued identity session.
type Token struct {
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Provider is the identity provider this service signs users in against.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Token, error)
	SignUp(ctx context.Context, email, password string) (Token, error)
	Delete(ctx context.Context, idToken string) error
	Refresh(ctx context.Context, refreshToken string) (Token, error)
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// Client talks to the Firebase Identity Toolkit and Secure Token REST APIs.
type Client struct {
	apiKey      string
	identityURL string
	tokenURL    string
	client      *http.Client
	log         *zap.Logger
	now         func() time.Time
}

func New(p Params) Provider {
	return NewClient(p.Config.Identity, p.Log)
}

func NewClient(cfg config.IdentityConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		identityURL: strings.TrimRight(cfg.IdentityBaseURL, "/"),
		tokenURL:    strings.TrimRight(cfg.TokenBaseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		log:         log.Named("identity.client"),
		now:         time.Now,
	}
}

type accountRequest struct {
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	IDToken           string `json:"idToken,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken,omitempty"`
}

type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	ExpiresIn    string `json:"expires_in"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (Token, error) {
	var resp accountResponse
	err := c.postJSON(ctx, "/accounts:signInWithPassword", accountRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return Token{}, err
	}
	return c.accountToken(resp), nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (Token, error) {
	var resp accountResponse
	err := c.postJSON(ctx, "/accounts:signUp", accountRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return Token{}, err
	}
	return c.accountToken(resp), nil
}

// Delete removes the account owning idToken.
func (c *Client) Delete(ctx context.Context, idToken string) error {
	return c.postJSON(ctx, "/accounts:delete", accountRequest{IDToken: idToken}, nil)
}

// Refresh exchanges a refresh token for a fresh ID token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	if c.apiKey == "" {
		return Token{}, ErrNotConfigured
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.tokenURL, "/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp refreshResponse
	if err := c.do(req, &resp); err != nil {
		return Token{}, err
	}
	token := Token{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		UID:          resp.UserID,
		ExpiresAt:    c.expiry(resp.ExpiresIn),
	}
	if claims, err := ParseClaims(resp.IDToken); err == nil {
		token.Email = claims.Email
	}
	return token, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.identityURL, path), strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("identity provider request failed", zap.String("path", req.URL.Path), zap.Error(err))
		return errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var payload errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return newProviderError("")
		}
		return newProviderError(payload.Error.Message)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (c *Client) endpoint(base, path string) string {
	return base + path + "?key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) accountToken(resp accountResponse) Token {
	return Token{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		UID:          resp.LocalID,
		Email:        resp.Email,
		ExpiresAt:    c.expiry(resp.ExpiresIn),
	}
}

func (c *Client) expiry(expiresIn string) time.Time {
	seconds, err := strconv.Atoi(strings.TrimSpace(expiresIn))
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return c.now().Add(time.Duration(seconds) * time.Second)
}
