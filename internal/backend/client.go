package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/smallbiznis/orderdesk/internal/observability/tracing"
	"github.com/smallbiznis/orderdesk/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// Client is the typed client of the order-management REST backend.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func New(p Params) *Client {
	return NewClient(p.Config.Backend, p.Log)
}

func NewClient(cfg config.BackendConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.Named("backend.client"),
	}
}

// Result is the backend's answer to a write.
type Result struct {
	Message      string   `json:"message,omitempty"`
	AffectedRows int64    `json:"affected_rows,omitempty"`
	Role         string   `json:"role,omitempty"`
	Records      []Record `json:"records,omitempty"`
}

// Me fetches the caller's profile from the who-am-I endpoint of roleType.
func (c *Client) Me(ctx context.Context, token, roleType string) ([]Record, error) {
	raw, err := c.do(ctx, http.MethodGet, "/me-"+url.PathEscape(roleType), token, nil)
	if err != nil {
		return nil, err
	}
	return NormalizeProfile(raw), nil
}

func (c *Client) List(ctx context.Context, token, resource string) ([]Record, error) {
	raw, err := c.do(ctx, http.MethodGet, "/"+resource, token, nil)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

func (c *Client) Get(ctx context.Context, token, resource, code string) ([]Record, error) {
	raw, err := c.do(ctx, http.MethodGet, "/"+resource+"/"+url.PathEscape(code), token, nil)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

func (c *Client) Create(ctx context.Context, token, resource string, payload any) (Result, error) {
	raw, err := c.do(ctx, http.MethodPost, "/"+resource, token, payload)
	if err != nil {
		return Result{}, err
	}
	return decodeResult(raw), nil
}

func (c *Client) Update(ctx context.Context, token, resource, code string, payload any) (Result, error) {
	raw, err := c.do(ctx, http.MethodPut, "/"+resource+"/"+url.PathEscape(code), token, payload)
	if err != nil {
		return Result{}, err
	}
	return decodeResult(raw), nil
}

func (c *Client) SignupAdmin(ctx context.Context, token string, payload any) (Result, error) {
	raw, err := c.do(ctx, http.MethodPost, "/signup-admin", token, payload)
	if err != nil {
		return Result{}, err
	}
	return decodeResult(raw), nil
}

// NextOrderNumber asks the backend to issue the next order number.
func (c *Client) NextOrderNumber(ctx context.Context, token string) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/orders/next-order-number", token, nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		OrderNumber string `json:"orderNumber"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", errors.Join(ErrUpstreamUnavailable, err)
	}
	number := strings.TrimSpace(resp.OrderNumber)
	if number == "" {
		return "", fmt.Errorf("%w: empty order number", ErrUpstreamUnavailable)
	}
	return number, nil
}

func (c *Client) SubmitOrder(ctx context.Context, token string, payload any) (Result, error) {
	raw, err := c.do(ctx, http.MethodPost, "/orders", token, payload)
	if err != nil {
		return Result{}, err
	}
	return decodeResult(raw), nil
}

// OrderByNumber returns the stored rows of one order, one per line.
func (c *Client) OrderByNumber(ctx context.Context, token, number string) ([]Record, error) {
	raw, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(number), token, nil)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	correlation.Inject(ctx, req.Header)
	tracing.InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}
	return raw, nil
}

func errorMessage(raw []byte, status int) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if s, ok := payload.Error.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		if strings.TrimSpace(payload.Message) != "" {
			return strings.TrimSpace(payload.Message)
		}
	}
	return strings.ToLower(http.StatusText(status))
}

func decodeResult(raw []byte) Result {
	var resp struct {
		Message      string `json:"message"`
		AffectedRows int64  `json:"affectedRows"`
		Role         string `json:"role"`
	}
	_ = json.Unmarshal(raw, &resp)
	return Result{
		Message:      resp.Message,
		AffectedRows: resp.AffectedRows,
		Role:         resp.Role,
		Records:      Normalize(raw),
	}
}
