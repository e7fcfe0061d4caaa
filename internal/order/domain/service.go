package domain

import (
	"context"
	"io"

	"github.com/smallbiznis/orderdesk/internal/backend"
)

// Backend is the part of the REST backend orders depend on.
type Backend interface {
	NextOrderNumber(ctx context.Context, token string) (string, error)
	SubmitOrder(ctx context.Context, token string, payload any) (backend.Result, error)
	OrderByNumber(ctx context.Context, token, number string) ([]backend.Record, error)
}

type Service interface {
	NewDraft(ctx context.Context, clientID string) (Draft, error)
	Compute(ctx context.Context, clientID string, order Order) (Order, error)
	Submit(ctx context.Context, clientID string, order Order) (SubmitResult, error)
	Get(ctx context.Context, clientID, orderNumber string) (Order, error)
	Voucher(ctx context.Context, clientID, orderNumber string) (io.Reader, error)
}
