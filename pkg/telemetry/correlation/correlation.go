// Package correlation threads one id through the SPA request, this service
// and every backend or identity-provider call made on its behalf.
package correlation

import (
	"context"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

const Header = "X-Correlation-Id"

// Ids longer than this are replaced rather than echoed back.
const maxLength = 128

type correlationKey struct{}

func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(correlationKey{}).(string); ok {
		return val
	}
	return ""
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	id = sanitize(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// EnsureCorrelationID returns ctx carrying an id, minting a ULID when there is none.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	cid := ExtractCorrelationID(ctx)
	if cid == "" {
		cid = ulid.Make().String()
	}
	return ContextWithCorrelationID(ctx, cid), cid
}

// FromRequest adopts the caller's id or starts a new one.
func FromRequest(r *http.Request) (context.Context, string) {
	ctx := ContextWithCorrelationID(r.Context(), r.Header.Get(Header))
	return EnsureCorrelationID(ctx)
}

// Inject copies the id of ctx onto an outbound request.
func Inject(ctx context.Context, h http.Header) {
	if cid := ExtractCorrelationID(ctx); cid != "" {
		h.Set(Header, cid)
	}
}

func sanitize(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > maxLength {
		return ""
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return id
}
