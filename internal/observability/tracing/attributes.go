package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Keys that may carry credentials or profile data never reach a span.
var blockedKeys = []string{"password", "token", "authorization", "cookie", "email", "secret"}

// ExtractContext restores an upstream trace context from carrier.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// InjectContext writes the active trace context into carrier for outbound calls.
func InjectContext(ctx context.Context, carrier propagation.TextMapCarrier) {
	otel.GetTextMapPropagator().Inject(ctx, carrier)
}

// SafeAttributes drops attributes whose key looks sensitive.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if sensitive(string(attr.Key)) {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError strips the message of errors that echo credentials.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	if sensitive(err.Error()) {
		return errors.New("redacted error")
	}
	return err
}

func sensitive(s string) bool {
	s = strings.ToLower(s)
	for _, key := range blockedKeys {
		if strings.Contains(s, key) {
			return true
		}
	}
	return false
}
