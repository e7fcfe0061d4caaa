package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/auth/login"),
		attribute.String("user.email", "a@b.c"),
		attribute.String("auth.id_token", "x"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("upstream unavailable")), "upstream unavailable")
	assert.EqualError(t, SafeError(errors.New("invalid password for x")), "redacted error")
}
