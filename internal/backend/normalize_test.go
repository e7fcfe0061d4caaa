package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		count int
		first Record
	}{
		{
			name:  "data array",
			raw:   `{"data":[{"USERNAME":"acme","STATE":"Tamil Nadu"},{"USERNAME":"beta"}]}`,
			count: 2,
			first: Record{"username": "acme", "state": "Tamil Nadu"},
		},
		{
			name:  "data object",
			raw:   `{"data":{"Role":"admin"}}`,
			count: 1,
			first: Record{"role": "admin"},
		},
		{
			name:  "bare array",
			raw:   `[{"ITEM_CODE":"A1"}]`,
			count: 1,
			first: Record{"item_code": "A1"},
		},
		{
			name:  "bare object",
			raw:   `{"customer_name":"Zed"}`,
			count: 1,
			first: Record{"customer_name": "Zed"},
		},
		{name: "message notice", raw: `{"message":"No rows"}`},
		{name: "error notice", raw: `{"Error":"denied","status":403}`},
		{
			name:  "bare object with message and fields",
			raw:   `{"message":"ok","CODE":"C1","NAME":"Zed"}`,
			count: 1,
			first: Record{"message": "ok", "code": "C1", "name": "Zed"},
		},
		{name: "empty object", raw: `{}`},
		{name: "empty array", raw: `[]`},
		{name: "data empty array", raw: `{"data":[]}`},
		{name: "data empty object", raw: `{"data":{}}`},
		{name: "data null", raw: `{"data":null}`},
		{name: "null", raw: `null`},
		{name: "empty body", raw: ``},
		{name: "scalar", raw: `"ok"`},
		{
			name:  "array skips scalars",
			raw:   `[1,"x",{"A":1}]`,
			count: 1,
			first: Record{"a": float64(1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Normalize([]byte(tt.raw))
			require.Len(t, records, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first, records[0])
			}
		})
	}
}

func TestNormalizeProfileRequiresEnvelope(t *testing.T) {
	assert.Empty(t, NormalizeProfile([]byte(`{"message":"No admin profile for this user"}`)))
	assert.Empty(t, NormalizeProfile([]byte(`{"username":"acme"}`)))

	records := NormalizeProfile([]byte(`{"data":[{"USERNAME":"acme"}]}`))
	require.Len(t, records, 1)
	assert.Equal(t, "acme", records[0].String("username"))

	records = NormalizeProfile([]byte(`{"data":{"USERNAME":"root"}}`))
	require.Len(t, records, 1)
	assert.Equal(t, "root", records[0].String("username"))

	assert.Len(t, NormalizeProfile([]byte(`[{"USERNAME":"acme"}]`)), 1)
}

func TestFirstSkipsEmptyRecords(t *testing.T) {
	_, ok := First(Normalize([]byte(`[{}]`)))
	assert.False(t, ok)

	rec, ok := First(Normalize([]byte(`[{},{"Username":"x"}]`)))
	require.True(t, ok)
	assert.Equal(t, "x", rec.String("username"))
}

func TestRecordAccessors(t *testing.T) {
	rec := Normalize([]byte(`{"RATE":"12.5","QTY":3,"GST":null,"ACTIVE":true,"CODE":1001}`))[0]

	assert.Equal(t, 12.5, rec.Float("rate"))
	assert.Equal(t, float64(3), rec.Float("qty"))
	assert.Equal(t, float64(0), rec.Float("gst"))
	assert.Equal(t, float64(0), rec.Float("missing"))
	assert.Equal(t, "1001", rec.String("code"))
	assert.Equal(t, "true", rec.String("active"))
	assert.Equal(t, "", rec.String("gst"))
	assert.False(t, rec.Has("gst"))
	assert.True(t, rec.Has("rate"))
}
