package format

import (
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "₹ 0.00"},
		{ptr(0), "₹ 0.00"},
		{ptr(1000), "₹ 1,000.00"},
		{ptr(999.999), "₹ 1,000.00"},
		{ptr(1234567), "₹ 12,34,567.00"},
		{ptr(123456789.5), "₹ 12,34,56,789.50"},
		{ptr(12.345), "₹ 12.35"},
		{ptr(-5), "-₹ 5.00"},
		{ptr(-0.001), "₹ 0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in))
	}
	assert.Equal(t, "Rs 1,00,000.00", FormatMoney("Rs", 100000))
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2024, 1, 5, 15, 4, 0, 0, time.UTC)
	rnd := rand.New(rand.NewPCG(1, 2))
	pattern := regexp.MustCompile(`^SQ-05-01-24-(\d{4})$`)

	for range 200 {
		got, err := GenerateOrderNumber("", now, rnd)
		require.NoError(t, err)
		m := pattern.FindStringSubmatch(got)
		require.Len(t, m, 2, got)
		assert.GreaterOrEqual(t, m[1], "1000")
		assert.LessOrEqual(t, m[1], "9999")
	}

	got, err := GenerateOrderNumber("SO/{YYYY}{MM}{DD}/{RAND2}", now, rnd)
	require.NoError(t, err)
	assert.Regexp(t, `^SO/20240105/[1-9]\d$`, got)

	_, err = GenerateOrderNumber("SQ-{SEQ}", now, rnd)
	assert.Error(t, err)
	_, err = GenerateOrderNumber("", now, nil)
	assert.Error(t, err)
}

func TestToDisplayDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15-01-2024", "15-01-2024"},
		{"2024-01-15", "15-01-2024"},
		{"2024-01-15T18:30:00.000Z", "15-01-2024"},
		{"15/01/2024", "15-01-2024"},
		{"01/15/2024", "15-01-2024"},
		{"5.1.24", "05-01-2024"},
		{"5/1/99", "05-01-1999"},
		{"  ", ""},
		{"", ""},
		{"today", ""},
		{"12-2024", ""},
		{"40-40-2024", ""},
		{"00-01-2024", ""},
		{"01-15-2024", "15-01-2024"},
		{"31-12-2024", "31-12-2024"},
		{"15-01-202", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToDisplayDate(tt.in), tt.in)
	}
}

func TestToStorageDate(t *testing.T) {
	got, ok := ToStorageDate("15-01-2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-15", got)

	got, ok = ToStorageDate("15/01/2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-15", got)

	got, ok = ToStorageDate("2024-01-15")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-15", got)

	for _, in := range []string{"", "15.01.2024", "1-1-2024", "Jan 15"} {
		_, ok := ToStorageDate(in)
		assert.False(t, ok, in)
	}
}

func TestStorageDisplayRoundTrip(t *testing.T) {
	for _, d := range []string{"15-01-2024", "01-12-1999", "29-02-2028", "31-12-2099"} {
		first, ok := ToStorageDate(d)
		require.True(t, ok)
		again, ok := ToStorageDate(ToDisplayDate(first))
		require.True(t, ok)
		assert.Equal(t, first, again, d)
	}
}

func TestIsFutureOrToday(t *testing.T) {
	now := time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC)

	assert.True(t, IsFutureOrToday("31-12-2099", now))
	assert.False(t, IsFutureOrToday("01-01-2000", now))
	assert.True(t, IsFutureOrToday("10-06-2024", now))
	assert.True(t, IsFutureOrToday("2024-06-11", now))
	assert.False(t, IsFutureOrToday("09-06-2024", now))
	assert.False(t, IsFutureOrToday("", now))
	assert.False(t, IsFutureOrToday("soon", now))
}

func TestFromOracleTimestamp(t *testing.T) {
	assert.Equal(t, "15-01-2024", FromOracleTimestamp("2024-01-15T00:00:00.000Z"))
	assert.Equal(t, "15-01-2024", FromOracleTimestamp("2024-01-15"))
	assert.Equal(t, "", FromOracleTimestamp(""))
	assert.Equal(t, "15/01/2024", FromOracleTimestamp("15/01/2024"))
}
