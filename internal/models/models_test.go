package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    string
		gsm    float64
		width  float64
		length float64
		sheets int
		want   float64
	}{
		{"reel", ProductTypeReel, 80, 1200, 500, 0, 48},
		{"reel fractional", ProductTypeReel, 70, 915, 1000, 0, 64.05},
		{"bundle", ProductTypeBundle, 100, 700, 1000, 500, 35},
		{"bundle rounds to grams", ProductTypeBundle, 58, 610, 860, 144, 4.381},
		{"bundle without sheets", ProductTypeBundle, 100, 700, 1000, 0, 0},
		{"missing width", ProductTypeReel, 80, 0, 500, 0, 0},
		{"missing gsm", ProductTypeBundle, 0, 700, 1000, 10, 0},
		{"unknown type", "roll", 80, 1200, 500, 0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Weight(tt.typ, tt.gsm, tt.width, tt.length, tt.sheets), 1e-9, tt.name)
	}
}

func TestStockStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StockOut, StockStatus(0, 50))
	assert.Equal(t, StockLow, StockStatus(1, 50))
	assert.Equal(t, StockLow, StockStatus(49, 50))
	assert.Equal(t, StockIn, StockStatus(50, 50))
	assert.Equal(t, StockLow, StockStatus(49, 0))
	assert.Equal(t, StockIn, StockStatus(10, 5))
}

func TestUserAge(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	dob := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	assert.Equal(t, 0, (&User{}).AgeAt(now))
	assert.Equal(t, 30, (&User{DOB: dob(1995, 6, 15)}).AgeAt(now))
	assert.Equal(t, 29, (&User{DOB: dob(1995, 6, 16)}).AgeAt(now))
	assert.Equal(t, 0, (&User{DOB: dob(2030, 1, 1)}).AgeAt(now))
}

func TestStringListColumn(t *testing.T) {
	t.Parallel()

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, l)
	assert.True(t, l.Contains("b"))

	require.NoError(t, l.Scan(nil))
	b, err := l.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestQuoteColumn(t *testing.T) {
	t.Parallel()

	q := Quote{Items: []QuoteItem{{Product: QuoteProduct{Name: "Kraft"}, Quantity: 2}}}
	v, err := q.Value()
	require.NoError(t, err)

	var back Quote
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, q, back)

	require.NoError(t, back.Scan(nil))
	assert.NotNil(t, back.Items)
	assert.Empty(t, back.Items)
}
