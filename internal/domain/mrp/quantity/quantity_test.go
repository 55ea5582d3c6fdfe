package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString_RejectsGarbage(t *testing.T) {
	_, err := FromString("not-a-number")
	require.Error(t, err)
}

func TestArithmetic_TruncatesToInternalScale(t *testing.T) {
	a := MustFromString("1.00005")
	b := MustFromString("0.00003")
	assert.Equal(t, "1.00", a.Add(b).String())
}

func TestDivFloor(t *testing.T) {
	tests := []struct {
		name   string
		avail  string
		rate   string
		expect string
	}{
		{"exact", "100", "10", "10.00"},
		{"keeps a two-place fraction", "105", "10", "10.50"},
		{"floors a non-terminating ratio", "10", "3", "3.33"},
		{"zero available", "0", "5", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avail := MustFromString(tt.avail)
			rate := MustFromString(tt.rate)
			assert.Equal(t, tt.expect, avail.DivFloor(rate).String())
		})
	}
}

func TestDivFloor_ByZeroIsZero(t *testing.T) {
	avail := MustFromString("10")
	assert.True(t, avail.DivFloor(Zero).IsZero())
}

func TestMinMax(t *testing.T) {
	a := MustFromString("3")
	b := MustFromString("7")
	assert.Equal(t, a, a.Min(b))
	assert.Equal(t, b, a.Max(b))
}

func TestWithinTolerance(t *testing.T) {
	a := MustFromString("10.00")
	b := MustFromString("10.009")
	tol := MustFromString("0.01")
	assert.True(t, a.WithinTolerance(b, tol))

	c := MustFromString("10.02")
	assert.False(t, a.WithinTolerance(c, tol))
}

func TestJSONRoundTrip(t *testing.T) {
	q := MustFromString("42.5")
	data, err := q.MarshalJSON()
	require.NoError(t, err)

	var out Qty
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, "42.50", out.String())

	var fromString Qty
	require.NoError(t, fromString.UnmarshalJSON([]byte(`"42.5"`)))
	assert.Equal(t, "42.50", fromString.String())

	var fromNull Qty
	require.NoError(t, fromNull.UnmarshalJSON([]byte("null")))
	assert.True(t, fromNull.IsZero())
}
