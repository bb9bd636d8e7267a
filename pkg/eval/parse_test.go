package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float32
	}{
		{"42", 42},
		{"2\n", 2},
		{"  \t-3.5xyz", -3.5},
		{"+.5e1", 5},
		{".5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"1e", 1},
		{"1e+", 1},
		{"1E-1", 0.1},
		{"0x1A", 26},
		{"0X1p-2", 0.25},
		{"0x.8", 0.5},
		{"0x", 0},
		{"0xg", 0},
		{"abc", 0},
		{"", 0},
		{"\n", 0},
		{".", 0},
		{"-", 0},
		{"-0", float32(math.Copysign(0, -1))},
	}
	for _, tt := range tests {
		got := ParseFloat([]byte(tt.in))
		assert.Equal(t, tt.want, got, "%q", tt.in)
		assert.Equal(t, math.Signbit(float64(tt.want)), math.Signbit(float64(got)), "sign of %q", tt.in)
	}
}

func TestParseFloat_Special(t *testing.T) {
	assert.True(t, math.IsInf(float64(ParseFloat([]byte("INF"))), 1))
	assert.True(t, math.IsInf(float64(ParseFloat([]byte("-Infinity"))), -1))
	assert.True(t, math.IsInf(float64(ParseFloat([]byte("infx"))), 1))
	assert.True(t, math.IsInf(float64(ParseFloat([]byte("1e40"))), 1))
	assert.True(t, math.IsInf(float64(ParseFloat([]byte("-1e40"))), -1))
	assert.Equal(t, float32(0), ParseFloat([]byte("in")))

	nan := ParseFloat([]byte("NaN"))
	assert.True(t, math.IsNaN(float64(nan)))
	assert.False(t, math.Signbit(float64(nan)))
	neg := ParseFloat([]byte("-nan(123)"))
	assert.True(t, math.IsNaN(float64(neg)))
	assert.True(t, math.Signbit(float64(neg)))
}
