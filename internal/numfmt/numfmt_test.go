package numfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat(t *testing.T) {
	a, b := 0.1, 0.2
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{-3, "-3.0"},
		{1024, "1024.0"},
		{a + b, "0.30000000000000004"},
		{2.5, "2.5"},
		{1.0 / 3, "0.3333333333333333"},
		{1e16, "1e+16"},
		{123456789012345.0, "123456789012345.0"},
		{1.5e-5, "1.5e-05"},
		{0.0001, "0.0001"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Float(tc.in), "Float(%v)", tc.in)
	}
}
