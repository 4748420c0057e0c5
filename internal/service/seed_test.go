package service_test

import (
	"math"
	"testing"

	"graphics-server/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeed(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want int32
	}{
		{"positive", 42, 42},
		{"negative", -5, 5},
		{"fraction floors", 7.9, 7},
		{"negative fraction floors", -7.1, 8},
		{"wraps past int32", 3000000000, 1294967296},
		{"max int32", math.MaxInt32, math.MaxInt32},
		{"min int32 maps to zero", math.MinInt32, 0},
		{"2^32 wraps to zero", 1 << 32, 0},
		{"2^32 + 1", 1<<32 + 1, 1},
		{"zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := service.NormalizeSeed(tc.in)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, int32(0))
		})
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok := service.NormalizeSeed(v)
		assert.False(t, ok, v)
	}
}

func TestRandomSeed(t *testing.T) {
	for range 1000 {
		s := service.RandomSeed()
		assert.GreaterOrEqual(t, s, int32(0))
	}
}
