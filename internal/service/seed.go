package service

import (
	"math"
	"math/rand/v2"
)

const seedSpace = 1 << 31

// NormalizeSeed floors v, truncates it to a signed 32-bit integer the way
// two's-complement wrap-around would, and takes the absolute value.
// math.MinInt32 has no positive counterpart and maps to 0. ok is false for
// NaN and infinities.
func NormalizeSeed(v float64) (seed int32, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	wrapped := math.Mod(math.Floor(v), 1<<32)
	t := int32(uint32(int64(wrapped)))
	switch {
	case t == math.MinInt32:
		return 0, true
	case t < 0:
		return -t, true
	default:
		return t, true
	}
}

// RandomSeed draws a seed uniformly from [0, 2^31).
func RandomSeed() int32 {
	return int32(rand.Int64N(seedSpace))
}

// effectiveSeed returns the normalized requested seed, or a random one.
func effectiveSeed(requested *float64, random func() int32) int32 {
	if requested != nil {
		if s, ok := NormalizeSeed(*requested); ok {
			return s
		}
	}
	return random()
}
