package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Clamp limits value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// ClipInPlace limits every value of data to [lo, hi].
func ClipInPlace(data []float64, lo, hi float64) {
	for i, v := range data {
		data[i] = Clamp(v, lo, hi)
	}
}

// Range returns the smallest and largest value of data.
func Range(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return 0, 0
	}
	return floats.Min(data), floats.Max(data)
}
