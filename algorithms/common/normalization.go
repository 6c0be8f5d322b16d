package common

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// MinMaxNormalize maps signal onto [0, 1]. A constant signal maps to zeros.
func MinMaxNormalize(signal []float64) []float64 {
	if len(signal) == 0 {
		return []float64{}
	}

	lo := floats.Min(signal)
	hi := floats.Max(signal)

	normalized := make([]float64, len(signal))
	if math.Abs(hi-lo) < 1e-10 {
		return normalized
	}

	copy(normalized, signal)
	floats.AddConst(-lo, normalized)
	floats.Scale(1/(hi-lo), normalized)
	return normalized
}

// NormalizeToTarget normalizes signal to [targetMin, targetMax].
func NormalizeToTarget(signal []float64, targetMin, targetMax float64) []float64 {
	normalized := MinMaxNormalize(signal)
	floats.Scale(targetMax-targetMin, normalized)
	floats.AddConst(targetMin, normalized)
	return normalized
}

// RangeGuard repairs signals that were stored without normalization.
// Normalized measurements never exceed Ceiling; a signal that does is taken
// to be a dot measurement whose largest current is not the device maximum,
// so it is rescaled onto [0, Scale].
type RangeGuard struct {
	Ceiling float64
	Scale   float64
}

// NewRangeGuard creates a guard for the given ceiling and target scale
func NewRangeGuard(ceiling, scale float64) RangeGuard {
	return RangeGuard{Ceiling: ceiling, Scale: scale}
}

// Exceeds reports whether any value is above the ceiling.
func (rg RangeGuard) Exceeds(signal []float64) bool {
	return len(signal) > 0 && floats.Max(signal) > rg.Ceiling
}

// NormalizeAndFlag returns the corrected signal and true when the guard
// fired, or a copy of signal and false otherwise. signal is never modified.
func (rg RangeGuard) NormalizeAndFlag(signal []float64) ([]float64, bool) {
	if !rg.Exceeds(signal) {
		return slices.Clone(signal), false
	}
	return NormalizeToTarget(signal, 0, rg.Scale), true
}
