package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality for 1D and 2D grids
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform of a 1D signal using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes efficiently, including non-power-of-2
	return fft.FFTReal(x)
}

// Compute2D computes the 2D transform of a row-major matrix.
func (f *FFT) Compute2D(rows [][]float64) [][]complex128 {
	if len(rows) == 0 {
		return [][]complex128{}
	}
	return fft.FFT2Real(rows)
}
