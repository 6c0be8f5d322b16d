package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/jenshnielsen/nanotune/algorithms/common"
)

// PowerSpectrum computes the magnitude spectrum stored alongside every
// measurement and exported as the frequencies channel.
type PowerSpectrum struct {
	fft *FFT
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{fft: NewFFT()}
}

// Compute returns |fftshift(fft(g))| for a 1D or 2D grid, the zero
// frequency sitting at index n/2 of every axis.
func (ps *PowerSpectrum) Compute(g common.Grid) (common.Grid, error) {
	if err := g.Validate(); err != nil {
		return common.Grid{}, err
	}

	switch g.Dims() {
	case 1:
		spectrum := ps.fft.Compute(g.Values)
		out := common.Zeros(g.Shape)
		n := len(spectrum)
		for k, c := range spectrum {
			out.Values[(k+n/2)%n] = cmplx.Abs(c)
		}
		return out, nil

	case 2:
		rows, err := g.Rows()
		if err != nil {
			return common.Grid{}, err
		}
		spectrum := ps.fft.Compute2D(rows)
		out := common.Zeros(g.Shape)
		nr, nc := g.Shape[0], g.Shape[1]
		for r, row := range spectrum {
			sr := (r + nr/2) % nr
			for c, v := range row {
				sc := (c + nc/2) % nc
				out.Values[sr*nc+sc] = cmplx.Abs(v)
			}
		}
		return out, nil

	default:
		return common.Grid{}, fmt.Errorf("%w: no spectrum for %dD grid", common.ErrInvalidGrid, g.Dims())
	}
}
