package filters

import (
	"fmt"
	"math"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// DefaultTruncate is the kernel radius in standard deviations.
const DefaultTruncate = 4.0

// GaussianKernel returns normalized Gaussian weights of radius
// int(truncate*sigma + 0.5).
func GaussianKernel(sigma, truncate float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// Gaussian smooths g with one standard deviation per axis. Axes with a
// non-positive sigma are left untouched.
func Gaussian(g common.Grid, sigmas []float64, mode common.BoundaryMode, cval float64) (common.Grid, error) {
	if len(sigmas) != g.Dims() {
		return common.Grid{}, fmt.Errorf("%w: %d sigmas for %dD grid", common.ErrInvalidGrid, len(sigmas), g.Dims())
	}

	out := g.Clone()
	for axis, sigma := range sigmas {
		if sigma <= 1e-15 {
			continue
		}
		var err error
		out, err = Correlate1D(out, GaussianKernel(sigma, DefaultTruncate), axis, mode, cval)
		if err != nil {
			return common.Grid{}, err
		}
	}
	return out, nil
}
