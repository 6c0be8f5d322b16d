package filters

import (
	"fmt"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// Correlate1D correlates every line of g along axis with weights centered
// on len(weights)/2. Samples beyond the edges are read through mode.
func Correlate1D(g common.Grid, weights []float64, axis int, mode common.BoundaryMode, cval float64) (common.Grid, error) {
	if axis < 0 || axis >= g.Dims() {
		return common.Grid{}, fmt.Errorf("%w: axis %d of %dD grid", common.ErrInvalidGrid, axis, g.Dims())
	}

	center := len(weights) / 2
	padded := make([]float64, g.Shape[axis]+len(weights)-1)
	return common.MapAxis(g, axis, g.Shape[axis], func(in, out []float64) {
		for k := range padded {
			padded[k] = common.Sample(in, k-center, mode, cval)
		}
		for i := range out {
			out[i] = floats.Dot(weights, padded[i:i+len(weights)])
		}
	})
}
