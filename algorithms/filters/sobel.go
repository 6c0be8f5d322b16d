package filters

import (
	"math"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

var (
	sobelDerivative = []float64{-1, 0, 1}
	sobelSmoothing  = []float64{1, 2, 1}
)

// Sobel returns the Sobel derivative of g along axis: a central difference
// along axis and [1 2 1] smoothing along every other axis.
func Sobel(g common.Grid, axis int, mode common.BoundaryMode) (common.Grid, error) {
	out, err := Correlate1D(g, sobelDerivative, axis, mode, 0)
	if err != nil {
		return common.Grid{}, err
	}
	for other := 0; other < g.Dims(); other++ {
		if other == axis {
			continue
		}
		out, err = Correlate1D(out, sobelSmoothing, other, mode, 0)
		if err != nil {
			return common.Grid{}, err
		}
	}
	return out, nil
}

// GradientMagnitude is the root of the summed squared Sobel derivatives
// over all axes.
func GradientMagnitude(g common.Grid, mode common.BoundaryMode) (common.Grid, error) {
	if err := g.Validate(); err != nil {
		return common.Grid{}, err
	}

	magnitude := common.Zeros(g.Shape)
	for axis := 0; axis < g.Dims(); axis++ {
		derivative, err := Sobel(g, axis, mode)
		if err != nil {
			return common.Grid{}, err
		}
		floats.Mul(derivative.Values, derivative.Values)
		floats.Add(magnitude.Values, derivative.Values)
	}
	for i, v := range magnitude.Values {
		magnitude.Values[i] = math.Sqrt(v)
	}
	return magnitude, nil
}
