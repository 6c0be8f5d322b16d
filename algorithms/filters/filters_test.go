package filters_test

import (
	"math"
	"testing"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/filters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGaussianKernel(t *testing.T) {
	kernel := filters.GaussianKernel(1.0, filters.DefaultTruncate)
	require.Len(t, kernel, 9)
	assert.InDelta(t, 1.0, floats.Sum(kernel), 1e-12)
	assert.Equal(t, kernel[0], kernel[8])
	assert.Equal(t, 4, floats.MaxIdx(kernel))
}

func TestGaussian_ZeroSigmaIsIdentity(t *testing.T) {
	g, err := common.NewGrid([]int{4}, []float64{1, 5, 2, 8})
	require.NoError(t, err)

	out, err := filters.Gaussian(g, []float64{0}, common.Reflect, 0)
	require.NoError(t, err)
	assert.Equal(t, g.Values, out.Values)

	_, err = filters.Gaussian(g, []float64{1, 1}, common.Reflect, 0)
	require.ErrorIs(t, err, common.ErrInvalidGrid)
}

func TestGaussian_PreservesConstant(t *testing.T) {
	g := common.Zeros([]int{6, 5})
	for i := range g.Values {
		g.Values[i] = 0.4
	}

	out, err := filters.Gaussian(g, []float64{1.5, 0.5}, common.Nearest, 0)
	require.NoError(t, err)
	for _, v := range out.Values {
		assert.InDelta(t, 0.4, v, 1e-12)
	}
}

func TestGradientMagnitude_Ramp1D(t *testing.T) {
	g, err := common.NewGrid([]int{5}, []float64{0, 1, 2, 3, 4})
	require.NoError(t, err)

	out, err := filters.GradientMagnitude(g, common.Reflect)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 2, 2, 1}, out.Values, 1e-12)
}

func TestGradientMagnitude_ConstantIsZero(t *testing.T) {
	g := common.Zeros([]int{4, 4})
	for i := range g.Values {
		g.Values[i] = 3
	}

	out, err := filters.GradientMagnitude(g, common.Reflect)
	require.NoError(t, err)
	for _, v := range out.Values {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestSobel_HorizontalEdge(t *testing.T) {
	g, err := common.FromRows([][]float64{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 2},
	})
	require.NoError(t, err)

	rows, err := filters.Sobel(g, 0, common.Reflect)
	require.NoError(t, err)
	// interior: derivative 2 along rows, smoothing weights sum to 4
	assert.InDelta(t, 8.0, rows.Values[4], 1e-12)

	cols, err := filters.Sobel(g, 1, common.Reflect)
	require.NoError(t, err)
	for _, v := range cols.Values {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestCorrelate1D_BoundaryModes(t *testing.T) {
	g, err := common.FromRows([][]float64{
		{1, 2, 3, 4},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)
	weights := []float64{1, 2, 3}

	tests := []struct {
		mode common.BoundaryMode
		want []float64
	}{
		{common.Reflect, []float64{9, 14, 20, 23, 0, 0, 0, 0}},
		{common.Nearest, []float64{9, 14, 20, 23, 0, 0, 0, 0}},
		{common.Constant, []float64{18, 14, 20, 41, 10, 0, 0, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out, err := filters.Correlate1D(g, weights, 1, tt.mode, 10)
			require.NoError(t, err)
			assert.Equal(t, []int{2, 4}, out.Shape)
			assert.InDeltaSlice(t, tt.want, out.Values, 1e-12)
		})
	}

	_, err = filters.Correlate1D(g, weights, 2, common.Reflect, 0)
	require.ErrorIs(t, err, common.ErrInvalidGrid)
}

func TestGradientMagnitude_Diagonal2D(t *testing.T) {
	g, err := common.FromRows([][]float64{
		{0, 1, 2},
		{1, 2, 3},
		{2, 3, 4},
	})
	require.NoError(t, err)

	out, err := filters.GradientMagnitude(g, common.Reflect)
	require.NoError(t, err)
	// both Sobel derivatives are 8 at the center
	assert.InDelta(t, 8*math.Sqrt2, out.Values[4], 1e-12)
	// input untouched
	assert.Equal(t, []float64{0, 1, 2, 1, 2, 3, 2, 3, 4}, g.Values)
}
