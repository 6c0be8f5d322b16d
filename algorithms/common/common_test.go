package common_test

import (
	"testing"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_Validates(t *testing.T) {
	_, err := common.NewGrid([]int{2, 3}, make([]float64, 6))
	require.NoError(t, err)

	_, err = common.NewGrid([]int{2, 3}, make([]float64, 5))
	require.ErrorIs(t, err, common.ErrInvalidGrid)

	_, err = common.NewGrid(nil, nil)
	require.ErrorIs(t, err, common.ErrInvalidGrid)

	_, err = common.NewGrid([]int{0}, nil)
	require.ErrorIs(t, err, common.ErrInvalidGrid)
}

func TestGrid_FlipReversesAllAxes(t *testing.T) {
	g, err := common.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)

	flipped := g.Flip()
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1}, flipped.Values)
	assert.Equal(t, []int{2, 3}, flipped.Shape)
	// source untouched
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, g.Values)
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := common.FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, common.ErrInvalidGrid)
}

func TestSample_BoundaryModes(t *testing.T) {
	line := []float64{1, 2, 3, 4}

	tests := []struct {
		mode common.BoundaryMode
		idx  []int
		want []float64
	}{
		{common.Reflect, []int{-1, -2, 4, 5, 8}, []float64{1, 2, 4, 3, 1}},
		{common.Nearest, []int{-3, -1, 4, 9}, []float64{1, 1, 4, 4}},
		{common.Constant, []int{-1, 4}, []float64{-7, -7}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			for i, idx := range tt.idx {
				assert.Equal(t, tt.want[i], common.Sample(line, idx, tt.mode, -7), "index %d", idx)
			}
		})
	}
}

func TestMapAxis_ColumnsOfMatrix(t *testing.T) {
	g, err := common.FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	// sum each column into a single value
	out, err := common.MapAxis(g, 0, 1, func(in, out []float64) {
		for _, v := range in {
			out[0] += v
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out.Shape)
	assert.Equal(t, []float64{9, 12}, out.Values)

	_, err = common.MapAxis(g, 2, 1, func(in, out []float64) {})
	require.ErrorIs(t, err, common.ErrInvalidGrid)
}

func TestInterpolator_ZoomLine(t *testing.T) {
	interp := common.NewInterpolator(common.Nearest, 0)

	out := make([]float64, 4)
	interp.ZoomLine([]float64{0, 1}, out)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.75, 1}, out, 1e-12)

	// constant boundary pulls edge samples toward the fill value
	constant := common.NewInterpolator(common.Constant, 0)
	constant.ZoomLine([]float64{1, 1}, out)
	assert.InDeltaSlice(t, []float64{0.75, 1, 1, 0.75}, out, 1e-12)
}

func TestInterpolator_ZoomSameShapeCopies(t *testing.T) {
	g, err := common.NewGrid([]int{3}, []float64{1, 2, 3})
	require.NoError(t, err)

	out, err := common.NewInterpolator(common.Nearest, 0).Zoom(g, []int{3})
	require.NoError(t, err)
	out.Values[0] = 9
	assert.Equal(t, 1.0, g.Values[0])
}

func TestRangeGuard(t *testing.T) {
	guard := common.NewRangeGuard(1.0, 0.3)

	in := []float64{0.1, 0.5, 1.0}
	out, fired := guard.NormalizeAndFlag(in)
	assert.False(t, fired)
	assert.Equal(t, in, out)

	in = []float64{2, 4, 6}
	out, fired = guard.NormalizeAndFlag(in)
	assert.True(t, fired)
	assert.InDeltaSlice(t, []float64{0, 0.15, 0.3}, out, 1e-12)
	assert.Equal(t, []float64{2, 4, 6}, in, "input must not be modified")

	// a second pass never fires again
	_, fired = guard.NormalizeAndFlag(out)
	assert.False(t, fired)
}

func TestMinMaxNormalize_Constant(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, common.MinMaxNormalize([]float64{5, 5, 5}))
	assert.Empty(t, common.MinMaxNormalize(nil))
}
