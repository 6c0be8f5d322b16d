package transform_test

import (
	"testing"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) common.Grid {
	g := common.Zeros([]int{n})
	for i := range g.Values {
		g.Values[i] = float64(i)
	}
	return g
}

func TestResize_SameShapeIsIdentity(t *testing.T) {
	g := ramp(10)

	out, err := transform.NewResizer(common.Nearest, 0).Resize(g, []int{10})
	require.NoError(t, err)
	assert.Equal(t, g.Values, out.Values)
}

func TestResize_DownsampleStaysMonotoneAndInRange(t *testing.T) {
	g := ramp(200)

	out, err := transform.NewResizer(common.Nearest, 0).Resize(g, []int{100})
	require.NoError(t, err)
	require.Equal(t, []int{100}, out.Shape)

	for i := 1; i < len(out.Values); i++ {
		assert.GreaterOrEqual(t, out.Values[i], out.Values[i-1])
	}
	assert.GreaterOrEqual(t, out.Values[0], 0.0)
	assert.LessOrEqual(t, out.Values[99], 199.0)
	// interior samples land midway between source pairs
	assert.InDelta(t, 100.5, out.Values[50], 1e-9)
}

func TestResize_ConstantUpsample2D(t *testing.T) {
	g := common.Zeros([]int{3, 4})
	for i := range g.Values {
		g.Values[i] = 0.2
	}

	out, err := transform.NewResizer(common.Nearest, 0).Resize(g, []int{50, 50})
	require.NoError(t, err)
	require.Equal(t, 2500, out.Size())
	for _, v := range out.Values {
		assert.InDelta(t, 0.2, v, 1e-12)
	}
}

func TestResize_ConstantModeClipsToFillRange(t *testing.T) {
	g := common.Zeros([]int{20})
	for i := range g.Values {
		g.Values[i] = 1
	}

	out, err := transform.NewResizer(common.Constant, 0).Resize(g, []int{5})
	require.NoError(t, err)
	for _, v := range out.Values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	// smoothing against the zero border lowers the edges
	assert.Less(t, out.Values[0], out.Values[2])
}

func TestResize_RankMismatch(t *testing.T) {
	_, err := transform.NewResizer(common.Nearest, 0).Resize(ramp(10), []int{5, 5})
	require.ErrorIs(t, err, common.ErrInvalidGrid)
}
