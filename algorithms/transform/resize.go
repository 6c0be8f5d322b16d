// Package transform resamples measurement grids onto fixed shapes.
//
// Resize follows the usual image-resampling recipe: when an axis shrinks,
// the grid is first smoothed with a Gaussian of sigma = (factor-1)/2 to
// suppress aliasing; it is then linearly interpolated with pixel-center
// alignment, and finally clipped to the value range of the input (widened
// by the fill value when the boundary is Constant).
package transform

import (
	"fmt"
	"math"

	"github.com/jenshnielsen/nanotune/algorithms/common"
	"github.com/jenshnielsen/nanotune/algorithms/filters"
)

// Resizer resamples grids with a fixed boundary mode.
type Resizer struct {
	mode common.BoundaryMode
	cval float64
}

// NewResizer creates an anti-aliasing resizer. cval is read outside the
// grid when mode is Constant.
func NewResizer(mode common.BoundaryMode, cval float64) *Resizer {
	return &Resizer{mode: mode, cval: cval}
}

// Resize resamples g to shape, which must have g's dimensionality.
func (r *Resizer) Resize(g common.Grid, shape []int) (common.Grid, error) {
	if err := g.Validate(); err != nil {
		return common.Grid{}, err
	}
	if len(shape) != g.Dims() {
		return common.Grid{}, fmt.Errorf("%w: cannot resize %dD grid to shape %v",
			common.ErrInvalidGrid, g.Dims(), shape)
	}
	for _, n := range shape {
		if n <= 0 {
			return common.Grid{}, fmt.Errorf("%w: target shape %v", common.ErrInvalidGrid, shape)
		}
	}

	sigmas := make([]float64, g.Dims())
	for axis, n := range shape {
		factor := float64(g.Shape[axis]) / float64(n)
		sigmas[axis] = math.Max(0, (factor-1)/2)
	}
	filtered, err := filters.Gaussian(g, sigmas, r.mode, r.cval)
	if err != nil {
		return common.Grid{}, err
	}

	interp := common.NewInterpolator(r.mode, r.cval)
	out, err := interp.Zoom(filtered, shape)
	if err != nil {
		return common.Grid{}, err
	}

	lo, hi := common.Range(g.Values)
	if r.mode == common.Constant {
		lo = math.Min(lo, r.cval)
		hi = math.Max(hi, r.cval)
	}
	common.ClipInPlace(out.Values, lo, hi)

	return out, nil
}
