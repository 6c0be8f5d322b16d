package common

import (
	"fmt"
	"math"
)

// Interpolator linearly reads arrays at fractional positions. Positions
// outside the array are resolved by the boundary mode.
type Interpolator struct {
	mode BoundaryMode
	cval float64
}

// NewInterpolator creates a new interpolator
func NewInterpolator(mode BoundaryMode, cval float64) *Interpolator {
	return &Interpolator{
		mode: mode,
		cval: cval,
	}
}

// Interpolate performs linear interpolation at fractional index
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return interp.cval
	}

	i := int(math.Floor(index))
	frac := index - float64(i)

	lo := Sample(data, i, interp.mode, interp.cval)
	if frac == 0 {
		return lo
	}
	hi := Sample(data, i+1, interp.mode, interp.cval)
	return (1-frac)*lo + frac*hi
}

// ZoomLine resamples in onto out treating samples as pixel centers, so the
// outer edges of both arrays line up: out[j] reads in at
// (j+0.5)*len(in)/len(out) - 0.5.
func (interp *Interpolator) ZoomLine(in, out []float64) {
	if len(out) == 0 {
		return
	}
	scale := float64(len(in)) / float64(len(out))
	for j := range out {
		out[j] = interp.Interpolate(in, (float64(j)+0.5)*scale-0.5)
	}
}

// Zoom resamples g to shape one axis at a time.
func (interp *Interpolator) Zoom(g Grid, shape []int) (Grid, error) {
	if len(shape) != g.Dims() {
		return Grid{}, fmt.Errorf("%w: cannot zoom %dD grid to %dD shape %v",
			ErrInvalidGrid, g.Dims(), len(shape), shape)
	}

	out := g.Clone()
	for axis, n := range shape {
		if out.Shape[axis] == n {
			continue
		}
		var err error
		out, err = MapAxis(out, axis, n, interp.ZoomLine)
		if err != nil {
			return Grid{}, err
		}
	}
	return out, nil
}
