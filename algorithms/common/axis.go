package common

import (
	"fmt"
	"slices"
)

// MapAxis applies fn to every 1D line of g along axis. fn receives a copy
// of the input line and fills an output line of length outLen; the result
// has g's shape with that axis resized to outLen.
func MapAxis(g Grid, axis, outLen int, fn func(in, out []float64)) (Grid, error) {
	if axis < 0 || axis >= g.Dims() {
		return Grid{}, fmt.Errorf("%w: axis %d of %dD grid", ErrInvalidGrid, axis, g.Dims())
	}
	if outLen <= 0 {
		return Grid{}, fmt.Errorf("%w: output length %d", ErrInvalidGrid, outLen)
	}

	inLen := g.Shape[axis]
	stride := 1
	for _, s := range g.Shape[axis+1:] {
		stride *= s
	}
	outer := 1
	for _, s := range g.Shape[:axis] {
		outer *= s
	}

	outShape := slices.Clone(g.Shape)
	outShape[axis] = outLen
	out := Zeros(outShape)

	in := make([]float64, inLen)
	res := make([]float64, outLen)
	for o := 0; o < outer; o++ {
		for s := 0; s < stride; s++ {
			base := o * inLen * stride
			for k := 0; k < inLen; k++ {
				in[k] = g.Values[base+k*stride+s]
			}
			clear(res)
			fn(in, res)
			outBase := o * outLen * stride
			for k := 0; k < outLen; k++ {
				out.Values[outBase+k*stride+s] = res[k]
			}
		}
	}
	return out, nil
}
