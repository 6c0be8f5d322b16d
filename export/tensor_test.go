package export_test

import (
	"testing"

	"github.com/jenshnielsen/nanotune/export"
	"github.com/jenshnielsen/nanotune/npy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensor_Layout(t *testing.T) {
	tensor := export.NewTensor(2, 3, 2)
	assert.Equal(t, []int{2, 3, 3}, tensor.Shape())

	copy(tensor.Row(1, 2), []float64{7, 8})
	tensor.SetLabel(2, 3)

	arr := tensor.Array()
	assert.Equal(t, []float64{0, 0, 3}, arr.Data[6:9])
	assert.Equal(t, []float64{7, 8, 3}, arr.Data[15:18])
	assert.Equal(t, []float64{0, 0, 3}, tensor.Labels())
}

func TestTensorFromArray(t *testing.T) {
	arr := npy.Array{Shape: []int{1, 2, 3}, Data: []float64{1, 2, 0, 3, 4, 1}}
	tensor, err := export.TensorFromArray(arr)
	require.NoError(t, err)
	assert.Equal(t, 2, tensor.Length())
	assert.Equal(t, []float64{3, 4}, tensor.Row(0, 1))
	assert.Equal(t, []float64{0, 1}, tensor.Labels())

	_, err = export.TensorFromArray(npy.Array{Shape: []int{6}, Data: arr.Data})
	require.ErrorIs(t, err, export.ErrShapeMismatch)

	_, err = export.TensorFromArray(npy.Array{Shape: []int{1, 2, 4}, Data: arr.Data})
	require.ErrorIs(t, err, export.ErrShapeMismatch)
}

func TestTensorFromArray_OverflowingShape(t *testing.T) {
	// 4 * 2^62 * 1 wraps to zero in int arithmetic
	arr := npy.Array{Shape: []int{4, 1 << 62, 1}, Data: nil}
	assert.NotPanics(t, func() {
		_, err := export.TensorFromArray(arr)
		assert.ErrorIs(t, err, export.ErrShapeMismatch)
		assert.ErrorIs(t, err, npy.ErrBadHeader)
	})
}
