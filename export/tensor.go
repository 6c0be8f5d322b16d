package export

import (
	"fmt"

	"github.com/jenshnielsen/nanotune/npy"
)

// Tensor is the condensed training array of shape
// [channels, records, length+1]. The last column of every channel row
// holds the record's label.
type Tensor struct {
	channels int
	records  int
	length   int
	data     []float64
}

// NewTensor allocates a zeroed tensor.
func NewTensor(channels, records, length int) *Tensor {
	return &Tensor{
		channels: channels,
		records:  records,
		length:   length,
		data:     make([]float64, channels*records*(length+1)),
	}
}

// TensorFromArray wraps a loaded array; the data is shared.
func TensorFromArray(a npy.Array) (*Tensor, error) {
	if len(a.Shape) != 3 {
		return nil, fmt.Errorf("%w: tensor must be 3D, got shape %v", ErrShapeMismatch, a.Shape)
	}
	if a.Shape[2] < 1 {
		return nil, fmt.Errorf("%w: tensor shape %v lacks a label column", ErrShapeMismatch, a.Shape)
	}
	size, err := npy.Size(a.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	t := &Tensor{
		channels: a.Shape[0],
		records:  a.Shape[1],
		length:   a.Shape[2] - 1,
		data:     a.Data,
	}
	if len(t.data) != size {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d",
			ErrShapeMismatch, a.Shape, size, len(t.data))
	}
	return t, nil
}

func (t *Tensor) Channels() int { return t.channels }
func (t *Tensor) Records() int  { return t.records }

// Length is the number of data columns, excluding the label.
func (t *Tensor) Length() int { return t.length }

// Shape is the full array shape including the label column.
func (t *Tensor) Shape() []int {
	return []int{t.channels, t.records, t.length + 1}
}

func (t *Tensor) offset(channel, record int) int {
	return (channel*t.records + record) * (t.length + 1)
}

// Row returns a view of the data columns of one channel of one record.
func (t *Tensor) Row(channel, record int) []float64 {
	o := t.offset(channel, record)
	return t.data[o : o+t.length]
}

// Label returns the label of record.
func (t *Tensor) Label(record int) float64 {
	return t.data[t.offset(0, record)+t.length]
}

// SetLabel writes label into the last column of every channel of record.
func (t *Tensor) SetLabel(record int, label float64) {
	for c := 0; c < t.channels; c++ {
		t.data[t.offset(c, record)+t.length] = label
	}
}

// Labels returns all record labels in order.
func (t *Tensor) Labels() []float64 {
	out := make([]float64, t.records)
	for r := range out {
		out[r] = t.Label(r)
	}
	return out
}

// Array exposes the tensor for serialization without copying.
func (t *Tensor) Array() npy.Array {
	return npy.Array{Shape: t.Shape(), Data: t.data}
}
