package common

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidGrid = errors.New("invalid grid")

// Grid is a dense row-major n-dimensional array of float64.
type Grid struct {
	Shape  []int     `json:"shape"`
	Values []float64 `json:"values"`
}

// NewGrid validates shape against the number of values.
func NewGrid(shape []int, values []float64) (Grid, error) {
	g := Grid{Shape: slices.Clone(shape), Values: values}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Zeros returns a zero-filled grid of the given shape.
func Zeros(shape []int) Grid {
	return Grid{Shape: slices.Clone(shape), Values: make([]float64, ShapeSize(shape))}
}

// FromRows builds a 2D grid from equally long rows.
func FromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, fmt.Errorf("%w: no rows", ErrInvalidGrid)
	}
	cols := len(rows[0])
	values := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidGrid, i, len(row), cols)
		}
		values = append(values, row...)
	}
	return Grid{Shape: []int{len(rows), cols}, Values: values}, nil
}

// ShapeSize is the number of elements of shape.
func ShapeSize(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func (g Grid) Validate() error {
	if len(g.Shape) == 0 {
		return fmt.Errorf("%w: empty shape", ErrInvalidGrid)
	}
	for _, s := range g.Shape {
		if s <= 0 {
			return fmt.Errorf("%w: shape %v", ErrInvalidGrid, g.Shape)
		}
	}
	if ShapeSize(g.Shape) != len(g.Values) {
		return fmt.Errorf("%w: shape %v holds %d values, got %d",
			ErrInvalidGrid, g.Shape, ShapeSize(g.Shape), len(g.Values))
	}
	return nil
}

func (g Grid) Dims() int { return len(g.Shape) }

func (g Grid) Size() int { return len(g.Values) }

func (g Grid) Clone() Grid {
	return Grid{Shape: slices.Clone(g.Shape), Values: slices.Clone(g.Values)}
}

// Max returns the largest value; an empty grid yields 0.
func (g Grid) Max() float64 {
	if len(g.Values) == 0 {
		return 0
	}
	return floats.Max(g.Values)
}

// Min returns the smallest value; an empty grid yields 0.
func (g Grid) Min() float64 {
	if len(g.Values) == 0 {
		return 0
	}
	return floats.Min(g.Values)
}

// Flip reverses the grid along every axis, which for row-major storage is
// a reversal of the flat values.
func (g Grid) Flip() Grid {
	out := g.Clone()
	slices.Reverse(out.Values)
	return out
}

// Rows returns the rows of a 2D grid as views into Values.
func (g Grid) Rows() ([][]float64, error) {
	if g.Dims() != 2 {
		return nil, fmt.Errorf("%w: %dD grid has no rows", ErrInvalidGrid, g.Dims())
	}
	rows := make([][]float64, g.Shape[0])
	for i := range rows {
		rows[i] = g.Values[i*g.Shape[1] : (i+1)*g.Shape[1]]
	}
	return rows, nil
}
