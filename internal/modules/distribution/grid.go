// Package distribution provides sampled spatial distributions over one or
// more real coordinate axes, and the builders that populate them from a
// quantum state.
package distribution

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Grid is a distribution sampled over the Cartesian product of its axis
// vectors. Data is stored row-major: the last axis varies fastest.
//
// A Grid is immutable once handed out. Builders install new data by
// creating a new Grid that shares the (read-only) axes of the old one.
type Grid struct {
	data   []float64
	shape  []int
	axes   [][]float64
	labels []string
}

// NewGrid creates a grid with the given axes and labels and no data.
func NewGrid(axes [][]float64, labels []string) (*Grid, error) {
	if len(axes) != len(labels) {
		return nil, fmt.Errorf("%w: %d axes but %d labels", ErrShapeMismatch, len(axes), len(labels))
	}

	g := &Grid{
		shape:  make([]int, len(axes)),
		axes:   make([][]float64, len(axes)),
		labels: make([]string, len(labels)),
	}
	for i, axis := range axes {
		if len(axis) == 0 {
			return nil, fmt.Errorf("%w: axis %d is empty", ErrShapeMismatch, i)
		}
		g.axes[i] = append([]float64(nil), axis...)
		g.shape[i] = len(axis)
	}
	copy(g.labels, labels)

	return g, nil
}

// NewGridWithData creates a grid and installs data in one step.
// data must hold exactly prod(len(axes[i])) samples, row-major.
func NewGridWithData(data []float64, axes [][]float64, labels []string) (*Grid, error) {
	g, err := NewGrid(axes, labels)
	if err != nil {
		return nil, err
	}
	return g.withData(append([]float64(nil), data...))
}

// withData returns a copy of g holding data. The slice is adopted, not copied.
func (g *Grid) withData(data []float64) (*Grid, error) {
	if n := g.size(); len(data) != n {
		return nil, fmt.Errorf("%w: got %d samples for shape %v (want %d)", ErrShapeMismatch, len(data), g.shape, n)
	}
	return &Grid{
		data:   data,
		shape:  g.shape,
		axes:   g.axes,
		labels: g.labels,
	}, nil
}

func (g *Grid) size() int {
	n := 1
	for _, s := range g.shape {
		n *= s
	}
	return n
}

// Rank returns the number of axes.
func (g *Grid) Rank() int { return len(g.shape) }

// Shape returns the number of samples along each axis.
func (g *Grid) Shape() []int { return append([]int(nil), g.shape...) }

// HasData reports whether a builder has populated the grid.
func (g *Grid) HasData() bool { return g != nil && g.data != nil }

// Data returns a copy of the samples in row-major order, or nil if unset.
func (g *Grid) Data() []float64 {
	if g.data == nil {
		return nil
	}
	return append([]float64(nil), g.data...)
}

// AxisVector returns a copy of the coordinates of axis i.
func (g *Grid) AxisVector(i int) []float64 { return append([]float64(nil), g.axes[i]...) }

// AxisVectors returns copies of all axis coordinate vectors.
func (g *Grid) AxisVectors() [][]float64 {
	out := make([][]float64, len(g.axes))
	for i := range g.axes {
		out[i] = g.AxisVector(i)
	}
	return out
}

// AxisLabel returns the display label of axis i.
func (g *Grid) AxisLabel(i int) string { return g.labels[i] }

// Labels returns a copy of the axis labels.
func (g *Grid) Labels() []string { return append([]string(nil), g.labels...) }

// At returns the sample at the given per-axis indices.
func (g *Grid) At(idx ...int) float64 {
	if len(idx) != len(g.shape) {
		panic(fmt.Sprintf("distribution: %d indices for rank %d grid", len(idx), len(g.shape)))
	}
	off := 0
	for i, k := range idx {
		if k < 0 || k >= g.shape[i] {
			panic(fmt.Sprintf("distribution: index %d out of range on axis %d (size %d)", k, i, g.shape[i]))
		}
		off = off*g.shape[i] + k
	}
	return g.data[off]
}

// Scalar returns the single value of a rank-0 grid, as produced by reducing
// a rank-1 grid.
func (g *Grid) Scalar() (float64, error) {
	if g.Rank() != 0 {
		return 0, fmt.Errorf("%w: scalar requested from rank %d grid", ErrShapeMismatch, g.Rank())
	}
	if g.data == nil {
		return 0, ErrNoData
	}
	return g.data[0], nil
}

// Matrix returns a rank-2 grid as a dense matrix with rows along axis 0.
// The matrix owns a copy of the data.
func (g *Grid) Matrix() (*mat.Dense, error) {
	if g.Rank() != 2 {
		return nil, fmt.Errorf("%w: matrix view needs rank 2, got %d", ErrShapeMismatch, g.Rank())
	}
	if g.data == nil {
		return nil, ErrNoData
	}
	return mat.NewDense(g.shape[0], g.shape[1], g.Data()), nil
}

// MaxAbs returns the largest absolute sample value, or 0 for an empty grid.
func (g *Grid) MaxAbs() float64 {
	m := 0.0
	for _, v := range g.data {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// Marginal averages the samples along axis and returns the reduced grid.
// The mean is a plain Riemann average over the samples; it is not rescaled
// by the axis spacing.
func (g *Grid) Marginal(axis int) (*Grid, error) {
	return g.reduce(axis, func(column []float64) float64 {
		return stat.Mean(column, nil)
	})
}

// Project takes the maximum along axis and returns the reduced grid.
func (g *Grid) Project(axis int) (*Grid, error) {
	return g.reduce(axis, floats.Max)
}

func (g *Grid) reduce(axis int, fn func(column []float64) float64) (*Grid, error) {
	if axis < 0 || axis >= g.Rank() {
		return nil, fmt.Errorf("%w: axis %d not in [0, %d)", ErrInvalidAxis, axis, g.Rank())
	}
	if g.data == nil {
		return nil, ErrNoData
	}

	outer := 1
	for _, s := range g.shape[:axis] {
		outer *= s
	}
	inner := 1
	for _, s := range g.shape[axis+1:] {
		inner *= s
	}
	n := g.shape[axis]

	out := make([]float64, outer*inner)
	column := make([]float64, n)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			for k := 0; k < n; k++ {
				column[k] = g.data[(o*n+k)*inner+in]
			}
			out[o*inner+in] = fn(column)
		}
	}

	axes := make([][]float64, 0, g.Rank()-1)
	labels := make([]string, 0, g.Rank()-1)
	for i := range g.axes {
		if i == axis {
			continue
		}
		axes = append(axes, g.axes[i])
		labels = append(labels, g.labels[i])
	}

	reduced, err := NewGrid(axes, labels)
	if err != nil {
		return nil, err
	}
	return reduced.withData(out)
}
