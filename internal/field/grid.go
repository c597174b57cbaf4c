package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Grid is a uniform sampling of a Domain with the same number of samples
// on each axis.
type Grid struct {
	X []float64
	T []float64
}

// NewGrid spans [MinX, MaxX] x [MinT, MaxT] with n samples per axis.
func NewGrid(b Bounds, n int) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("grid needs at least 2 samples per axis, got %d", n)
	}
	if err := DomainOf(b).Validate(); err != nil {
		return nil, err
	}
	return &Grid{
		X: floats.Span(make([]float64, n), b.MinX(), b.MaxX()),
		T: floats.Span(make([]float64, n), b.MinT(), b.MaxT()),
	}, nil
}

// Size returns the number of flattened points.
func (g *Grid) Size() int { return len(g.X) * len(g.T) }

// Points flattens the grid row-major: row i*len(X)+j is (X[j], T[i]).
func (g *Grid) Points() *mat.Dense {
	nx := len(g.X)
	m := mat.NewDense(g.Size(), 2, nil)
	for i, t := range g.T {
		for j, x := range g.X {
			m.Set(i*nx+j, 0, x)
			m.Set(i*nx+j, 1, t)
		}
	}
	return m
}

// Reshape undoes Points: the result has one row per time sample and one
// column per position sample.
func (g *Grid) Reshape(values []float64) (*mat.Dense, error) {
	if len(values) != g.Size() {
		return nil, fmt.Errorf("cannot reshape %d values onto a %dx%d grid", len(values), len(g.T), len(g.X))
	}
	data := make([]float64, len(values))
	copy(data, values)
	return mat.NewDense(len(g.T), len(g.X), data), nil
}

// Predict evaluates p over the whole grid in a single call.
func (g *Grid) Predict(p Predictor) (*mat.Dense, error) {
	out, err := p.Predict(g.Points())
	if err != nil {
		return nil, fmt.Errorf("predict %d grid points: %w", g.Size(), err)
	}
	values, err := FirstColumn(out, g.Size())
	if err != nil {
		return nil, err
	}
	return g.Reshape(values)
}
