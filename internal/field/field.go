// Package field holds the coordinate, dataset and predictor types for a
// one-dimensional field u(x, t), plus the slicing and grid logic the plots
// are built from.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a (position, time) coordinate.
type Point struct {
	X float64
	T float64
}

// Bounds describes the rectangular position x time domain of the dynamics.
type Bounds interface {
	MinX() float64
	MaxX() float64
	MinT() float64
	MaxT() float64
}

// Domain is a concrete Bounds.
type Domain struct {
	XMin, XMax float64
	TMin, TMax float64
}

func (d Domain) MinX() float64 { return d.XMin }
func (d Domain) MaxX() float64 { return d.XMax }
func (d Domain) MinT() float64 { return d.TMin }
func (d Domain) MaxT() float64 { return d.TMax }

// Validate rejects non-finite or empty ranges.
func (d Domain) Validate() error {
	for _, v := range []float64{d.XMin, d.XMax, d.TMin, d.TMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("domain bounds must be finite, got %+v", d)
		}
	}
	if d.XMax <= d.XMin {
		return fmt.Errorf("empty position range [%g, %g]", d.XMin, d.XMax)
	}
	if d.TMax <= d.TMin {
		return fmt.Errorf("empty time range [%g, %g]", d.TMin, d.TMax)
	}
	return nil
}

// DomainOf copies any Bounds into a Domain.
func DomainOf(b Bounds) Domain {
	return Domain{XMin: b.MinX(), XMax: b.MaxX(), TMin: b.MinT(), TMax: b.MaxT()}
}

// Predictor evaluates the model at a batch of coordinates. points has two
// columns (x, t); the first column of the result is u.
type Predictor interface {
	Predict(points mat.Matrix) (mat.Matrix, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(points mat.Matrix) (mat.Matrix, error)

// Predict calls f(points).
func (f PredictorFunc) Predict(points mat.Matrix) (mat.Matrix, error) {
	return f(points)
}

// Matrix packs points into an n x 2 matrix. It returns nil for no points
// since gonum does not allow zero-sized matrices.
func Matrix(points []Point) *mat.Dense {
	if len(points) == 0 {
		return nil
	}
	data := make([]float64, 0, 2*len(points))
	for _, p := range points {
		data = append(data, p.X, p.T)
	}
	return mat.NewDense(len(points), 2, data)
}

// Points unpacks the first two columns of m.
func Points(m mat.Matrix) []Point {
	if m == nil {
		return nil
	}
	r, _ := m.Dims()
	out := make([]Point, r)
	for i := range out {
		out[i] = Point{X: m.At(i, 0), T: m.At(i, 1)}
	}
	return out
}

// PredictValues queries p once with points and returns the first output
// column. No call is made for an empty point set.
func PredictValues(p Predictor, points []Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}
	out, err := p.Predict(Matrix(points))
	if err != nil {
		return nil, fmt.Errorf("predict %d points: %w", len(points), err)
	}
	return FirstColumn(out, len(points))
}

// FirstColumn extracts column 0 of a prediction, checking that it has one
// row per queried point.
func FirstColumn(out mat.Matrix, rows int) ([]float64, error) {
	if out == nil {
		return nil, fmt.Errorf("malformed model output: nil result for %d points", rows)
	}
	r, c := out.Dims()
	if r != rows || c < 1 {
		return nil, fmt.Errorf("malformed model output: got %dx%d for %d points", r, c, rows)
	}
	return mat.Col(nil, 0, out), nil
}
