// Package testutil provides predictor doubles and dataset fixtures shared by
// the package tests.
package testutil

import (
	"errors"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/fieldplot/internal/field"
)

// ErrPredict is returned by FailingPredictor.
var ErrPredict = errors.New("testutil: predict failed")

// RecordingPredictor evaluates Fn and remembers the row count of every
// query it receives.
type RecordingPredictor struct {
	Fn func(x, t float64) float64

	mu   sync.Mutex
	rows []int
}

// NewLinearPredictor returns a recorder for u = x + t.
func NewLinearPredictor() *RecordingPredictor {
	return &RecordingPredictor{Fn: func(x, t float64) float64 { return x + t }}
}

// Predict implements field.Predictor. The second output column holds -1 so
// callers that read beyond column 0 are caught.
func (p *RecordingPredictor) Predict(points mat.Matrix) (mat.Matrix, error) {
	r, _ := points.Dims()

	p.mu.Lock()
	p.rows = append(p.rows, r)
	p.mu.Unlock()

	out := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, p.Fn(points.At(i, 0), points.At(i, 1)))
		out.Set(i, 1, -1)
	}
	return out, nil
}

// Rows returns the row count of each call, in call order.
func (p *RecordingPredictor) Rows() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.rows...)
}

// FailingPredictor always returns ErrPredict.
type FailingPredictor struct{}

// Predict implements field.Predictor.
func (FailingPredictor) Predict(mat.Matrix) (mat.Matrix, error) {
	return nil, ErrPredict
}

// UnitDomain is [0, 1] x [0, 2].
var UnitDomain = field.Domain{XMin: 0, XMax: 1, TMin: 0, TMax: 2}

// LatticeDataset samples u = x + t on an n x n lattice of UnitDomain, so
// the cell (x = 0.75) and snapshot (t = 1) slices exist whenever n-1 is a
// multiple of 4. Every fourth lattice point is also a training point.
func LatticeDataset(t *testing.T, n int) *field.Dataset {
	t.Helper()
	if n < 2 {
		t.Fatalf("LatticeDataset needs n >= 2, got %d", n)
	}
	ds := &field.Dataset{}
	for i := 0; i < n; i++ {
		tv := UnitDomain.TMax * float64(i) / float64(n-1)
		for j := 0; j < n; j++ {
			xv := UnitDomain.XMax * float64(j) / float64(n-1)
			p := field.Point{X: xv, T: tv}
			ds.Observed = append(ds.Observed, p)
			ds.Truth = append(ds.Truth, xv+tv)
			if (i*n+j)%4 == 0 {
				ds.Trained = append(ds.Trained, p)
				ds.TrainValues = append(ds.TrainValues, xv+tv)
			}
		}
	}
	return ds
}
