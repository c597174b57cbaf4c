// Package predictor provides field.Predictor implementations backed by
// precomputed model output or by a model served over gRPC.
package predictor

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/fieldplot/internal/dataset"
	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/fsutil"
)

// Table answers queries from precomputed predictions, matching coordinates
// exactly.
type Table struct {
	points []field.Point
	values map[field.Point]float64
}

// NewTable builds a Table from paired points and values. A repeated point
// keeps its last value.
func NewTable(points []field.Point, values []float64) (*Table, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("table has %d points but %d values", len(points), len(values))
	}
	t := &Table{values: make(map[field.Point]float64, len(points))}
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.T) {
			return nil, fmt.Errorf("table row %d has a NaN coordinate", i)
		}
		if _, dup := t.values[p]; !dup {
			t.points = append(t.points, p)
		}
		t.values[p] = values[i]
	}
	return t, nil
}

// LoadTable reads x, t, u rows from a CSV file.
func LoadTable(fsys fsutil.FileSystem, path string) (*Table, error) {
	rows, err := dataset.ReadFloatRows(fsys, path, 3)
	if err != nil {
		return nil, err
	}
	points := make([]field.Point, len(rows))
	values := make([]float64, len(rows))
	for i, row := range rows {
		points[i] = field.Point{X: row[0], T: row[1]}
		values[i] = row[2]
	}
	t, err := NewTable(points, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("[predictor] loaded %d precomputed predictions from %s", t.Len(), path)
	return t, nil
}

// Len returns the number of distinct coordinates.
func (t *Table) Len() int { return len(t.points) }

// Lookup returns the stored prediction at p.
func (t *Table) Lookup(p field.Point) (float64, bool) {
	v, ok := t.values[p]
	return v, ok
}

// Predict implements field.Predictor. Every queried coordinate must be in
// the table.
func (t *Table) Predict(points mat.Matrix) (mat.Matrix, error) {
	r, c := points.Dims()
	if c < 2 {
		return nil, fmt.Errorf("query needs 2 columns, got %d", c)
	}
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		p := field.Point{X: points.At(i, 0), T: points.At(i, 1)}
		v, ok := t.values[p]
		if !ok {
			return nil, fmt.Errorf("no precomputed prediction at x=%g t=%g", p.X, p.T)
		}
		out.Set(i, 0, v)
	}
	return out, nil
}
