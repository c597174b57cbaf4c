package predictor

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/fieldplot/internal/field"
)

// Lattice interpolates bilinearly between predictions stored on a full
// rectangular lattice. Queries outside the lattice take the nearest edge
// value.
type Lattice struct {
	xs, ts []float64
	z      *mat.Dense // row i is ts[i], column j is xs[j]
}

// NewLattice checks that table covers every (x, t) combination of its
// distinct coordinates, with at least two of each.
func NewLattice(table *Table) (*Lattice, error) {
	xs := distinct(table.points, func(p field.Point) float64 { return p.X })
	ts := distinct(table.points, func(p field.Point) float64 { return p.T })
	if len(xs) < 2 || len(ts) < 2 {
		return nil, fmt.Errorf("lattice needs at least 2 positions and 2 times, got %d and %d", len(xs), len(ts))
	}
	if want := len(xs) * len(ts); table.Len() != want {
		return nil, fmt.Errorf("predictions do not form a full lattice: %d points for %d x %d", table.Len(), len(xs), len(ts))
	}

	z := mat.NewDense(len(ts), len(xs), nil)
	for i, t := range ts {
		for j, x := range xs {
			v, ok := table.Lookup(field.Point{X: x, T: t})
			if !ok {
				return nil, fmt.Errorf("lattice is missing x=%g t=%g", x, t)
			}
			z.Set(i, j, v)
		}
	}
	return &Lattice{xs: xs, ts: ts, z: z}, nil
}

// Bounds returns the domain covered by the lattice.
func (l *Lattice) Bounds() field.Domain {
	return field.Domain{
		XMin: l.xs[0], XMax: l.xs[len(l.xs)-1],
		TMin: l.ts[0], TMax: l.ts[len(l.ts)-1],
	}
}

// Predict implements field.Predictor.
func (l *Lattice) Predict(points mat.Matrix) (mat.Matrix, error) {
	r, c := points.Dims()
	if c < 2 {
		return nil, fmt.Errorf("query needs 2 columns, got %d", c)
	}
	out := mat.NewDense(r, 1, nil)
	for k := 0; k < r; k++ {
		j, fx := locate(l.xs, points.At(k, 0))
		i, ft := locate(l.ts, points.At(k, 1))
		v := (1-fx)*(1-ft)*l.z.At(i, j) +
			fx*(1-ft)*l.z.At(i, j+1) +
			(1-fx)*ft*l.z.At(i+1, j) +
			fx*ft*l.z.At(i+1, j+1)
		out.Set(k, 0, v)
	}
	return out, nil
}

// locate returns the cell index i and fraction f such that v lies f of the
// way from axis[i] to axis[i+1], clamped to the axis ends.
func locate(axis []float64, v float64) (int, float64) {
	n := len(axis)
	if !(v > axis[0]) {
		return 0, 0
	}
	if v >= axis[n-1] {
		return n - 2, 1
	}
	i := sort.SearchFloat64s(axis, v) - 1
	return i, (v - axis[i]) / (axis[i+1] - axis[i])
}

func distinct(points []field.Point, key func(field.Point) float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, p := range points {
		k := key(p)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Float64s(out)
	return out
}
