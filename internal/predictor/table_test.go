package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/fsutil"
)

func TestTable_Predict(t *testing.T) {
	table, err := NewTable(
		[]field.Point{{X: 0, T: 0}, {X: 0.75, T: 1}, {X: 0.75, T: 1}},
		[]float64{0.1, 0.2, 0.3},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	out, err := table.Predict(field.Matrix([]field.Point{{X: 0.75, T: 1}, {X: 0, T: 0}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.1}, mat.Col(nil, 0, out))

	_, err = table.Predict(field.Matrix([]field.Point{{X: 0.5, T: 1}}))
	assert.ErrorContains(t, err, "no precomputed prediction")
}

func TestNewTable_Mismatch(t *testing.T) {
	_, err := NewTable([]field.Point{{X: 0, T: 0}}, nil)
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/pred.csv", []byte("x,t,u,du\n0,0,0.5,9\n1,0,0.7,9\n"))

	table, err := LoadTable(mfs, "/pred.csv")
	require.NoError(t, err)
	v, ok := table.Lookup(field.Point{X: 1, T: 0})
	assert.True(t, ok)
	assert.Equal(t, 0.7, v)
}

func squareLattice(t *testing.T) *Lattice {
	t.Helper()
	// u = x + 10t on x in {0, 1, 2}, t in {0, 1}, rows deliberately shuffled.
	pts := []field.Point{{X: 2, T: 1}, {X: 0, T: 0}, {X: 1, T: 0}, {X: 2, T: 0}, {X: 0, T: 1}, {X: 1, T: 1}}
	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = p.X + 10*p.T
	}
	table, err := NewTable(pts, vals)
	require.NoError(t, err)
	l, err := NewLattice(table)
	require.NoError(t, err)
	return l
}

func TestLattice_BilinearIsExactForLinearFields(t *testing.T) {
	l := squareLattice(t)
	assert.Equal(t, field.Domain{XMin: 0, XMax: 2, TMin: 0, TMax: 1}, l.Bounds())

	queries := []field.Point{{X: 0, T: 0}, {X: 0.5, T: 0.25}, {X: 1.75, T: 0.5}, {X: 2, T: 1}}
	out, err := l.Predict(field.Matrix(queries))
	require.NoError(t, err)
	for i, q := range queries {
		assert.InDelta(t, q.X+10*q.T, out.At(i, 0), 1e-12, "query %v", q)
	}
}

func TestLattice_ClampsOutside(t *testing.T) {
	l := squareLattice(t)
	out, err := l.Predict(field.Matrix([]field.Point{{X: -5, T: -5}, {X: 9, T: 9}}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 12.0, out.At(1, 0))
}

func TestNewLattice_Incomplete(t *testing.T) {
	table, err := NewTable(
		[]field.Point{{X: 0, T: 0}, {X: 1, T: 0}, {X: 0, T: 1}},
		[]float64{0, 0, 0},
	)
	require.NoError(t, err)
	_, err = NewLattice(table)
	assert.ErrorContains(t, err, "full lattice")

	line, err := NewTable([]field.Point{{X: 0, T: 0}, {X: 1, T: 0}}, []float64{0, 0})
	require.NoError(t, err)
	_, err = NewLattice(line)
	assert.ErrorContains(t, err, "at least 2")
}
