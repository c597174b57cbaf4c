package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func linear() Predictor {
	return PredictorFunc(func(points mat.Matrix) (mat.Matrix, error) {
		r, _ := points.Dims()
		out := mat.NewDense(r, 1, nil)
		for i := 0; i < r; i++ {
			out.Set(i, 0, points.At(i, 0)+points.At(i, 1))
		}
		return out, nil
	})
}

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(Domain{XMin: 0, XMax: 1, TMin: 10, TMax: 20}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, g.X)
	assert.Equal(t, []float64{10, 15, 20}, g.T)
	assert.Equal(t, 9, g.Size())

	_, err = NewGrid(Domain{XMin: 0, XMax: 1, TMin: 0, TMax: 1}, 1)
	assert.Error(t, err)

	_, err = NewGrid(Domain{XMin: 0, XMax: 1, TMin: 3, TMax: 3}, 4)
	assert.ErrorContains(t, err, "empty time range")
}

func TestGridPoints_RowMajor(t *testing.T) {
	g, err := NewGrid(Domain{XMin: 0, XMax: 2, TMin: 0, TMax: 4}, 3)
	require.NoError(t, err)

	pts := Points(g.Points())
	require.Len(t, pts, 9)
	// First row of the mesh holds every x at the first time.
	assert.Equal(t, []Point{{0, 0}, {1, 0}, {2, 0}}, pts[:3])
	assert.Equal(t, Point{0, 2}, pts[3])
	assert.Equal(t, Point{2, 4}, pts[8])
}

func TestGridPredict_ReshapeIsLeftInverse(t *testing.T) {
	g, err := NewGrid(Domain{XMin: 0, XMax: 1, TMin: 0, TMax: 2}, 3)
	require.NoError(t, err)

	z, err := g.Predict(linear())
	require.NoError(t, err)

	r, c := z.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	for i, tv := range g.T {
		for j, xv := range g.X {
			assert.InDelta(t, xv+tv, z.At(i, j), 1e-12, "Z[%d][%d]", i, j)
		}
	}
}

func TestGridReshape_WrongLength(t *testing.T) {
	g, err := NewGrid(Domain{XMin: 0, XMax: 1, TMin: 0, TMax: 1}, 2)
	require.NoError(t, err)
	_, err = g.Reshape([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestGridPredict_MalformedOutput(t *testing.T) {
	g, err := NewGrid(Domain{XMin: 0, XMax: 1, TMin: 0, TMax: 1}, 2)
	require.NoError(t, err)
	_, err = g.Predict(PredictorFunc(func(mat.Matrix) (mat.Matrix, error) {
		return mat.NewDense(1, 1, nil), nil
	}))
	assert.ErrorContains(t, err, "malformed model output")
}
