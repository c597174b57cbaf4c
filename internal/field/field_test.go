package field

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSelectX_ExactMatchPreservesOrder(t *testing.T) {
	d := Domain{XMin: 0, XMax: 2, TMin: 0, TMax: 1}
	cell := 0.75 * d.MaxX()

	points := []Point{{0, 0}, {cell, 0.5}, {1, 0}, {cell, 0.1}, {cell, 0.9}, {2, 0.1}}
	values := []float64{10, 11, 12, 13, 14, 15}

	got := SelectX(points, values, cell)

	want := Slice{
		Points: []Point{{cell, 0.5}, {cell, 0.1}, {cell, 0.9}},
		Values: []float64{11, 13, 14},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SelectX mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{0.5, 0.1, 0.9}, got.Ts())
}

func TestSelectX_NoNearestNeighbour(t *testing.T) {
	points := []Point{{0.7499999, 0}, {0.7500001, 1}}
	got := SelectX(points, []float64{1, 2}, 0.75)
	assert.Equal(t, 0, got.Len())
	assert.Empty(t, got.Xs())
}

func TestSelectT(t *testing.T) {
	points := []Point{{0, 0.5}, {0.1, 0.4}, {0.2, 0.5}}
	got := SelectT(points, []float64{1, 2, 3}, 0.5)
	assert.Equal(t, []float64{0, 0.2}, got.Xs())
	assert.Equal(t, []float64{1, 3}, got.Values)
}

func TestSelectX_TrainingMarkersOnlyFromTrainingSet(t *testing.T) {
	// Observed and trained sets are disjoint except for one point.
	observed := []Point{{1.5, 0}, {1.5, 1}, {1.5, 2}}
	trained := []Point{{0.5, 0}, {1.5, 1}, {0.5, 2}}

	obs := SelectX(observed, []float64{0, 1, 2}, 1.5)
	markers := SelectX(trained, []float64{7, 8, 9}, 1.5)

	assert.Equal(t, 3, obs.Len())
	require.Equal(t, 1, markers.Len())
	assert.Equal(t, Point{1.5, 1}, markers.Points[0])
	assert.Equal(t, []float64{8}, markers.Values)
}

func TestDomainValidate(t *testing.T) {
	assert.NoError(t, Domain{0, 1, 0, 1}.Validate())
	assert.Error(t, Domain{1, 1, 0, 1}.Validate())
	assert.Error(t, Domain{0, 1, 2, 1}.Validate())
}

func TestDatasetValidateAndExtent(t *testing.T) {
	ds := &Dataset{
		Observed:    []Point{{0, 0}, {2, 4}},
		Truth:       []float64{0, 1},
		Trained:     []Point{{-1, 1}},
		TrainValues: []float64{0.5},
	}
	require.NoError(t, ds.Validate())

	ext, err := ds.Extent()
	require.NoError(t, err)
	assert.Equal(t, Domain{XMin: -1, XMax: 2, TMin: 0, TMax: 4}, ext)

	ds.TrainValues = nil
	assert.Error(t, ds.Validate())

	_, err = (&Dataset{}).Extent()
	assert.Error(t, err)
}

func TestPredictValues(t *testing.T) {
	calls := 0
	p := PredictorFunc(func(points mat.Matrix) (mat.Matrix, error) {
		calls++
		r, c := points.Dims()
		assert.Equal(t, 2, c)
		out := mat.NewDense(r, 2, nil)
		for i := 0; i < r; i++ {
			out.Set(i, 0, points.At(i, 0)*10)
			out.Set(i, 1, -1)
		}
		return out, nil
	})

	got, err := PredictValues(p, []Point{{1, 0}, {2, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, got)

	got, err = PredictValues(p, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, calls, "empty slice must not reach the predictor")
}

func TestPredictValues_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := PredictValues(PredictorFunc(func(mat.Matrix) (mat.Matrix, error) {
		return nil, boom
	}), []Point{{0, 0}})
	assert.ErrorIs(t, err, boom)

	_, err = PredictValues(PredictorFunc(func(mat.Matrix) (mat.Matrix, error) {
		return mat.NewDense(3, 1, nil), nil
	}), []Point{{0, 0}})
	assert.ErrorContains(t, err, "malformed model output")
}

func TestMatrixRoundTrip(t *testing.T) {
	pts := []Point{{1, 2}, {3, 4}}
	m := Matrix(pts)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, pts, Points(m))
	assert.Nil(t, Matrix(nil))
}
