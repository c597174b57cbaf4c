package field

import (
	"fmt"
	"math"
)

// Dataset is the observation bundle handed to the renderers.
type Dataset struct {
	// Observed is the full evaluation set, paired 1:1 with Truth.
	Observed []Point
	Truth    []float64

	// Trained is the sparse subset supplied to the model during fitting,
	// paired 1:1 with TrainValues. It is not index-aligned with Observed.
	Trained     []Point
	TrainValues []float64
}

// Validate checks that each point set has one value per point.
func (d *Dataset) Validate() error {
	if len(d.Observed) != len(d.Truth) {
		return fmt.Errorf("observed points (%d) and ground truth values (%d) differ in length",
			len(d.Observed), len(d.Truth))
	}
	if len(d.Trained) != len(d.TrainValues) {
		return fmt.Errorf("training points (%d) and trained values (%d) differ in length",
			len(d.Trained), len(d.TrainValues))
	}
	return nil
}

// Extent returns the bounding box of every observed and trained point.
func (d *Dataset) Extent() (Domain, error) {
	if len(d.Observed) == 0 && len(d.Trained) == 0 {
		return Domain{}, fmt.Errorf("dataset has no points")
	}
	ext := Domain{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		TMin: math.Inf(1), TMax: math.Inf(-1),
	}
	grow := func(pts []Point) {
		for _, p := range pts {
			ext.XMin = math.Min(ext.XMin, p.X)
			ext.XMax = math.Max(ext.XMax, p.X)
			ext.TMin = math.Min(ext.TMin, p.T)
			ext.TMax = math.Max(ext.TMax, p.T)
		}
	}
	grow(d.Observed)
	grow(d.Trained)
	return ext, nil
}

// Slice is a 1D cut through the domain: the selected points and their values.
type Slice struct {
	Points []Point
	Values []float64
}

// Len returns the number of points in the slice.
func (s Slice) Len() int { return len(s.Points) }

// Xs returns the position of every point.
func (s Slice) Xs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.X
	}
	return out
}

// Ts returns the time of every point.
func (s Slice) Ts() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.T
	}
	return out
}

// SelectX keeps the points whose position equals x exactly, in their
// original order. values is indexed like points.
func SelectX(points []Point, values []float64, x float64) Slice {
	return selectWhere(points, values, func(p Point) bool { return p.X == x })
}

// SelectT keeps the points whose time equals t exactly, in their original
// order.
func SelectT(points []Point, values []float64, t float64) Slice {
	return selectWhere(points, values, func(p Point) bool { return p.T == t })
}

func selectWhere(points []Point, values []float64, keep func(Point) bool) Slice {
	var s Slice
	for i, p := range points {
		if !keep(p) {
			continue
		}
		s.Points = append(s.Points, p)
		if i < len(values) {
			s.Values = append(s.Values, values[i])
		}
	}
	return s
}
