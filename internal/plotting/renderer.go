// Package plotting renders model predictions against ground truth and
// training observations for a 1D spatiotemporal field.
//
// Three figures are produced per run: a time series at one position, a
// spatial profile at one instant, and a filled contour over the whole
// domain. Each figure is written once per configured format.
package plotting

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/fieldplot/internal/config"
	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/fsutil"
)

// File name suffixes appended to the caller's prefix, before the extension.
const (
	CellSuffix  = "_cell_plot_1D"
	ArraySuffix = "_array_plot_1D"
	GridSuffix  = "_grid_plot_1D"
)

// Renderer writes figures for one configuration to one filesystem. It holds
// no per-run state, so the render methods can be called in any order.
type Renderer struct {
	cfg *config.RenderConfig
	fs  fsutil.FileSystem
	dir string
}

// New creates a Renderer. A nil cfg uses the defaults and a nil fsys writes
// to the OS filesystem.
func New(cfg *config.RenderConfig, fsys fsutil.FileSystem) *Renderer {
	if cfg == nil {
		cfg = config.DefaultRenderConfig()
	}
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &Renderer{cfg: cfg, fs: fsys}
}

// In returns a copy of r that resolves figure names relative to dir.
func (r *Renderer) In(dir string) *Renderer {
	out := *r
	out.dir = dir
	return &out
}

// RenderAll draws the cell, array and grid figures in that order, stopping
// at the first failure. One leading path separator is removed from prefix
// and the result is used for all three figures.
func (r *Renderer) RenderAll(ds *field.Dataset, b field.Bounds, model field.Predictor, prefix string) error {
	prefix = TrimLeadingSeparator(prefix)

	if err := r.CellTimeSeries(ds, b, model, prefix); err != nil {
		return err
	}
	if err := r.SpatialSnapshot(ds, b, model, prefix); err != nil {
		return err
	}
	return r.DomainContour(b, model, prefix)
}

// CellTimeSeries plots u(t) at x = cell_fraction * MaxX. Only observation
// points whose position equals that value exactly are used; with none the
// curves are empty and the figure is still written.
func (r *Renderer) CellTimeSeries(ds *field.Dataset, b field.Bounds, model field.Predictor, prefix string) error {
	d, err := r.cellData(ds, b, model)
	if err != nil {
		return fmt.Errorf("cell plot: %w", err)
	}
	p, err := r.lineFigure(d)
	if err != nil {
		return fmt.Errorf("cell plot: %w", err)
	}
	return r.save(prefix+CellSuffix, drawLineFigure(p, d.legend))
}

// SpatialSnapshot plots u(x) at t = snapshot_fraction * MaxT, matching
// observation times exactly.
func (r *Renderer) SpatialSnapshot(ds *field.Dataset, b field.Bounds, model field.Predictor, prefix string) error {
	d, err := r.snapshotData(ds, b, model)
	if err != nil {
		return fmt.Errorf("array plot: %w", err)
	}
	p, err := r.lineFigure(d)
	if err != nil {
		return fmt.Errorf("array plot: %w", err)
	}
	return r.save(prefix+ArraySuffix, drawLineFigure(p, d.legend))
}

func (r *Renderer) cellData(ds *field.Dataset, b field.Bounds, model field.Predictor) (lineData, error) {
	if err := checkDataset(ds); err != nil {
		return lineData{}, err
	}

	cell := b.MaxX() * r.cfg.GetCellFraction()
	obs := field.SelectX(ds.Observed, ds.Truth, cell)
	trained := field.SelectX(ds.Trained, ds.TrainValues, cell)

	predicted, err := field.PredictValues(model, obs.Points)
	if err != nil {
		return lineData{}, fmt.Errorf("x=%g: %w", cell, err)
	}
	if obs.Len() == 0 {
		log.Printf("[plots] no observation points at x=%g; cell curves will be empty", cell)
	}

	return lineData{
		axis:         obs.Ts(),
		truth:        obs.Values,
		predicted:    predicted,
		markerAxis:   trained.Ts(),
		markers:      trained.Values,
		markerRadius: vg.Points(config.MarkerRadius(r.cfg.GetCellMarkerArea())),
		xLabel:       r.cfg.GetTimeLabel(),
		legend:       legendTopRight,
	}, nil
}

func (r *Renderer) snapshotData(ds *field.Dataset, b field.Bounds, model field.Predictor) (lineData, error) {
	if err := checkDataset(ds); err != nil {
		return lineData{}, err
	}

	instant := b.MaxT() * r.cfg.GetSnapshotFraction()
	obs := field.SelectT(ds.Observed, ds.Truth, instant)
	trained := field.SelectT(ds.Trained, ds.TrainValues, instant)

	predicted, err := field.PredictValues(model, obs.Points)
	if err != nil {
		return lineData{}, fmt.Errorf("t=%g: %w", instant, err)
	}
	if obs.Len() == 0 {
		log.Printf("[plots] no observation points at t=%g; array curves will be empty", instant)
	}

	return lineData{
		axis:         obs.Xs(),
		truth:        obs.Values,
		predicted:    predicted,
		markerAxis:   trained.Xs(),
		markers:      trained.Values,
		markerRadius: vg.Points(config.MarkerRadius(r.cfg.GetArrayMarkerArea())),
		xLabel:       r.cfg.GetPositionLabel(),
		legend:       legendBottomCenter,
	}, nil
}

// OutputNames lists the files RenderAll writes for prefix.
func (r *Renderer) OutputNames(prefix string) []string {
	prefix = TrimLeadingSeparator(prefix)
	var names []string
	for _, suffix := range []string{CellSuffix, ArraySuffix, GridSuffix} {
		for _, format := range r.cfg.GetFormats() {
			names = append(names, r.path(prefix+suffix+"."+format))
		}
	}
	return names
}

// TrimLeadingSeparator drops a single leading path separator, so "/run1"
// names files relative to the renderer's directory (or the working
// directory when none is set).
func TrimLeadingSeparator(prefix string) string {
	if strings.HasPrefix(prefix, "/") {
		return prefix[1:]
	}
	if os.PathSeparator != '/' && strings.HasPrefix(prefix, string(os.PathSeparator)) {
		return prefix[1:]
	}
	return prefix
}

func (r *Renderer) path(name string) string {
	if r.dir == "" {
		return name
	}
	return filepath.Join(r.dir, name)
}

func checkDataset(ds *field.Dataset) error {
	if ds == nil {
		return fmt.Errorf("no dataset")
	}
	return ds.Validate()
}
