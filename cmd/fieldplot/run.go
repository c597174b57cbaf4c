package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/fieldplot/internal/config"
	"github.com/banshee-data/fieldplot/internal/dataset"
	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/fsutil"
	"github.com/banshee-data/fieldplot/internal/plotting"
	"github.com/banshee-data/fieldplot/internal/predictor"
)

// plotKind selects which figures a subcommand renders.
type plotKind int

const (
	plotAll plotKind = iota
	plotCell
	plotArray
	plotGrid
)

func (k plotKind) needsData() bool { return k != plotGrid }

type options struct {
	dataPath     string
	runName      string
	modelSpec    string
	modelTimeout time.Duration
	configPath   string
	outDir       string
	prefix       string
	minX, maxX   float64
	minT, maxT   float64
	listen       string

	fs fsutil.FileSystem
}

func (o *options) bindPersistent(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.dataPath, "data", "", "dataset: CSV directory or SQLite file (.db, .sqlite)")
	f.StringVar(&o.runName, "run", "", "run name inside a SQLite dataset (default: the only run)")
	f.StringVar(&o.modelSpec, "model", "", "predictor: table:<csv>, lattice:<csv> or grpc:<addr>")
	f.DurationVar(&o.modelTimeout, "model-timeout", 30*time.Second, "per-call timeout for grpc predictors")
	f.StringVar(&o.configPath, "config", "", "render config file (.yaml, .yml or .json)")
	f.StringVar(&o.outDir, "out", "plots", "output directory, created if missing")
	f.StringVar(&o.prefix, "prefix", "/fig", "figure name prefix; a leading separator is dropped")
	f.Float64Var(&o.minX, "min-x", 0, "domain minimum position (default: dataset extent)")
	f.Float64Var(&o.maxX, "max-x", 0, "domain maximum position (default: dataset extent)")
	f.Float64Var(&o.minT, "min-t", 0, "domain minimum time (default: dataset extent)")
	f.Float64Var(&o.maxT, "max-t", 0, "domain maximum time (default: dataset extent)")
}

func (o *options) filesystem() fsutil.FileSystem {
	if o.fs == nil {
		return fsutil.OSFileSystem{}
	}
	return o.fs
}

// run loads every input the selected figures need and renders them.
func (o *options) run(cmd *cobra.Command, kind plotKind) error {
	cfg := config.DefaultRenderConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	var ds *field.Dataset
	if kind.needsData() {
		var err error
		if ds, err = o.loadDataset(cmd.Context()); err != nil {
			return err
		}
	}

	model, closeModel, err := o.openModel()
	if err != nil {
		return err
	}
	defer closeModel()

	bounds, err := o.resolveBounds(cmd, ds, model)
	if err != nil {
		return err
	}

	fsys := o.filesystem()
	if err := fsys.MkdirAll(o.outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	r := plotting.New(cfg, fsys).In(o.outDir)
	prefix := plotting.TrimLeadingSeparator(o.prefix)

	log.Printf("[plots] domain x=[%g, %g] t=[%g, %g], writing to %s",
		bounds.XMin, bounds.XMax, bounds.TMin, bounds.TMax, o.outDir)

	switch kind {
	case plotCell:
		return r.CellTimeSeries(ds, bounds, model, prefix)
	case plotArray:
		return r.SpatialSnapshot(ds, bounds, model, prefix)
	case plotGrid:
		return r.DomainContour(bounds, model, prefix)
	default:
		return r.RenderAll(ds, bounds, model, o.prefix)
	}
}

func (o *options) loadDataset(ctx context.Context) (*field.Dataset, error) {
	if o.dataPath == "" {
		return nil, fmt.Errorf("--data is required")
	}
	switch strings.ToLower(filepath.Ext(o.dataPath)) {
	case ".db", ".sqlite", ".sqlite3":
		store, err := dataset.Open(o.dataPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		run := o.runName
		if run == "" {
			runs, err := store.Runs(ctx)
			if err != nil {
				return nil, err
			}
			if len(runs) != 1 {
				return nil, fmt.Errorf("%s holds %d runs %v; choose one with --run", o.dataPath, len(runs), runs)
			}
			run = runs[0]
		}
		return store.Load(ctx, run)
	default:
		return dataset.LoadCSV(o.filesystem(), o.dataPath)
	}
}

// openModel parses --model. The returned close function is always non-nil.
func (o *options) openModel() (field.Predictor, func(), error) {
	noop := func() {}
	kind, arg, ok := strings.Cut(o.modelSpec, ":")
	if !ok || arg == "" {
		return nil, noop, fmt.Errorf("--model must be table:<csv>, lattice:<csv> or grpc:<addr>, got %q", o.modelSpec)
	}

	switch kind {
	case "table":
		t, err := predictor.LoadTable(o.filesystem(), arg)
		return t, noop, err
	case "lattice":
		t, err := predictor.LoadTable(o.filesystem(), arg)
		if err != nil {
			return nil, noop, err
		}
		l, err := predictor.NewLattice(t)
		return l, noop, err
	case "grpc":
		r, err := predictor.Dial(arg, o.modelTimeout)
		if err != nil {
			return nil, noop, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown predictor kind %q", kind)
	}
}

// resolveBounds starts from the dataset extent, or the lattice extent when
// there is no dataset, and applies any bound given on the command line.
func (o *options) resolveBounds(cmd *cobra.Command, ds *field.Dataset, model field.Predictor) (field.Domain, error) {
	var d field.Domain
	switch {
	case ds != nil:
		ext, err := ds.Extent()
		if err != nil {
			return d, err
		}
		d = ext
	default:
		if l, ok := model.(*predictor.Lattice); ok {
			d = l.Bounds()
		}
	}

	flags := cmd.Flags()
	if flags.Changed("min-x") {
		d.XMin = o.minX
	}
	if flags.Changed("max-x") {
		d.XMax = o.maxX
	}
	if flags.Changed("min-t") {
		d.TMin = o.minT
	}
	if flags.Changed("max-t") {
		d.TMax = o.maxT
	}

	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("domain bounds: %w (set --min-x/--max-x/--min-t/--max-t)", err)
	}
	return d, nil
}
