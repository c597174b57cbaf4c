// Package dataset loads the observation bundle the plots are drawn from,
// either from a directory of CSV exports or from a SQLite database.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/fsutil"
)

// File names inside a CSV dataset directory.
const (
	ObservedFile    = "observe_x.csv"
	TruthFile       = "v.csv"
	TrainedFile     = "observe_train.csv"
	TrainValuesFile = "v_train.csv"
)

// LoadCSV reads the four CSV exports from dir. Point files have x and t
// in their first two columns; value files use the first column. A leading
// header row is skipped.
func LoadCSV(fsys fsutil.FileSystem, dir string) (*field.Dataset, error) {
	var ds field.Dataset
	var err error

	if ds.Observed, err = readPoints(fsys, filepath.Join(dir, ObservedFile)); err != nil {
		return nil, err
	}
	if ds.Truth, err = readValues(fsys, filepath.Join(dir, TruthFile)); err != nil {
		return nil, err
	}
	if ds.Trained, err = readPoints(fsys, filepath.Join(dir, TrainedFile)); err != nil {
		return nil, err
	}
	if ds.TrainValues, err = readValues(fsys, filepath.Join(dir, TrainValuesFile)); err != nil {
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dir, err)
	}
	log.Printf("[dataset] loaded %d observations and %d training points from %s",
		len(ds.Observed), len(ds.Trained), dir)
	return &ds, nil
}

func readPoints(fsys fsutil.FileSystem, path string) ([]field.Point, error) {
	rows, err := ReadFloatRows(fsys, path, 2)
	if err != nil {
		return nil, err
	}
	pts := make([]field.Point, len(rows))
	for i, row := range rows {
		pts[i] = field.Point{X: row[0], T: row[1]}
	}
	return pts, nil
}

func readValues(fsys fsutil.FileSystem, path string) ([]float64, error) {
	rows, err := ReadFloatRows(fsys, path, 1)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(rows))
	for i, row := range rows {
		vals[i] = row[0]
	}
	return vals, nil
}

// ReadFloatRows parses the first minCols columns of a CSV file as floats;
// further columns are ignored.
// Blank lines and # comments are ignored, and a first row that does not
// parse is treated as a header.
func ReadFloatRows(fsys fsutil.FileSystem, path string, minCols int) ([][]float64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	var rows [][]float64
	for first := true; ; first = false {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if len(rec) < minCols {
			return nil, fmt.Errorf("%s:%d: want at least %d columns, got %d", path, line, minCols, len(rec))
		}

		row := make([]float64, minCols)
		var parseErr error
		for i, s := range rec[:minCols] {
			if row[i], parseErr = strconv.ParseFloat(strings.TrimSpace(s), 64); parseErr != nil {
				break
			}
		}
		if parseErr != nil {
			if first {
				continue // header
			}
			return nil, fmt.Errorf("%s:%d: %w", path, line, parseErr)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
