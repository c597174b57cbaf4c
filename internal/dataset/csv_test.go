package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/fsutil"
)

func writeBundle(mfs *fsutil.MemoryFileSystem, dir string) {
	mfs.WriteFile(dir+"/"+ObservedFile, []byte("x,t\n0,0\n0.75,0.5\n1,1\n"))
	mfs.WriteFile(dir+"/"+TruthFile, []byte("u\n0.1\n0.2\n0.3\n"))
	mfs.WriteFile(dir+"/"+TrainedFile, []byte("# sparse subset\n0.75,0.5\n"))
	mfs.WriteFile(dir+"/"+TrainValuesFile, []byte("0.25,ignored\n"))
}

func TestLoadCSV(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	writeBundle(mfs, "/data")

	ds, err := LoadCSV(mfs, "/data")
	require.NoError(t, err)

	assert.Equal(t, []field.Point{{X: 0, T: 0}, {X: 0.75, T: 0.5}, {X: 1, T: 1}}, ds.Observed)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, ds.Truth)
	assert.Equal(t, []field.Point{{X: 0.75, T: 0.5}}, ds.Trained)
	assert.Equal(t, []float64{0.25}, ds.TrainValues)
}

func TestLoadCSV_MissingFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/data/"+ObservedFile, []byte("0,0\n"))

	_, err := LoadCSV(mfs, "/data")
	assert.ErrorContains(t, err, TruthFile)
}

func TestLoadCSV_LengthMismatch(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	writeBundle(mfs, "/data")
	mfs.WriteFile("/data/"+TruthFile, []byte("0.1\n"))

	_, err := LoadCSV(mfs, "/data")
	assert.ErrorContains(t, err, "differ in length")
}

func TestReadFloatRows_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()

	mfs.WriteFile("/bad.csv", []byte("0,0\n0,oops\n"))
	_, err := ReadFloatRows(mfs, "/bad.csv", 2)
	assert.ErrorContains(t, err, "/bad.csv:2")

	mfs.WriteFile("/narrow.csv", []byte("0\n"))
	_, err = ReadFloatRows(mfs, "/narrow.csv", 2)
	assert.ErrorContains(t, err, "want at least 2 columns")

	mfs.WriteFile("/empty.csv", nil)
	rows, err := ReadFloatRows(mfs, "/empty.csv", 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
