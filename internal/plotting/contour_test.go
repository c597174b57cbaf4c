package plotting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fieldplot/internal/config"
	"github.com/banshee-data/fieldplot/internal/field"
	"github.com/banshee-data/fieldplot/internal/testutil"
)

func TestBand(t *testing.T) {
	levels := config.DefaultRenderConfig().Levels()

	tests := []struct {
		v    float64
		want int
	}{
		{-0.15, 0},
		{-0.1, 0},
		{0, 0},
		{0.01, 1},
		{0.5, 4},
		{1.04, 7},
		{-0.2, -1},
		{1.1, -1},
		{math.NaN(), -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Band(levels, tt.v), "Band(%g)", tt.v)
	}
	assert.Equal(t, -1, Band([]float64{0}, 0))
}

func TestBandedGrid_TransposesTimeOntoX(t *testing.T) {
	grid, err := field.NewGrid(field.Domain{XMin: 0, XMax: 0.5, TMin: 0, TMax: 1}, 3)
	require.NoError(t, err)
	z, err := grid.Predict(testutil.NewLinearPredictor())
	require.NoError(t, err)

	g := &bandedGrid{grid: grid, z: z, levels: []float64{0, 0.5, 1, 1.5}}
	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)
	assert.Equal(t, 1.0, g.X(2), "columns run along time")
	assert.Equal(t, 0.5, g.Y(2), "rows run along position")

	// (t=1, x=0.5) gives u=1.5, the top edge of the last band.
	assert.Equal(t, 2.0, g.Z(2, 2))
	// (t=0.5, x=0) gives u=0.5.
	assert.Equal(t, 0.0, g.Z(1, 0))
	assert.Equal(t, 2.0, g.Max())
}

func TestBandColors_MatchColorBarSampling(t *testing.T) {
	cm, err := boneColorMap(-0.15, 1.05)
	require.NoError(t, err)

	bands, err := bandColors(cm, 8)
	require.NoError(t, err)
	require.Len(t, bands, 8)

	// The lowest band is black; colours brighten upwards.
	r0, g0, b0, _ := bands[0].RGBA()
	r7, g7, b7, _ := bands[7].RGBA()
	assert.Less(t, r0+g0+b0, r7+g7+b7)
}

func TestLevelTicks(t *testing.T) {
	ticks := levelTicks([]float64{-0.15, -0.15 + 0.15, 0.15})
	require.Len(t, ticks, 3)
	assert.Equal(t, "-0.15", ticks[0].Label)
	assert.Equal(t, "0.00", ticks[1].Label)
	assert.Equal(t, "0.15", ticks[2].Label)
}

func TestDomainContour_PredictsWholeGridOnce(t *testing.T) {
	cfg, err := config.Parse([]byte("dpi: 24\nwidth_in: 3\nheight_in: 2\nfont_size: 8\ngrid_size: 30\nformats: [svg]\n"))
	require.NoError(t, err)

	model := testutil.NewLinearPredictor()
	r := New(cfg, nil)
	prefix := t.TempDir() + "/run"
	require.NoError(t, r.DomainContour(testutil.UnitDomain, model, prefix))
	assert.Equal(t, []int{900}, model.Rows())
}

func TestDomainContour_DegenerateDomain(t *testing.T) {
	cfg, err := config.Parse([]byte("grid_size: 4\nformats: [svg]\n"))
	require.NoError(t, err)
	err = New(cfg, nil).DomainContour(field.Domain{XMin: 1, XMax: 1, TMin: 0, TMax: 1}, testutil.NewLinearPredictor(), t.TempDir()+"/x")
	assert.ErrorContains(t, err, "empty position range")
}
