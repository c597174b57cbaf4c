package plotting

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/fieldplot/internal/field"
)

// colorbarFraction is the share of the figure width given to the colour bar.
const colorbarFraction = 0.22

// DomainContour samples the model on a grid_size x grid_size grid spanning
// the domain in one predictor call and draws the result as filled level
// bands, time on the horizontal axis and position on the vertical axis.
func (r *Renderer) DomainContour(b field.Bounds, model field.Predictor, prefix string) error {
	grid, err := field.NewGrid(b, r.cfg.GetGridSize())
	if err != nil {
		return fmt.Errorf("grid plot: %w", err)
	}
	z, err := grid.Predict(model)
	if err != nil {
		return fmt.Errorf("grid plot: %w", err)
	}

	levels := r.cfg.Levels()
	cm, err := boneColorMap(levels[0], levels[len(levels)-1])
	if err != nil {
		return fmt.Errorf("grid plot: %w", err)
	}
	bands, err := bandColors(cm, len(levels)-1)
	if err != nil {
		return fmt.Errorf("grid plot: %w", err)
	}

	fig := plot.New()
	r.styleAxes(fig)
	fig.X.Label.Text = r.cfg.GetTimeLabel()
	fig.Y.Label.Text = r.cfg.GetPositionLabel()

	hm := plotter.NewHeatMap(&bandedGrid{grid: grid, z: z, levels: levels}, bands)
	hm.Min, hm.Max = 0, float64(len(bands)-1)
	hm.NaN = color.Transparent
	hm.Rasterized = true
	fig.Add(hm)

	bar := plot.New()
	r.styleAxes(bar)
	bar.HideX()
	bar.Y.Label.Text = r.cfg.GetColorbarLabel()
	bar.Y.Tick.Marker = levelTicks(levels)
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: len(bands)})

	return r.save(prefix+GridSuffix, func(dc draw.Canvas) {
		barW := (dc.Max.X - dc.Min.X) * colorbarFraction
		fig.Draw(draw.Crop(dc, 0, -barW, 0, 0))
		bar.Draw(draw.Crop(dc, dc.Max.X-dc.Min.X-barW, 0, 0, 0))
	})
}

// Band returns the index of the level band holding v: band i covers
// (levels[i], levels[i+1]], with levels[0] itself in band 0. Values outside
// the levels, and NaN, return -1.
func Band(levels []float64, v float64) int {
	if len(levels) < 2 || math.IsNaN(v) || v < levels[0] || v > levels[len(levels)-1] {
		return -1
	}
	i := sort.SearchFloat64s(levels, v)
	if i == 0 {
		return 0
	}
	return i - 1
}

// bandedGrid presents the reshaped prediction as a plotter.GridXYZ of band
// indices. Column c is time sample c and row r is position sample r, which
// transposes the (time, position) layout of z.
type bandedGrid struct {
	grid   *field.Grid
	z      *mat.Dense
	levels []float64
}

func (g *bandedGrid) Dims() (c, r int) { return len(g.grid.T), len(g.grid.X) }
func (g *bandedGrid) X(c int) float64  { return g.grid.T[c] }
func (g *bandedGrid) Y(r int) float64  { return g.grid.X[r] }
func (g *bandedGrid) Min() float64     { return 0 }
func (g *bandedGrid) Max() float64     { return float64(len(g.levels) - 2) }

func (g *bandedGrid) Z(c, r int) float64 {
	band := Band(g.levels, g.z.At(c, r))
	if band < 0 {
		return math.NaN()
	}
	return float64(band)
}

// boneColorMap approximates matplotlib's "bone": black through blue-grey to
// white.
func boneColorMap(min, max float64) (palette.ColorMap, error) {
	cm, err := moreland.NewLuminance([]color.Color{
		color.NRGBA{R: 0, G: 0, B: 0, A: 255},
		color.NRGBA{R: 81, G: 81, B: 113, A: 255},
		color.NRGBA{R: 166, G: 199, B: 199, A: 255},
		color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	})
	if err != nil {
		return nil, fmt.Errorf("bone colour map: %w", err)
	}
	cm.SetMax(max)
	cm.SetMin(min)
	return cm, nil
}

// bandPalette is a fixed list of colours, one per level band.
type bandPalette []color.Color

func (p bandPalette) Colors() []color.Color { return p }

// bandColors samples cm at the lower edge of each of n equal bands, the same
// points plotter.ColorBar uses, so the map and its colour bar agree.
func bandColors(cm palette.ColorMap, n int) (bandPalette, error) {
	delta := (cm.Max() - cm.Min()) / float64(n)
	out := make(bandPalette, n)
	for i := range out {
		c, err := cm.At(cm.Min() + delta*float64(i))
		if err != nil {
			return nil, fmt.Errorf("band %d colour: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func levelTicks(levels []float64) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(levels))
	for i, l := range levels {
		// Avoid printing -0.00 for a level that is zero up to rounding.
		if math.Abs(l) < 1e-12 {
			l = 0
		}
		ticks[i] = plot.Tick{Value: l, Label: fmt.Sprintf("%.2f", l)}
	}
	return ticks
}

