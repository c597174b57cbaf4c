package plotting

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	truthColor     = color.RGBA{B: 255, A: 255}
	predictedColor = color.RGBA{R: 255, A: 255}
	markerColor    = color.Black
)

// lineData is one slice through the domain: ground truth and prediction
// share axis, training markers carry their own coordinates.
type lineData struct {
	axis      []float64
	truth     []float64
	predicted []float64

	markerAxis   []float64
	markers      []float64
	markerRadius vg.Length

	xLabel string
	legend legendPosition
}

type legendPosition int

const (
	legendTopRight legendPosition = iota
	legendBottomCenter
)

func xys(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, n)
	for i := range pts {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

// lineFigure draws ground truth dashed, the prediction solid on top of it
// and training observations as crosses on top of both. Empty series are
// left out; the y range is fixed regardless of the data.
func (r *Renderer) lineFigure(d lineData) (*plot.Plot, error) {
	p := plot.New()
	r.styleAxes(p)
	p.X.Label.Text = d.xLabel
	p.Y.Label.Text = r.cfg.GetValueLabel()

	lw := vg.Points(r.cfg.GetLineWidth())

	if pts := xys(d.axis, d.truth); len(pts) > 0 {
		gt, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		gt.Color = truthColor
		gt.Width = lw
		gt.Dashes = []vg.Length{4 * lw, 1.5 * lw}
		p.Add(gt)
		p.Legend.Add("GT", gt)
	}

	if pts := xys(d.axis, d.predicted); len(pts) > 0 {
		pred, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		pred.Color = predictedColor
		pred.Width = lw
		p.Add(pred)
		p.Legend.Add("Predicted", pred)
	}

	if pts := xys(d.markerAxis, d.markers); len(pts) > 0 {
		obs, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		obs.GlyphStyle.Shape = draw.CrossGlyph{}
		obs.GlyphStyle.Color = markerColor
		obs.GlyphStyle.Radius = d.markerRadius
		p.Add(obs)
		p.Legend.Add("Observed", obs)
	}

	p.Y.Min = r.cfg.GetValueMin()
	p.Y.Max = r.cfg.GetValueMax()

	pad := vg.Points(r.cfg.GetFontSize() / 2)
	p.Legend.Left = false
	switch d.legend {
	case legendBottomCenter:
		p.Legend.Top = false
		p.Legend.YOffs = pad
	default:
		p.Legend.Top = true
		p.Legend.XOffs = -pad
		p.Legend.YOffs = -pad
	}

	return p, nil
}

// drawLineFigure draws p, first centring a bottom legend horizontally over
// the data area, which depends on the canvas size.
func drawLineFigure(p *plot.Plot, pos legendPosition) func(draw.Canvas) {
	return func(c draw.Canvas) {
		if pos == legendBottomCenter {
			p.Legend.XOffs = centredLegendOffset(p, p.DataCanvas(c))
		}
		p.Draw(c)
	}
}

// centredLegendOffset is the XOffs that moves a right-aligned legend to the
// middle of dc.
func centredLegendOffset(p *plot.Plot, dc draw.Canvas) vg.Length {
	w := p.Legend.Rectangle(dc).Size().X
	return -(dc.Size().X - w) / 2
}

// styleAxes applies the configured font size to labels, ticks and legend.
func (r *Renderer) styleAxes(p *plot.Plot) {
	size := vg.Points(r.cfg.GetFontSize())
	p.X.Label.TextStyle.Font.Size = size
	p.Y.Label.TextStyle.Font.Size = size
	p.X.Tick.Label.Font.Size = size * 0.8
	p.Y.Tick.Label.Font.Size = size * 0.8
	p.Legend.TextStyle.Font.Size = size * 0.8
}
