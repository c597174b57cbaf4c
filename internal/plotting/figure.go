package plotting

import (
	"fmt"
	"log"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// save draws the figure once per configured format and writes each to
// base plus the format extension. Nothing is removed if a later format
// fails, so a partial set of files may remain.
func (r *Renderer) save(base string, drawFigure func(draw.Canvas)) error {
	w := vg.Length(r.cfg.GetWidthIn()) * vg.Inch
	h := vg.Length(r.cfg.GetHeightIn()) * vg.Inch

	for _, format := range r.cfg.GetFormats() {
		c, err := r.newCanvas(w, h, format)
		if err != nil {
			return fmt.Errorf("%s: %w", base, err)
		}
		drawFigure(draw.New(c))

		name := r.path(base + "." + format)
		f, err := r.fs.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := c.WriteTo(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		log.Printf("[plots] wrote %s", name)
	}
	return nil
}

// newCanvas returns a canvas for format. PNG is rasterised at the
// configured DPI; vector formats ignore it.
func (r *Renderer) newCanvas(w, h vg.Length, format string) (vg.CanvasWriterTo, error) {
	switch format {
	case "png":
		img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(int(r.cfg.GetDPI())))
		return vgimg.PngCanvas{Canvas: img}, nil
	case "svg", "pdf":
		return draw.NewFormattedCanvas(w, h, format)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
