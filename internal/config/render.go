package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RenderConfig holds the figure settings shared by every plot. Fields are
// pointers so a partial file only overrides what it names; the Get*
// methods supply defaults for the rest. JSON files decode through the
// same path since JSON is valid YAML.
type RenderConfig struct {
	// Output
	DPI      *float64 `yaml:"dpi,omitempty"`
	WidthIn  *float64 `yaml:"width_in,omitempty"`
	HeightIn *float64 `yaml:"height_in,omitempty"`
	Formats  []string `yaml:"formats,omitempty"` // png, svg, pdf

	// Styling
	FontSize        *float64 `yaml:"font_size,omitempty"`         // points
	LineWidth       *float64 `yaml:"line_width,omitempty"`        // points
	CellMarkerArea  *float64 `yaml:"cell_marker_area,omitempty"`  // points^2
	ArrayMarkerArea *float64 `yaml:"array_marker_area,omitempty"` // points^2

	// Line plots
	ValueMin         *float64 `yaml:"value_min,omitempty"`
	ValueMax         *float64 `yaml:"value_max,omitempty"`
	CellFraction     *float64 `yaml:"cell_fraction,omitempty"`     // of max x
	SnapshotFraction *float64 `yaml:"snapshot_fraction,omitempty"` // of max t

	// Contour plot
	GridSize   *int     `yaml:"grid_size,omitempty"`
	LevelStart *float64 `yaml:"level_start,omitempty"`
	LevelStep  *float64 `yaml:"level_step,omitempty"`
	LevelStop  *float64 `yaml:"level_stop,omitempty"` // exclusive

	// Labels
	TimeLabel     *string `yaml:"time_label,omitempty"`
	PositionLabel *string `yaml:"position_label,omitempty"`
	ValueLabel    *string `yaml:"value_label,omitempty"`
	ColorbarLabel *string `yaml:"colorbar_label,omitempty"`
}

var knownFormats = map[string]bool{"png": true, "svg": true, "pdf": true}

// DefaultRenderConfig returns a config with every field unset.
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{}
}

// Load reads a RenderConfig from a .yaml, .yml or .json file.
func Load(path string) (*RenderConfig, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("config file must have .yaml, .yml or .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a RenderConfig document.
func Parse(data []byte) (*RenderConfig, error) {
	cfg := DefaultRenderConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set, after defaulting.
func (c *RenderConfig) Validate() error {
	positive := map[string]float64{
		"dpi":               c.GetDPI(),
		"width_in":          c.GetWidthIn(),
		"height_in":         c.GetHeightIn(),
		"font_size":         c.GetFontSize(),
		"line_width":        c.GetLineWidth(),
		"cell_marker_area":  c.GetCellMarkerArea(),
		"array_marker_area": c.GetArrayMarkerArea(),
		"level_step":        c.GetLevelStep(),
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be positive and finite, got %g", name, v)
		}
	}

	if n := c.GetGridSize(); n < 2 {
		return fmt.Errorf("grid_size must be at least 2, got %d", n)
	}

	if lo, hi := c.GetValueMin(), c.GetValueMax(); !(lo < hi) {
		return fmt.Errorf("value_min (%g) must be below value_max (%g)", lo, hi)
	}

	for name, v := range map[string]float64{
		"cell_fraction":     c.GetCellFraction(),
		"snapshot_fraction": c.GetSnapshotFraction(),
		"level_start":       c.GetLevelStart(),
		"level_stop":        c.GetLevelStop(),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %g", name, v)
		}
	}

	if n := len(c.Levels()); n < 3 {
		return fmt.Errorf("contour levels must give at least 2 bands, got %d levels", n)
	}

	for _, f := range c.GetFormats() {
		if !knownFormats[f] {
			return fmt.Errorf("unsupported output format %q", f)
		}
	}

	return nil
}

// Levels returns the contour level edges from level_start up to but not
// including level_stop, spaced by level_step.
func (c *RenderConfig) Levels() []float64 {
	start, step, stop := c.GetLevelStart(), c.GetLevelStep(), c.GetLevelStop()
	if !(step > 0) || !(stop > start) {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = start + float64(i)*step
	}
	return levels
}

// GetDPI returns the raster resolution or the default.
func (c *RenderConfig) GetDPI() float64 { return getFloat(c.DPI, 500) }

// GetWidthIn returns the figure width in inches or the default.
func (c *RenderConfig) GetWidthIn() float64 { return getFloat(c.WidthIn, 6.4) }

// GetHeightIn returns the figure height in inches or the default.
func (c *RenderConfig) GetHeightIn() float64 { return getFloat(c.HeightIn, 4.8) }

// GetFontSize returns the font size in points or the default.
func (c *RenderConfig) GetFontSize() float64 { return getFloat(c.FontSize, 20) }

// GetLineWidth returns the curve width in points or the default.
func (c *RenderConfig) GetLineWidth() float64 { return getFloat(c.LineWidth, 3) }

// GetCellMarkerArea returns the cell plot marker area in points^2 or the
// default.
func (c *RenderConfig) GetCellMarkerArea() float64 { return getFloat(c.CellMarkerArea, 50) }

// GetArrayMarkerArea returns the array plot marker area in points^2 or the
// default.
func (c *RenderConfig) GetArrayMarkerArea() float64 { return getFloat(c.ArrayMarkerArea, 26) }

// MarkerRadius converts a marker area in points^2 to a glyph radius, so the
// glyph is sqrt(area) points across.
func MarkerRadius(area float64) float64 { return math.Sqrt(area) / 2 }

// GetValueMin returns the lower y limit of the line plots or the default.
func (c *RenderConfig) GetValueMin() float64 { return getFloat(c.ValueMin, -0.2) }

// GetValueMax returns the upper y limit of the line plots or the default.
func (c *RenderConfig) GetValueMax() float64 { return getFloat(c.ValueMax, 1.2) }

// GetCellFraction returns the fraction of max x used for the cell plot.
func (c *RenderConfig) GetCellFraction() float64 { return getFloat(c.CellFraction, 0.75) }

// GetSnapshotFraction returns the fraction of max t used for the array plot.
func (c *RenderConfig) GetSnapshotFraction() float64 { return getFloat(c.SnapshotFraction, 0.5) }

// GetGridSize returns the contour samples per axis or the default.
func (c *RenderConfig) GetGridSize() int {
	if c.GridSize == nil {
		return 200
	}
	return *c.GridSize
}

// GetLevelStart returns the lowest contour level or the default.
func (c *RenderConfig) GetLevelStart() float64 { return getFloat(c.LevelStart, -0.15) }

// GetLevelStep returns the contour level spacing or the default.
func (c *RenderConfig) GetLevelStep() float64 { return getFloat(c.LevelStep, 0.15) }

// GetLevelStop returns the exclusive upper contour bound or the default.
func (c *RenderConfig) GetLevelStop() float64 { return getFloat(c.LevelStop, 1.06) }

// GetFormats returns the output formats, lower-cased, or png and svg.
func (c *RenderConfig) GetFormats() []string {
	if len(c.Formats) == 0 {
		return []string{"png", "svg"}
	}
	out := make([]string, len(c.Formats))
	for i, f := range c.Formats {
		out[i] = strings.ToLower(strings.TrimPrefix(f, "."))
	}
	return out
}

// GetTimeLabel returns the time axis label or the default.
func (c *RenderConfig) GetTimeLabel() string { return getString(c.TimeLabel, "t (TU)") }

// GetPositionLabel returns the position axis label or the default.
func (c *RenderConfig) GetPositionLabel() string { return getString(c.PositionLabel, "x (mm)") }

// GetValueLabel returns the value axis label or the default.
func (c *RenderConfig) GetValueLabel() string { return getString(c.ValueLabel, "u (AU)") }

// GetColorbarLabel returns the colour bar label or the default.
func (c *RenderConfig) GetColorbarLabel() string { return getString(c.ColorbarLabel, "U (AU)") }

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
