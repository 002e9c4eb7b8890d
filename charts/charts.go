// Package charts renders the bar charts produced by the visualize command.
package charts

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is one set of bars, aligned with Chart.Labels. Nil values are
// drawn as zero-height bars.
type Series struct {
	Label  string
	Values []*float64
}

// Chart describes a bar chart with one or more side-by-side series.
type Chart struct {
	Name   string // file name without extension
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Series []Series
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	return len(c.Labels) == 0 || len(c.Series) == 0
}

// Renderer saves charts as PNG files in a directory.
type Renderer struct {
	Dir      string
	Width    vg.Length
	Height   vg.Length
	BarWidth vg.Length
}

// NewRenderer returns a renderer writing into dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		Dir:      dir,
		Width:    8 * vg.Inch,
		Height:   5 * vg.Inch,
		BarWidth: vg.Points(18),
	}
}

// RenderAll saves every non-empty chart and returns the written paths in
// chart order.
func (r *Renderer) RenderAll(charts []Chart) ([]string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create figure directory: %w", err)
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		if c.Empty() {
			continue
		}
		path := filepath.Join(r.Dir, c.Name+".png")
		if err := r.Render(c, path); err != nil {
			return paths, fmt.Errorf("render %s: %w", c.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Render draws c and saves it to path. The image format follows the file
// extension.
func (r *Renderer) Render(c Chart, path string) error {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	n := len(c.Series)
	for i, s := range c.Series {
		bars, err := plotter.NewBarChart(barValues(s.Values, len(c.Labels)), r.BarWidth)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * r.BarWidth
		p.Add(bars)
		if s.Label != "" {
			p.Legend.Add(s.Label, bars)
		}
	}
	p.NominalX(c.Labels...)

	return p.Save(r.Width, r.Height, path)
}

func barValues(values []*float64, n int) plotter.Values {
	out := make(plotter.Values, n)
	for i := 0; i < n && i < len(values); i++ {
		if values[i] != nil {
			out[i] = *values[i]
		}
	}
	return out
}
