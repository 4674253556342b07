// Package chart renders processed Z-scan results as PNG images and
// interactive HTML pages.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/zscan.report/internal/zscan"
)

// ErrNoData is returned when a result without samples is rendered.
var ErrNoData = errors.New("no samples to plot")

var (
	rawColor      = color.RGBA{B: 255, A: 255}
	smoothedColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	gridColor     = color.RGBA{R: 128, G: 128, B: 128, A: 178}
)

// Options controls the size of rendered PNG images.
type Options struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

// DefaultOptions returns a 10x6 inch canvas at 300 dpi.
func DefaultOptions() Options {
	return Options{Width: 10 * vg.Inch, Height: 6 * vg.Inch, DPI: 300}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("chart size must be positive: %vx%v", o.Width, o.Height)
	}
	if o.DPI <= 0 {
		return fmt.Errorf("chart dpi must be positive: %d", o.DPI)
	}
	return nil
}

// Title returns the chart title for a document name.
func Title(name string) string {
	return "Z-Scan Measurement: " + name
}

// PlotFileName returns the download name of a document's chart: everything
// before the first dot of the base name, plus "_plot.png".
func PlotFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	stem, _, _ := strings.Cut(base, ".")
	if stem == "" || stem == "/" {
		stem = "plot"
	}
	return stem + "_plot.png"
}

// NewPlot builds the measurement chart: the raw samples as a line with
// circle markers and the smoothed series as a second line.
func NewPlot(res *zscan.Result) (*plot.Plot, error) {
	if res.Empty() {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = Title(res.Name)
	p.X.Label.Text = "Distance (mm)"
	p.Y.Label.Text = "Voltage (V)"

	grid := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(4), vg.Points(2)}
	grid.Vertical.Color = gridColor
	grid.Vertical.Dashes = dashes
	grid.Horizontal.Color = gridColor
	grid.Horizontal.Dashes = dashes
	p.Add(grid)

	raw := make(plotter.XYs, len(res.Samples))
	for i, s := range res.Samples {
		raw[i] = plotter.XY{X: s.Distance, Y: s.Voltage}
	}
	rawLine, rawPoints, err := plotter.NewLinePoints(raw)
	if err != nil {
		return nil, fmt.Errorf("raw series: %w", err)
	}
	rawLine.Color = rawColor
	rawLine.Width = vg.Points(1)
	rawPoints.Shape = draw.CircleGlyph{}
	rawPoints.Color = rawColor
	rawPoints.Radius = vg.Points(2)
	p.Add(rawLine, rawPoints)
	p.Legend.Add("Raw", rawLine, rawPoints)

	if len(res.Smoothed) == len(res.Samples) {
		smoothed := make(plotter.XYs, len(res.Smoothed))
		for i, v := range res.Smoothed {
			smoothed[i] = plotter.XY{X: res.Samples[i].Distance, Y: v}
		}
		line, err := plotter.NewLine(smoothed)
		if err != nil {
			return nil, fmt.Errorf("smoothed series: %w", err)
		}
		line.Color = smoothedColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Smoothed", line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// RenderPNG draws the chart for res and writes it to w as a PNG image.
// The drawing canvas lives only for the duration of the call.
func RenderPNG(w io.Writer, res *zscan.Result, o Options) error {
	if err := o.validate(); err != nil {
		return err
	}
	p, err := NewPlot(res)
	if err != nil {
		return err
	}

	c := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(o.Width, o.Height),
		vgimg.UseDPI(o.DPI),
		vgimg.UseBackgroundColor(color.White),
	)}
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
