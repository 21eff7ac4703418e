// Package chart renders a metric log as a grid of line plots, one row per
// metric group and one column per metric in the group.
package chart

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/watchfire-io/runlog/internal/config"
	"github.com/watchfire-io/runlog/internal/metrics"
)

// ErrNoMetrics is returned when there is nothing to plot.
var ErrNoMetrics = errors.New("no metrics to plot")

// Options controls the rendered image. Zero values fall back to defaults.
type Options struct {
	CellWidth  vg.Length // width of one subplot
	CellHeight vg.Length // height of one subplot
	DPI        int
}

// DefaultCellSize is the size of one subplot.
const DefaultCellSize = 5 * vg.Inch

const defaultDPI = 100

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = DefaultCellSize
	}
	if o.CellHeight <= 0 {
		o.CellHeight = DefaultCellSize
	}
	if o.DPI <= 0 {
		o.DPI = defaultDPI
	}
	return o
}

// Render draws m as a PNG at path, replacing any existing file.
func Render(m *metrics.Log, path string, opts Options) error {
	if m == nil || m.Len() == 0 {
		return ErrNoMetrics
	}
	return config.WriteAtomic(path, func(w io.Writer) error {
		return Write(m, w, opts)
	})
}

// Write draws m as a PNG to w.
func Write(m *metrics.Log, w io.Writer, opts Options) error {
	if m == nil || m.Len() == 0 {
		return ErrNoMetrics
	}
	opts = opts.withDefaults()

	plots, rows, cols, err := Grid(m)
	if err != nil {
		return err
	}

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(cols)*opts.CellWidth, vg.Length(rows)*opts.CellHeight),
		vgimg.UseDPI(opts.DPI),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j, p := range plots[i] {
			if p == nil {
				continue
			}
			p.Draw(canvases[i][j])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Grid builds the subplot grid for m. Cells past the end of a group are nil
// and left blank when drawn.
func Grid(m *metrics.Log) (plots [][]*plot.Plot, rows, cols int, err error) {
	groups := m.Groups()
	rows = len(groups)
	for _, g := range groups {
		if len(g.Metrics) > cols {
			cols = len(g.Metrics)
		}
	}

	plots = make([][]*plot.Plot, rows)
	for i, g := range groups {
		plots[i] = make([]*plot.Plot, cols)
		for j, name := range g.Metrics {
			p, err := metricPlot(m, name)
			if err != nil {
				return nil, 0, 0, err
			}
			plots[i][j] = p
		}
	}
	return plots, rows, cols, nil
}

// metricPlot plots the present points of one metric. A metric without any
// present point yields an empty plot rather than an error.
func metricPlot(m *metrics.Log, name string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "Step"
	p.Y.Label.Text = name
	p.X.Tick.Marker = integerTicks{}
	p.Legend.Top = true

	steps, values := m.Points(name)
	if len(steps) == 0 {
		log.Printf("[chart] %s has no values, leaving subplot empty", name)
		return p, nil
	}

	xys := make(plotter.XYs, len(steps))
	for i := range steps {
		xys[i].X = float64(steps[i])
		xys[i].Y = values[i]
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to plot %s: %w", name, err)
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return p, nil
}

// integerTicks places major ticks on whole steps only.
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)

	var out []plot.Tick
	for _, t := range ticks {
		if t.Label == "" {
			continue
		}
		if t.Value != math.Trunc(t.Value) {
			continue
		}
		out = append(out, plot.Tick{Value: t.Value, Label: fmt.Sprintf("%d", int64(t.Value))})
	}
	if len(out) == 0 {
		// Range narrower than one step: label the nearest whole steps.
		for v := math.Ceil(min); v <= math.Floor(max); v++ {
			out = append(out, plot.Tick{Value: v, Label: fmt.Sprintf("%d", int64(v))})
		}
	}
	return out
}
