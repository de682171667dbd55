package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-gamma/stats/energy"
	"github.com/cwbudde/algo-gamma/stats/hist"
)

// DefaultHistogramSize is 12x7 inches.
var DefaultHistogramSize = Size{Width: 12 * vg.Inch, Height: 7 * vg.Inch}

// ReferenceLines are common gamma energies in keV: Co-57, annihilation,
// Cs-137 and the two Co-60 lines.
var ReferenceLines = []float64{122, 511, 662, 1173, 1332}

// HistogramOptions configures an energy deposit histogram.
type HistogramOptions struct {
	Size  Size
	Title string
	// Markers are energies to flag with dashed lines. Nil selects
	// ReferenceLines unless Threshold is set.
	Markers []float64
	// Threshold draws a single threshold line instead of Markers when > 0.
	Threshold float64
	// Stats adds a summary box when non-nil.
	Stats *energy.Stats
}

// StatsLines formats an energy summary for display.
func StatsLines(s energy.Stats) []string {
	return []string{
		fmt.Sprintf("Events: %d", s.Count),
		fmt.Sprintf("Mean: %.2f keV", s.Mean),
		fmt.Sprintf("Std: %.2f keV", s.StdDev),
		fmt.Sprintf("Min/Max: %.2f / %.2f keV", s.Min, s.Max),
		fmt.Sprintf("> %.0f keV: %d (%.2f%%)", s.Threshold, s.Above, s.AbovePercent),
	}
}

// NewHistogram draws h as bars on a logarithmic count axis.
func NewHistogram(h *hist.Histogram, opts HistogramOptions) (*plot.Plot, error) {
	if h == nil {
		return nil, ErrNilInput
	}
	_, top := h.Max()
	if !(top > 0) {
		return nil, ErrNoData
	}

	bins := make([]plotter.HistogramBin, h.Len())
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: h.Edges[i], Max: h.Edges[i+1], Weight: h.Counts[i]}
	}
	bars := &plotter.Histogram{
		Bins:      bins,
		Width:     h.Width(0),
		FillColor: fillBlue,
		LineStyle: plotter.DefaultLineStyle,
		LogY:      true,
	}
	bars.LineStyle.Width = vg.Points(0.3)

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Gamma Spectrum (keV, log scale)"
	}
	p.X.Label.Text = "Energy Deposit (keV)"
	p.Y.Label.Text = "Counts (log scale)"
	logY(p)
	addGrid(p)
	p.Add(bars)

	lo, hi := h.Edges[0], h.Edges[h.Len()]
	markers := opts.Markers
	if opts.Threshold > 0 {
		markers = []float64{opts.Threshold}
	} else if markers == nil {
		markers = ReferenceLines
	}
	for _, e := range markers {
		if e < lo || e > hi {
			continue
		}
		if err := addMarker(p, e, top); err != nil {
			return nil, err
		}
	}

	if opts.Stats != nil {
		box, err := note(lo, top, StatsLines(*opts.Stats), lineBlue)
		if err != nil {
			return nil, fmt.Errorf("chart: stats: %w", err)
		}
		p.Add(box)
	}

	return p, nil
}

func addMarker(p *plot.Plot, energy, top float64) error {
	l, err := plotter.NewLine(plotter.XYs{{X: energy, Y: 0.5}, {X: energy, Y: top}})
	if err != nil {
		return fmt.Errorf("chart: marker %v: %w", energy, err)
	}
	l.LineStyle.Color = markerRed
	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(l)

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: energy, Y: top * 0.9}},
		Labels: []string{fmt.Sprintf("%g keV", energy)},
	})
	if err != nil {
		return fmt.Errorf("chart: marker label: %w", err)
	}
	for i := range label.TextStyle {
		label.TextStyle[i].Rotation = math.Pi / 2
		label.TextStyle[i].Color = lineRed
	}
	p.Add(label)
	return nil
}

// SaveHistogram renders [NewHistogram] to path.
func SaveHistogram(h *hist.Histogram, path string, opts HistogramOptions) error {
	p, err := NewHistogram(h, opts)
	if err != nil {
		return err
	}
	if _, err := format(path); err != nil {
		return err
	}
	size := opts.Size.orDefault(DefaultHistogramSize)
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}
