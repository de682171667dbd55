package chart

import (
	"fmt"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-gamma/measure/roi"
	"github.com/cwbudde/algo-gamma/n42"
)

// DefaultSpectrumSize is 12x6 inches.
var DefaultSpectrumSize = Size{Width: 12 * vg.Inch, Height: 6 * vg.Inch}

// SpectrumOptions adds optional layers to a spectrum chart.
type SpectrumOptions struct {
	Size Size
	// Smoothed is drawn over the raw counts when it has one value per channel.
	Smoothed []float64
	// ROI marks the region of interest and its net area.
	ROI *roi.Result
}

// SpectrumTitle returns the chart title for an axis kind.
func SpectrumTitle(kind n42.AxisKind) string {
	if kind == n42.AxisEnergy {
		return "Gamma Spectrum - Energy Scale"
	}
	return "Gamma Spectrum - Channel Scale"
}

// MetadataLines formats the measurement metadata shown on spectrum charts.
func MetadataLines(info n42.Metadata) []string {
	return []string{
		"Detector: " + info.Detector,
		"Start Time: " + info.StartTime,
		"Live Time: " + info.LiveTime,
		fmt.Sprintf("Channels: %d", info.ChannelCount),
	}
}

// NewSpectrum plots counts against energy, or against channel number when
// doc is uncalibrated, on a logarithmic count axis. Channels without counts
// are left out; a spectrum without any counts gets empty axes spanning its
// channels and still carries the metadata note.
func NewSpectrum(doc *n42.Document, opts SpectrumOptions) (*plot.Plot, error) {
	if doc == nil {
		return nil, ErrNilInput
	}

	x, kind := doc.Axis()
	xys, _, hi := positive(x, doc.Float64())

	p := plot.New()
	p.Title.Text = SpectrumTitle(kind)
	p.X.Label.Text = kind.Label()
	p.Y.Label.Text = "Counts"
	logY(p)
	addGrid(p)

	left := 0.0
	if len(x) > 0 {
		left = slices.Min(x)
	}

	if len(xys) == 0 {
		hi = emptyAxes(p, x)
	} else if err := addCounts(p, x, xys, opts.Smoothed); err != nil {
		return nil, err
	}

	if opts.ROI != nil {
		if err := addROI(p, x, *opts.ROI, hi); err != nil {
			return nil, err
		}
	}

	info, err := note(left, hi, MetadataLines(doc.Info), lineBlue)
	if err != nil {
		return nil, fmt.Errorf("chart: metadata: %w", err)
	}
	p.Add(info)

	return p, nil
}

func addCounts(p *plot.Plot, x []float64, xys plotter.XYs, smoothed []float64) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("chart: spectrum line: %w", err)
	}
	line.LineStyle.Color = lineBlue
	line.LineStyle.Width = vg.Points(1)
	p.Add(line)

	if len(smoothed) != len(x) {
		return nil
	}
	sm, _, _ := positive(x, smoothed)
	if len(sm) == 0 {
		return nil
	}
	sl, err := plotter.NewLine(sm)
	if err != nil {
		return fmt.Errorf("chart: smoothed line: %w", err)
	}
	sl.LineStyle.Color = lineRed
	sl.LineStyle.Width = vg.Points(1.5)
	p.Add(sl)
	p.Legend.Add("Raw", line)
	p.Legend.Add("Smoothed", sl)
	p.Legend.Top = true
	return nil
}

// emptyAxes fixes the axes of a spectrum without counts to its channel span
// and one decade of counts. It returns the top of the count axis.
func emptyAxes(p *plot.Plot, x []float64) float64 {
	p.X.Min, p.X.Max = 0, 1
	if len(x) > 0 {
		p.X.Min, p.X.Max = slices.Min(x), slices.Max(x)
	}
	if p.X.Max <= p.X.Min {
		p.X.Max = p.X.Min + 1
	}
	p.Y.Min, p.Y.Max = 1, 10
	return p.Y.Max
}

func addROI(p *plot.Plot, x []float64, r roi.Result, top float64) error {
	w := r.Window
	if w.Lo < 0 || w.Hi >= len(x) {
		return fmt.Errorf("chart: region [%d, %d] outside %d channels", w.Lo, w.Hi, len(x))
	}
	for _, ch := range []int{w.Lo, w.Hi} {
		l, err := plotter.NewLine(plotter.XYs{{X: x[ch], Y: 0.5}, {X: x[ch], Y: top}})
		if err != nil {
			return err
		}
		l.LineStyle.Color = markerRed
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
	}

	label, err := note(x[w.Hi], top, []string{
		fmt.Sprintf("Net: %.0f ± %.0f", r.Net, r.NetSigma),
		fmt.Sprintf("Gross: %.0f", r.Gross),
	}, lineRed)
	if err != nil {
		return err
	}
	p.Add(label)
	return nil
}

// SaveSpectrum renders [NewSpectrum] to path.
func SaveSpectrum(doc *n42.Document, path string, opts SpectrumOptions) error {
	p, err := NewSpectrum(doc, opts)
	if err != nil {
		return err
	}
	size := opts.Size.orDefault(DefaultSpectrumSize)
	if _, err := format(path); err != nil {
		return err
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}
