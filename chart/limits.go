package chart

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cwbudde/algo-gamma/measure/mda"
	"github.com/cwbudde/algo-gamma/stats/series"
)

// DefaultLimitSize is 14x10 inches.
var DefaultLimitSize = Size{Width: 14 * vg.Inch, Height: 10 * vg.Inch}

// NewEfficiencyLimit returns two panels sharing the activity axis: detection
// efficiency on a log scale above, detection limit below. Each panel marks
// the series mean and labels every point with its value.
func NewEfficiencyLimit(res mda.Result) (eff, limit *plot.Plot, err error) {
	if len(res.Rows) == 0 {
		return nil, nil, mda.ErrEmptyInput
	}

	x := make([]float64, len(res.Rows))
	effY := make([]float64, len(res.Rows))
	limY := make([]float64, len(res.Rows))
	for i, r := range res.Rows {
		x[i], effY[i], limY[i] = r.Activity, r.Efficiency, r.DetectionLimit
	}

	eff, err = panel(x, effY, res.Efficiency, panelStyle{
		title:  "Detection Efficiency and Detection Limit vs Activity Concentration",
		ylabel: "Detection Efficiency",
		legend: "Detection Efficiency",
		value:  "%.2e",
		log:    true,
		color:  lineBlue,
	})
	if err != nil {
		return nil, nil, err
	}

	limit, err = panel(x, limY, res.DetectionLimit, panelStyle{
		ylabel: "Detection Limit (Bq/m³)",
		legend: "Detection Limit",
		value:  "%.2f",
		color:  lineRed,
		dashed: true,
	})
	if err != nil {
		return nil, nil, err
	}
	limit.X.Label.Text = "Activity Concentration (Bq/m³)"

	lo, hi := min(eff.X.Min, limit.X.Min), max(eff.X.Max, limit.X.Max)
	for _, p := range []*plot.Plot{eff, limit} {
		p.X.Min, p.X.Max = lo, hi
	}
	return eff, limit, nil
}

type panelStyle struct {
	title, ylabel, legend, value string
	log, dashed                  bool
	color                        color.Color
}

func panel(x, y []float64, sum series.Summary, st panelStyle) (*plot.Plot, error) {
	xys := make(plotter.XYs, len(x))
	labels := make([]string, len(x))
	for i := range x {
		xys[i] = plotter.XY{X: x[i], Y: y[i]}
		labels[i] = fmt.Sprintf(st.value, y[i])
	}

	p := plot.New()
	p.Title.Text = st.title
	p.Y.Label.Text = st.ylabel
	if st.log {
		if _, lo, _ := positive(x, y); !(lo > 0) {
			return nil, ErrNoData
		}
		logY(p)
	}
	addGrid(p)

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("chart: %s: %w", st.legend, err)
	}
	line.LineStyle.Color = st.color
	line.LineStyle.Width = vg.Points(2.5)
	if st.dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		points.GlyphStyle.Shape = draw.BoxGlyph{}
	} else {
		points.GlyphStyle.Shape = draw.CircleGlyph{}
	}
	points.GlyphStyle.Color = st.color
	points.GlyphStyle.Radius = vg.Points(5)
	p.Add(line, points)

	mean, err := plotter.NewLine(plotter.XYs{{X: x[0], Y: sum.Mean}, {X: x[len(x)-1], Y: sum.Mean}})
	if err != nil {
		return nil, err
	}
	mean.LineStyle.Color = st.color
	mean.LineStyle.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}
	p.Add(mean)

	values, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	values.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(6)}
	p.Add(values)

	p.Legend.Add(st.legend, line, points)
	p.Legend.Add(fmt.Sprintf("Mean: "+st.value, sum.Mean), mean)
	p.Legend.Top = true
	p.Legend.Left = true

	box, err := note(x[len(x)-1], sum.Max, SummaryLines(st.legend, st.value, sum), st.color)
	if err != nil {
		return nil, err
	}
	box.Offset.X = -vg.Points(160)
	p.Add(box)
	return p, nil
}

// SummaryLines formats a series summary using valueFmt for the numbers.
func SummaryLines(name, valueFmt string, s series.Summary) []string {
	return []string{
		name + " Statistics:",
		fmt.Sprintf("Mean: "+valueFmt, s.Mean),
		fmt.Sprintf("Std: "+valueFmt, s.StdDev),
		fmt.Sprintf("Rel. Error: %.2f%%", s.RelativeError),
		fmt.Sprintf("Range: "+valueFmt+" - "+valueFmt, s.Min, s.Max),
	}
}

// SaveEfficiencyLimit renders both panels of [NewEfficiencyLimit] stacked
// on one page.
func SaveEfficiencyLimit(res mda.Result, path string, size Size) error {
	eff, limit, err := NewEfficiencyLimit(res)
	if err != nil {
		return err
	}
	ext, err := format(path)
	if err != nil {
		return err
	}
	size = size.orDefault(DefaultLimitSize)

	c, err := draw.NewFormattedCanvas(size.Width, size.Height, ext)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	plots := [][]*plot.Plot{{eff}, {limit}}
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	eff.Draw(canvases[0][0])
	limit.Draw(canvases[1][0])

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("chart: write %s: %w", path, err)
	}
	return f.Close()
}
