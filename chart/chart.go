// Package chart renders spectra, energy deposit histograms and detection
// limit tables with gonum/plot.
//
// Every chart has a New... constructor returning the *plot.Plot for further
// styling and a Save... helper that writes it to disk. The output format
// follows the file extension (png, svg, pdf, eps, jpg, tif).
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var (
	ErrNilInput = errors.New("chart: nil input")
	ErrNoData   = errors.New("chart: nothing to draw on a log scale")
)

var (
	lineBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	lineRed   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	fillBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 180}
	markerRed = color.RGBA{R: 214, G: 39, B: 40, A: 128}
	gridGray  = color.Gray{Y: 200}
)

// Size is the page size of a saved chart.
type Size struct {
	Width, Height vg.Length
}

func (s Size) orDefault(def Size) Size {
	if s.Width <= 0 {
		s.Width = def.Width
	}
	if s.Height <= 0 {
		s.Height = def.Height
	}
	return s
}

func format(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("chart: %s has no file extension", path)
	}
	return ext, nil
}

func logY(p *plot.Plot) {
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

func addGrid(p *plot.Plot) {
	g := plotter.NewGrid()
	g.Vertical.Color = gridGray
	g.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	g.Horizontal.Color = gridGray
	g.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(g)
}

// note places a block of text with its top-left corner at (x, y).
func note(x, y float64, lines []string, c color.Color) (*plotter.Labels, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: x, Y: y}},
		Labels: []string{strings.Join(lines, "\n")},
	})
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].YAlign = text.YTop
		l.TextStyle[i].Color = c
	}
	l.Offset = vg.Point{X: vg.Points(6), Y: -vg.Points(6)}
	return l, nil
}

// positive keeps the points with y > 0 and reports the y range.
func positive(x, y []float64) (plotter.XYs, float64, float64) {
	xys := make(plotter.XYs, 0, len(y))
	lo, hi := 0.0, 0.0
	for i, v := range y {
		if !(v > 0) {
			continue
		}
		if len(xys) == 0 || v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		xys = append(xys, plotter.XY{X: x[i], Y: v})
	}
	return xys, lo, hi
}
