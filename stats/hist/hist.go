// Package hist builds fixed-range histograms of energy deposits.
//
// Binning follows the usual convention for spectra: bin i covers
// [Edges[i], Edges[i+1]), the last bin is closed on the right, and values
// outside [lo, hi] are tallied as underflow or overflow instead of being
// binned.
package hist

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidBins  = errors.New("hist: bin count must be > 0")
	ErrInvalidRange = errors.New("hist: range must be finite with lo < hi")
)

// Histogram holds bin edges and per-bin counts.
type Histogram struct {
	Edges     []float64 // len(Counts)+1, ascending
	Counts    []float64
	Underflow int
	Overflow  int
}

// New bins values into bins equal-width bins spanning [lo, hi].
// NaN values count as overflow.
func New(values []float64, bins int, lo, hi float64) (*Histogram, error) {
	h, err := NewEmpty(bins, lo, hi)
	if err != nil {
		return nil, err
	}
	h.Add(values...)
	return h, nil
}

// NewEmpty returns a histogram with no entries, to be filled with [Histogram.Add].
func NewEmpty(bins int, lo, hi float64) (*Histogram, error) {
	if bins <= 0 {
		return nil, ErrInvalidBins
	}
	if !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, ErrInvalidRange
	}

	return &Histogram{
		Edges:  floats.Span(make([]float64, bins+1), lo, hi),
		Counts: make([]float64, bins),
	}, nil
}

// Add bins further values.
func (h *Histogram) Add(values ...float64) {
	for _, v := range values {
		h.add(v)
	}
}

func (h *Histogram) add(v float64) {
	bins := len(h.Counts)
	lo, hi := h.Edges[0], h.Edges[bins]

	switch {
	case v < lo:
		h.Underflow++
		return
	case v > hi || math.IsNaN(v):
		h.Overflow++
		return
	case v == hi:
		h.Counts[bins-1]++
		return
	}

	idx := int((v - lo) / (hi - lo) * float64(bins))
	if idx >= bins {
		idx = bins - 1
	}
	// Correct rounding at the edges so that membership agrees with Edges.
	if idx > 0 && v < h.Edges[idx] {
		idx--
	} else if idx < bins-1 && v >= h.Edges[idx+1] {
		idx++
	}
	h.Counts[idx]++
}

// Len returns the number of bins.
func (h *Histogram) Len() int { return len(h.Counts) }

// Width returns the width of bin i.
func (h *Histogram) Width(i int) float64 { return h.Edges[i+1] - h.Edges[i] }

// Centers returns the midpoint of every bin.
func (h *Histogram) Centers() []float64 {
	out := make([]float64, len(h.Counts))
	for i := range out {
		out[i] = 0.5 * (h.Edges[i] + h.Edges[i+1])
	}
	return out
}

// Total returns the number of binned values.
func (h *Histogram) Total() float64 {
	return floats.Sum(h.Counts)
}

// Max returns the largest bin count and its index, or (-1, 0) when empty.
func (h *Histogram) Max() (int, float64) {
	if len(h.Counts) == 0 {
		return -1, 0
	}
	i := floats.MaxIdx(h.Counts)
	return i, h.Counts[i]
}

// Integral sums counts of bins whose centers fall in [lo, hi].
func (h *Histogram) Integral(lo, hi float64) float64 {
	var sum float64
	for i, c := range h.Counts {
		mid := 0.5 * (h.Edges[i] + h.Edges[i+1])
		if mid >= lo && mid <= hi {
			sum += c
		}
	}
	return sum
}
