// Package roi measures net peak areas in a region of interest of a gamma
// spectrum.
//
// The continuum under the peak is a straight line joining the mean count of
// a few channels just left and just right of the region:
//
//	net = gross - n * (meanLeft + meanRight) / 2
//
// where n is the region width in channels. When one side runs off the
// spectrum only the other side is used.
package roi

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyInput    = errors.New("roi: empty spectrum")
	ErrInvalidWindow = errors.New("roi: invalid window")
	ErrNoBackground  = errors.New("roi: no room for background channels")
	ErrNotInvertible = errors.New("roi: calibration cannot be inverted")
)

const defaultEdgeLength = 3

// Window is an inclusive channel range.
type Window struct {
	Lo, Hi int
}

// Width returns the number of channels in the window.
func (w Window) Width() int { return w.Hi - w.Lo + 1 }

// Inverter maps an energy back to a fractional channel.
type Inverter interface {
	Channel(energy float64) float64
}

// EnergyWindow converts an energy range in keV to the channels whose centers
// fall inside it, clipped to [0, channels).
func EnergyWindow(cal Inverter, loKeV, hiKeV float64, channels int) (Window, error) {
	a, b := cal.Channel(loKeV), cal.Channel(hiKeV)
	if math.IsNaN(a) || math.IsNaN(b) {
		return Window{}, ErrNotInvertible
	}
	if a > b {
		a, b = b, a
	}
	w := Window{Lo: max(int(math.Ceil(a)), 0), Hi: min(int(math.Floor(b)), channels-1)}
	if w.Lo > w.Hi {
		return Window{}, fmt.Errorf("%w: %v..%v keV maps outside the spectrum", ErrInvalidWindow, loKeV, hiKeV)
	}
	return w, nil
}

// Config controls the background estimate.
type Config struct {
	// EdgeChannels is how many channels on each side estimate the continuum.
	// Zero selects 3; a negative value disables background subtraction.
	EdgeChannels int
}

// Result is the outcome of a region-of-interest measurement.
type Result struct {
	Window     Window
	Gross      float64
	Background float64
	Net        float64
	// NetSigma is the Poisson standard uncertainty of Net.
	NetSigma float64
	// Centroid is the background-subtracted mean channel, NaN if Net <= 0.
	Centroid float64
}

// Analyze integrates counts over w and subtracts the linear continuum.
func Analyze(counts []float64, w Window, cfg Config) (Result, error) {
	n := len(counts)
	if n == 0 {
		return Result{}, ErrEmptyInput
	}
	if w.Lo < 0 || w.Hi >= n || w.Lo > w.Hi {
		return Result{}, fmt.Errorf("%w: [%d, %d] for %d channels", ErrInvalidWindow, w.Lo, w.Hi, n)
	}

	var gross float64
	for _, c := range counts[w.Lo : w.Hi+1] {
		gross += c
	}

	res := Result{Window: w, Gross: gross, Net: gross, NetSigma: math.Sqrt(gross)}

	k := cfg.EdgeChannels
	if k == 0 {
		k = defaultEdgeLength
	}
	if k < 0 {
		res.Centroid = centroid(counts, w, 0, 0)
		return res, nil
	}

	leftSum, leftN := sumRange(counts, w.Lo-k, w.Lo-1)
	rightSum, rightN := sumRange(counts, w.Hi+1, w.Hi+k)
	width := float64(w.Width())

	var left, right, variance float64
	switch {
	case leftN > 0 && rightN > 0:
		left, right = leftSum/float64(leftN), rightSum/float64(rightN)
		res.Background = width * (left + right) / 2
		variance = sq(width/(2*float64(leftN)))*leftSum + sq(width/(2*float64(rightN)))*rightSum
	case leftN > 0:
		left = leftSum / float64(leftN)
		right = left
		res.Background = width * left
		variance = sq(width/float64(leftN)) * leftSum
	case rightN > 0:
		right = rightSum / float64(rightN)
		left = right
		res.Background = width * right
		variance = sq(width/float64(rightN)) * rightSum
	default:
		return Result{}, ErrNoBackground
	}

	res.Net = gross - res.Background
	res.NetSigma = math.Sqrt(gross + variance)
	res.Centroid = centroid(counts, w, left, right)
	return res, nil
}

// sumRange sums counts[lo..hi] clipped to the slice bounds.
func sumRange(counts []float64, lo, hi int) (float64, int) {
	lo = max(lo, 0)
	hi = min(hi, len(counts)-1)
	var sum float64
	n := 0
	for i := lo; i <= hi; i++ {
		sum += counts[i]
		n++
	}
	return sum, n
}

// centroid subtracts a line from left (at w.Lo) to right (at w.Hi).
func centroid(counts []float64, w Window, left, right float64) float64 {
	var num, den float64
	span := float64(w.Hi - w.Lo)
	for i := w.Lo; i <= w.Hi; i++ {
		bg := left
		if span > 0 {
			bg += (right - left) * float64(i-w.Lo) / span
		}
		net := counts[i] - bg
		num += float64(i) * net
		den += net
	}
	if den <= 0 {
		return math.NaN()
	}
	return num / den
}

func sq(x float64) float64 { return x * x }
