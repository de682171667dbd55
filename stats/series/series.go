// Package series summarises a short series of derived measurements, such as
// detection efficiencies across a set of simulated activities.
package series

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyInput is returned for an empty series.
var ErrEmptyInput = errors.New("series: empty input")

// Summary describes the spread of a series.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64 // sample standard deviation (n-1); NaN for N == 1
	// RelativeError is StdDev/Mean in percent.
	RelativeError float64
	Min           float64
	Max           float64
}

// Summarize computes the summary of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmptyInput
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = math.NaN()
	}

	return Summary{
		N:             len(values),
		Mean:          mean,
		StdDev:        std,
		RelativeError: 100 * std / mean,
		Min:           floats.Min(values),
		Max:           floats.Max(values),
	}, nil
}
