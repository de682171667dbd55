// Package energy summarises lists of energy deposits, typically in keV.
package energy

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyInput is returned when no deposits are given.
var ErrEmptyInput = errors.New("energy: empty input")

// Stats summarises a set of deposits against a threshold.
type Stats struct {
	Count    int
	Min      float64
	MinIndex int
	Max      float64
	MaxIndex int
	Mean     float64
	StdDev   float64 // sample standard deviation (n-1); 0 for a single value
	// Threshold statistics count deposits strictly above Threshold.
	Threshold    float64
	Above        int
	AbovePercent float64
}

// Calculate computes the summary of values relative to threshold.
func Calculate(values []float64, threshold float64) (Stats, error) {
	n := len(values)
	if n == 0 {
		return Stats{}, ErrEmptyInput
	}

	minIdx := floats.MinIdx(values)
	maxIdx := floats.MaxIdx(values)

	var mean, std float64
	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	above := floats.Count(func(v float64) bool { return v > threshold }, values)

	return Stats{
		Count:        n,
		Min:          values[minIdx],
		MinIndex:     minIdx,
		Max:          values[maxIdx],
		MaxIndex:     maxIdx,
		Mean:         mean,
		StdDev:       std,
		Threshold:    threshold,
		Above:        above,
		AbovePercent: 100 * float64(above) / float64(n),
	}, nil
}

// Accumulator summarises deposits block by block, for event files too large
// to hold in memory. Mean and variance use Welford's update.
type Accumulator struct {
	threshold float64
	n         int
	mean      float64
	m2        float64
	minVal    float64
	minPos    int
	maxVal    float64
	maxPos    int
	above     int
}

// NewAccumulator creates an accumulator counting deposits above threshold.
func NewAccumulator(threshold float64) *Accumulator {
	return &Accumulator{threshold: threshold}
}

// Update adds a block of deposits.
func (a *Accumulator) Update(values []float64) {
	for _, x := range values {
		pos := a.n
		a.n++

		delta := x - a.mean
		a.mean += delta / float64(a.n)
		a.m2 += delta * (x - a.mean)

		if pos == 0 || x < a.minVal {
			a.minVal, a.minPos = x, pos
		}
		if pos == 0 || x > a.maxVal {
			a.maxVal, a.maxPos = x, pos
		}
		if x > a.threshold {
			a.above++
		}
	}
}

// Result returns the statistics accumulated so far.
func (a *Accumulator) Result() (Stats, error) {
	if a.n == 0 {
		return Stats{}, ErrEmptyInput
	}

	var std float64
	if a.n > 1 {
		std = math.Sqrt(a.m2 / float64(a.n-1))
	}

	return Stats{
		Count:        a.n,
		Min:          a.minVal,
		MinIndex:     a.minPos,
		Max:          a.maxVal,
		MaxIndex:     a.maxPos,
		Mean:         a.mean,
		StdDev:       std,
		Threshold:    a.threshold,
		Above:        a.above,
		AbovePercent: 100 * float64(a.above) / float64(a.n),
	}, nil
}

// Reset clears the accumulator but keeps its threshold.
func (a *Accumulator) Reset() {
	*a = Accumulator{threshold: a.threshold}
}
