package testutil

import (
	"math"
	"math/rand"
)

// Peak describes a Gaussian photopeak in channel units.
type Peak struct {
	Center float64
	Sigma  float64
	Area   float64
}

// GammaSpectrum returns an expected-count spectrum made of an exponential
// continuum bg0*exp(-ch/decay) plus the given peaks. It is noise free so
// tests can assert exact areas.
func GammaSpectrum(channels int, bg0, decay float64, peaks ...Peak) []float64 {
	out := make([]float64, channels)
	for i := range out {
		ch := float64(i)
		if decay > 0 {
			out[i] = bg0 * math.Exp(-ch/decay)
		}
		for _, p := range peaks {
			z := (ch - p.Center) / p.Sigma
			out[i] += p.Area / (p.Sigma * math.Sqrt(2*math.Pi)) * math.Exp(-0.5*z*z)
		}
	}
	return out
}

// RoundCounts converts expected counts into integer channel contents.
func RoundCounts(expected []float64) []int {
	out := make([]int, len(expected))
	for i, v := range expected {
		out[i] = int(math.Round(v))
	}
	return out
}

// PoissonCounts draws one Poisson sample per channel with a fixed seed.
func PoissonCounts(seed int64, expected []float64) []int {
	rng := rand.New(rand.NewSource(seed))
	out := make([]int, len(expected))
	for i, lambda := range expected {
		out[i] = poisson(rng, lambda)
	}
	return out
}

// poisson uses Knuth's method for small means and a rounded normal
// approximation above 30.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda > 30 {
		v := math.Round(lambda + math.Sqrt(lambda)*rng.NormFloat64())
		return int(math.Max(v, 0))
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// EnergyDeposits returns n deterministic deposits in MeV: a fraction
// photoFraction lands at the full photopeak energy, the rest spreads
// uniformly below it as Compton continuum.
func EnergyDeposits(seed int64, n int, peakMeV, photoFraction float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < photoFraction {
			out[i] = peakMeV
		} else {
			out[i] = rng.Float64() * peakMeV * 0.7
		}
	}
	return out
}
