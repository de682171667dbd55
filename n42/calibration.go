package n42

import "math"

// Calibration is a linear energy calibration E(ch) = Offset + Slope*ch in keV.
type Calibration struct {
	Offset float64
	Slope  float64
	// Coefficients holds every value read from the file, including terms
	// beyond the linear pair.
	Coefficients []float64
}

// NewCalibration builds a calibration from the first two coefficients.
// It returns nil when fewer than two are available.
func NewCalibration(coeffs []float64) *Calibration {
	if len(coeffs) < 2 {
		return nil
	}
	return &Calibration{
		Offset:       coeffs[0],
		Slope:        coeffs[1],
		Coefficients: append([]float64(nil), coeffs...),
	}
}

// Energy returns the energy in keV at a (possibly fractional) channel.
func (c Calibration) Energy(ch float64) float64 {
	return c.Offset + c.Slope*ch
}

// Energies evaluates the calibration at channels 0..n-1.
func (c Calibration) Energies(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = c.Energy(float64(i))
	}
	return out
}

// Channel inverts the calibration. It returns NaN for a zero slope.
func (c Calibration) Channel(energy float64) float64 {
	if c.Slope == 0 {
		return math.NaN()
	}
	return (energy - c.Offset) / c.Slope
}
