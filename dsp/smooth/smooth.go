// Package smooth provides spectrum smoothing for peak inspection.
//
// Gaussian convolves channel counts with a normalised Gaussian kernel in the
// frequency domain. The input is zero-padded so the circular convolution of
// the FFT equals the linear one: channels outside the spectrum count as zero,
// so counts near both ends leak out and the smoothed total can be slightly
// below the original.
package smooth

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

var (
	ErrEmptyInput   = errors.New("smooth: empty input")
	ErrInvalidSigma = errors.New("smooth: sigma must be positive and finite")
)

// kernelRadius is the kernel half-width in units of sigma.
const kernelRadius = 5

// fwhmPerSigma is 2*sqrt(2*ln 2).
var fwhmPerSigma = 2 * math.Sqrt(2*math.Ln2)

// SigmaFromFWHM converts a peak full width at half maximum to a Gaussian sigma.
func SigmaFromFWHM(fwhm float64) float64 {
	return fwhm / fwhmPerSigma
}

// Radius returns the number of channels the kernel reaches on each side.
func Radius(sigma float64) int {
	return int(math.Ceil(kernelRadius * sigma))
}

// Kernel returns the normalised Gaussian kernel of length 2*Radius(sigma)+1,
// centered on its middle element.
func Kernel(sigma float64) ([]float64, error) {
	if err := checkSigma(sigma); err != nil {
		return nil, err
	}
	r := Radius(sigma)
	k := make([]float64, 2*r+1)
	var sum float64
	for i := range k {
		d := float64(i-r) / sigma
		k[i] = math.Exp(-0.5 * d * d)
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k, nil
}

// Gaussian returns counts smoothed by a Gaussian of standard deviation sigma
// channels. The output has the same length as counts.
func Gaussian(counts []float64, sigma float64) ([]float64, error) {
	if len(counts) == 0 {
		return nil, ErrEmptyInput
	}
	kernel, err := Kernel(sigma)
	if err != nil {
		return nil, err
	}

	n := len(counts)
	r := len(kernel) / 2
	fftSize := nextPowerOf2(n + r)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("smooth: failed to create FFT plan: %w", err)
	}

	gain, err := kernelGain(plan, kernel, fftSize)
	if err != nil {
		return nil, err
	}

	padded := make([]complex128, fftSize)
	for i, v := range counts {
		padded[i] = complex(v, 0)
	}
	freq := make([]complex128, fftSize)
	if err := plan.Forward(freq, padded); err != nil {
		return nil, fmt.Errorf("smooth: forward FFT failed: %w", err)
	}

	// The kernel is real and even, so its spectrum is real and scales both
	// parts of each bin alike.
	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	for i, c := range freq {
		re[i], im[i] = real(c), imag(c)
	}
	vecmath.MulBlockInPlace(re, gain)
	vecmath.MulBlockInPlace(im, gain)
	for i := range freq {
		freq[i] = complex(re[i], im[i])
	}

	if err := plan.Inverse(padded, freq); err != nil {
		return nil, fmt.Errorf("smooth: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(padded[i])
	}
	return out, nil
}

// kernelGain wraps kernel circularly around index zero and returns the real
// part of its transform.
func kernelGain(plan *algofft.Plan[complex128], kernel []float64, fftSize int) ([]float64, error) {
	r := len(kernel) / 2
	wrapped := make([]complex128, fftSize)
	for i, v := range kernel {
		idx := (i - r + fftSize) % fftSize
		wrapped[idx] += complex(v, 0)
	}

	freq := make([]complex128, fftSize)
	if err := plan.Forward(freq, wrapped); err != nil {
		return nil, fmt.Errorf("smooth: kernel FFT failed: %w", err)
	}

	gain := make([]float64, fftSize)
	for i, c := range freq {
		gain[i] = real(c)
	}
	return gain, nil
}

func checkSigma(sigma float64) error {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSigma, sigma)
	}
	return nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
