// Package window provides the tapers used when truncating synthesized
// impulse responses.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Hann returns a symmetric Hann window of size samples.
func Hann(size int) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}
	w := make([]float64, size)
	if size == 1 {
		w[0] = 1
		return w, nil
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w, nil
}

// FadeOut returns a taper that is 1 for the leading part and falls along a
// half-Hann over the trailing fraction of size samples. The last value is
// small but non-zero, so no tap is discarded outright.
func FadeOut(size int, fraction float64) ([]float64, error) {
	if err := validateLength(size); err != nil {
		return nil, err
	}
	if err := validateFraction(fraction); err != nil {
		return nil, err
	}
	w := make([]float64, size)
	fade := int(float64(size) * fraction)
	start := size - fade
	for i := range start {
		w[i] = 1
	}
	if fade == 0 {
		return w, nil
	}
	// The falling half of a Hann window of 2*fade+3 points, without its
	// peak and its trailing zero.
	hann, err := Hann(2*fade + 3)
	if err != nil {
		return nil, err
	}
	copy(w[start:], hann[fade+2:2*fade+2])
	return w, nil
}

// ApplyInPlace multiplies samples by coeffs.
func ApplyInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}
	vecmath.MulBlockInPlace(samples, coeffs)
	return nil
}
