package hrtf

import (
	"fmt"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Cues summarizes the binaural cues of one measurement.
type Cues struct {
	Azimuth float64
	// ITD is right-ear delay minus left-ear delay in seconds. Positive means
	// the sound reaches the left ear first.
	ITD float64
	// ILD is right-ear minus left-ear broadband energy in dB.
	ILD float64
}

// Analyze computes the interaural cues of every measurement. fftSize must be a
// power of two no smaller than Taps().
func (s *Set) Analyze(fftSize int) ([]Cues, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if fftSize < s.Taps() || bits.OnesCount(uint(fftSize)) != 1 {
		return nil, fmt.Errorf("hrtf: analysis fft size must be a power of two >= %d: %d", s.Taps(), fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("hrtf: failed to create FFT plan: %w", err)
	}
	sp := spectrum{
		plan:  plan,
		buf:   make([]complex128, fftSize),
		re:    make([]float64, fftSize/2+1),
		im:    make([]float64, fftSize/2+1),
		power: make([]float64, fftSize/2+1),
	}

	out := make([]Cues, len(s.Measurements))
	for i, m := range s.Measurements {
		el, err := sp.energy(m.Left)
		if err != nil {
			return nil, err
		}
		er, err := sp.energy(m.Right)
		if err != nil {
			return nil, err
		}
		out[i] = Cues{
			Azimuth: m.Azimuth,
			ITD:     (m.RightDelay - m.LeftDelay) / s.SampleRate,
			ILD:     core.LinearPowerToDB(er) - core.LinearPowerToDB(el),
		}
	}
	return out, nil
}

type spectrum struct {
	plan  *algofft.Plan[complex128]
	buf   []complex128
	re    []float64
	im    []float64
	power []float64
}

// energy returns the one-sided spectral energy of fir.
func (sp *spectrum) energy(fir []float64) (float64, error) {
	for i := range sp.buf {
		sp.buf[i] = 0
	}
	for i, v := range fir {
		sp.buf[i] = complex(v, 0)
	}
	if err := sp.plan.Forward(sp.buf, sp.buf); err != nil {
		return 0, fmt.Errorf("hrtf: forward FFT failed: %w", err)
	}
	for k := range sp.re {
		sp.re[k] = real(sp.buf[k])
		sp.im[k] = imag(sp.buf[k])
	}
	vecmath.Power(sp.power, sp.re, sp.im)

	total := 0.0
	for _, p := range sp.power {
		total += p
	}
	return total, nil
}
