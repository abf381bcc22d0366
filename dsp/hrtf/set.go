package hrtf

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

var (
	// ErrEmptySet is returned when a Set has no measurements.
	ErrEmptySet = errors.New("hrtf: set has no measurements")
	// ErrTapMismatch is returned when measurements disagree on FIR length.
	ErrTapMismatch = errors.New("hrtf: measurements must share one FIR length")
)

// Measurement is the HRIR pair for one azimuth.
type Measurement struct {
	// Azimuth is clockwise from straight ahead, in radians within [0, 2π).
	Azimuth float64

	Left  []float64
	Right []float64

	// LeftDelay and RightDelay are the per-ear onset delays in samples.
	LeftDelay  float64
	RightDelay float64
}

// Set is a ring of measurements sorted by ascending azimuth.
type Set struct {
	SampleRate   float64
	Measurements []Measurement
}

// Provider supplies an HRIR set for a sample rate.
type Provider interface {
	HRIRSet(sampleRate float64) (*Set, error)
}

// Validate checks the structural invariants the Spatializer relies on.
func (s *Set) Validate() error {
	if s == nil || len(s.Measurements) == 0 {
		return ErrEmptySet
	}
	if s.SampleRate <= 0 || !core.IsFinite(s.SampleRate) {
		return fmt.Errorf("hrtf: set sample rate must be > 0 and finite: %f", s.SampleRate)
	}

	taps := len(s.Measurements[0].Left)
	if taps == 0 {
		return fmt.Errorf("hrtf: measurement 0 has an empty FIR")
	}

	prev := -1.0
	for i, m := range s.Measurements {
		if len(m.Left) != taps || len(m.Right) != taps {
			return fmt.Errorf("%w: measurement %d has %d/%d taps, want %d",
				ErrTapMismatch, i, len(m.Left), len(m.Right), taps)
		}
		if m.Azimuth < 0 || m.Azimuth >= 2*math.Pi || math.IsNaN(m.Azimuth) {
			return fmt.Errorf("hrtf: measurement %d azimuth out of [0, 2π): %f", i, m.Azimuth)
		}
		if m.Azimuth <= prev {
			return fmt.Errorf("hrtf: measurement %d azimuth %f is not ascending", i, m.Azimuth)
		}
		prev = m.Azimuth
		if m.LeftDelay < 0 || m.RightDelay < 0 || !core.IsFinite(m.LeftDelay) || !core.IsFinite(m.RightDelay) {
			return fmt.Errorf("hrtf: measurement %d delays must be >= 0 and finite: %f/%f", i, m.LeftDelay, m.RightDelay)
		}
		for k := range m.Left {
			if !core.IsFinite(m.Left[k]) || !core.IsFinite(m.Right[k]) {
				return fmt.Errorf("hrtf: measurement %d tap %d is not finite", i, k)
			}
		}
	}
	return nil
}

// Taps returns the FIR length shared by all measurements.
func (s *Set) Taps() int {
	if len(s.Measurements) == 0 {
		return 0
	}
	return len(s.Measurements[0].Left)
}

// MaxDelay returns the largest per-ear delay in the set, in samples.
func (s *Set) MaxDelay() float64 {
	maxDelay := 0.0
	for _, m := range s.Measurements {
		maxDelay = math.Max(maxDelay, math.Max(m.LeftDelay, m.RightDelay))
	}
	return maxDelay
}

// Neighbors returns the indices of the measurements bracketing azimuth and the
// blend weight of the second one. The ring wraps at 2π. It does not allocate.
func (s *Set) Neighbors(azimuth float64) (i, j int, w float64) {
	n := len(s.Measurements)
	if n == 1 {
		return 0, 0, 0
	}
	azimuth = core.WrapPhase(azimuth)

	// Largest i with Measurements[i].Azimuth <= azimuth.
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s.Measurements[mid].Azimuth <= azimuth {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	i = lo - 1
	if i < 0 {
		i = n - 1
	}
	j = i + 1
	if j == n {
		j = 0
	}

	span := s.Measurements[j].Azimuth - s.Measurements[i].Azimuth
	if span <= 0 {
		span += 2 * math.Pi
	}
	offset := azimuth - s.Measurements[i].Azimuth
	if offset < 0 {
		offset += 2 * math.Pi
	}
	w = core.Clamp(offset/span, 0, 1)
	return i, j, w
}

// InterpolateInto blends the two measurements nearest to azimuth into left and
// right (len == Taps()) and returns the blended delays. Blending happens on
// the coefficients, never on rendered output.
func (s *Set) InterpolateInto(azimuth float64, left, right []float64) (leftDelay, rightDelay float64) {
	i, j, w := s.Neighbors(azimuth)
	a, b := &s.Measurements[i], &s.Measurements[j]

	interp.LerpInto(left, a.Left, b.Left, w)
	interp.LerpInto(right, a.Right, b.Right, w)
	return interp.Lerp(a.LeftDelay, b.LeftDelay, w), interp.Lerp(a.RightDelay, b.RightDelay, w)
}
