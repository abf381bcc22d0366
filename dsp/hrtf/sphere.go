package hrtf

import (
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/window"
)

const (
	// DefaultHeadRadius is an average adult head radius in metres.
	DefaultHeadRadius = 0.0875
	// DefaultSpeedOfSound is the speed of sound in air at 20 °C, in m/s.
	DefaultSpeedOfSound = 343.0
	// DefaultAzimuthStep is the spacing of synthesized measurements in degrees.
	DefaultAzimuthStep = 5.0
	// DefaultTaps is the FIR length of synthesized measurements.
	DefaultTaps = 64
	// DefaultFFTSize is the frequency grid used to design each FIR.
	DefaultFFTSize = 512

	// Brown–Duda head-shadow constants.
	shadowAlphaMin = 0.1
	shadowThetaMin = 150.0 * math.Pi / 180.0
)

// SphericalHeadOption configures a SphericalHead provider.
type SphericalHeadOption func(*SphericalHead) error

// WithHeadRadius sets the head radius in metres.
func WithHeadRadius(metres float64) SphericalHeadOption {
	return func(h *SphericalHead) error {
		if metres <= 0 || !core.IsFinite(metres) {
			return fmt.Errorf("hrtf: head radius must be > 0 and finite: %f", metres)
		}
		h.radius = metres
		return nil
	}
}

// WithSpeedOfSound sets the speed of sound in m/s.
func WithSpeedOfSound(mps float64) SphericalHeadOption {
	return func(h *SphericalHead) error {
		if mps <= 0 || !core.IsFinite(mps) {
			return fmt.Errorf("hrtf: speed of sound must be > 0 and finite: %f", mps)
		}
		h.speedOfSound = mps
		return nil
	}
}

// WithAzimuthStep sets the measurement spacing in degrees. The step is
// rounded so that a whole number of measurements covers the circle.
func WithAzimuthStep(degrees float64) SphericalHeadOption {
	return func(h *SphericalHead) error {
		if degrees <= 0 || degrees > 180 || !core.IsFinite(degrees) {
			return fmt.Errorf("hrtf: azimuth step must be in (0, 180] degrees: %f", degrees)
		}
		h.azimuthStep = degrees
		return nil
	}
}

// WithTaps sets the synthesized FIR length.
func WithTaps(taps int) SphericalHeadOption {
	return func(h *SphericalHead) error {
		if taps <= 0 {
			return fmt.Errorf("hrtf: taps must be > 0: %d", taps)
		}
		h.taps = taps
		return nil
	}
}

// WithFFTSize sets the design grid size. It must be a power of two.
func WithFFTSize(n int) SphericalHeadOption {
	return func(h *SphericalHead) error {
		if n < 2 || bits.OnesCount(uint(n)) != 1 {
			return fmt.Errorf("hrtf: fft size must be a power of two >= 2: %d", n)
		}
		h.fftSize = n
		return nil
	}
}

// SphericalHead synthesizes HRIRs for a rigid sphere with ears at ±90°.
type SphericalHead struct {
	radius       float64
	speedOfSound float64
	azimuthStep  float64
	taps         int
	fftSize      int
}

// NewSphericalHead creates a spherical-head provider.
func NewSphericalHead(opts ...SphericalHeadOption) (*SphericalHead, error) {
	h := &SphericalHead{
		radius:       DefaultHeadRadius,
		speedOfSound: DefaultSpeedOfSound,
		azimuthStep:  DefaultAzimuthStep,
		taps:         DefaultTaps,
		fftSize:      DefaultFFTSize,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	if h.taps > h.fftSize {
		return nil, fmt.Errorf("hrtf: taps (%d) must not exceed fft size (%d)", h.taps, h.fftSize)
	}
	return h, nil
}

// HRIRSet implements Provider.
func (h *SphericalHead) HRIRSet(sampleRate float64) (*Set, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("hrtf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(h.fftSize)
	if err != nil {
		return nil, fmt.Errorf("hrtf: failed to create FFT plan: %w", err)
	}

	count := int(math.Round(360 / h.azimuthStep))
	if count < 1 {
		count = 1
	}
	step := 2 * math.Pi / float64(count)

	taper, err := window.FadeOut(h.taps, 0.25)
	if err != nil {
		return nil, err
	}
	d := designer{
		head:       h,
		sampleRate: sampleRate,
		plan:       plan,
		spectrum:   make([]complex128, h.fftSize),
		impulse:    make([]complex128, h.fftSize),
		taper:      taper,
	}

	set := &Set{
		SampleRate:   sampleRate,
		Measurements: make([]Measurement, count),
	}
	for i := range set.Measurements {
		az := float64(i) * step
		m := &set.Measurements[i]
		m.Azimuth = az

		thetaL := incidence(az, 1.5*math.Pi)
		thetaR := incidence(az, 0.5*math.Pi)

		if m.Left, err = d.shadowFIR(thetaL); err != nil {
			return nil, err
		}
		if m.Right, err = d.shadowFIR(thetaR); err != nil {
			return nil, err
		}
		m.LeftDelay = h.woodworthDelay(thetaL) * sampleRate
		m.RightDelay = h.woodworthDelay(thetaR) * sampleRate
	}
	return set, nil
}

// woodworthDelay is the arrival delay in seconds for incidence angle theta,
// offset by radius/c so the ear facing the source has zero delay.
func (h *SphericalHead) woodworthDelay(theta float64) float64 {
	ac := h.radius / h.speedOfSound
	if theta < math.Pi/2 {
		return ac * (1 - math.Cos(theta))
	}
	return ac * (1 + theta - math.Pi/2)
}

// incidence returns the angle in [0, π] between the source azimuth and an
// ear's axis.
func incidence(azimuth, ear float64) float64 {
	d := math.Mod(math.Abs(azimuth-ear), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// shadowAlpha is the high-frequency gain of the head-shadow filter.
func shadowAlpha(theta float64) float64 {
	return (1 + shadowAlphaMin/2) + (1-shadowAlphaMin/2)*math.Cos(theta/shadowThetaMin*math.Pi)
}

type designer struct {
	head       *SphericalHead
	sampleRate float64
	plan       *algofft.Plan[complex128]
	spectrum   []complex128
	impulse    []complex128
	taper      []float64
}

// shadowFIR evaluates H(jω) = (1 + jαω/2ω0) / (1 + jω/2ω0), ω0 = c/a, on the
// FFT grid, inverse-transforms it and tapers the tail.
func (d *designer) shadowFIR(theta float64) ([]float64, error) {
	n := len(d.spectrum)
	w0 := d.head.speedOfSound / d.head.radius
	alpha := shadowAlpha(theta)

	for k := 0; k <= n/2; k++ {
		w := 2 * math.Pi * float64(k) * d.sampleRate / float64(n)
		x := w / (2 * w0)
		h := complex(1, alpha*x) / complex(1, x)
		if k == n/2 {
			h = complex(real(h), 0)
		}
		d.spectrum[k] = h
		if k > 0 && k < n/2 {
			d.spectrum[n-k] = complex(real(h), -imag(h))
		}
	}

	if err := d.plan.Inverse(d.impulse, d.spectrum); err != nil {
		return nil, fmt.Errorf("hrtf: inverse FFT failed: %w", err)
	}

	fir := make([]float64, len(d.taper))
	for i := range fir {
		fir[i] = real(d.impulse[i])
	}
	if err := window.ApplyInPlace(fir, d.taper); err != nil {
		return nil, err
	}
	return fir, nil
}
