package hrtf

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/delay"
	"github.com/cwbudde/algo-binaural/dsp/rotation"
)

// DefaultRampSamples is the coefficient transition length, about 5.8 ms at 44.1 kHz.
const DefaultRampSamples = 256

// SpatializerOption mutates construction-time parameters.
type SpatializerOption func(*spatializerConfig) error

type spatializerConfig struct {
	provider    Provider
	rampSamples int
}

// WithProvider sets the HRIR provider. The default is a SphericalHead with
// default options.
func WithProvider(provider Provider) SpatializerOption {
	return func(cfg *spatializerConfig) error {
		if provider == nil {
			return fmt.Errorf("hrtf: spatializer provider must not be nil")
		}
		cfg.provider = provider
		return nil
	}
}

// WithRampSamples sets how many samples a coefficient transition takes.
// 0 or 1 switches instantly.
func WithRampSamples(n int) SpatializerOption {
	return func(cfg *spatializerConfig) error {
		if n < 0 {
			return fmt.Errorf("hrtf: spatializer ramp must be >= 0: %d", n)
		}
		cfg.rampSamples = n
		return nil
	}
}

// Spatializer filters a mono stream into two ear signals for a movable source.
// It is not safe for concurrent use.
type Spatializer struct {
	sampleRate  float64
	channels    int
	set         *Set
	rampSamples int
	remaining   int

	left  ear
	right ear

	last rotation.Position
}

// NewSpatializer creates a spatializer writing channels output values per
// frame. channels must be at least 2: out[0] is the left ear, out[1] the
// right, and any further channels are silent.
func NewSpatializer(sampleRate float64, channels int, opts ...SpatializerOption) (*Spatializer, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("hrtf: spatializer sample rate must be > 0 and finite: %f", sampleRate)
	}
	if channels < 2 {
		return nil, fmt.Errorf("hrtf: spatializer needs at least 2 channels: %d", channels)
	}

	cfg := spatializerConfig{rampSamples: DefaultRampSamples}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.provider == nil {
		head, err := NewSphericalHead()
		if err != nil {
			return nil, err
		}
		cfg.provider = head
	}

	set, err := cfg.provider.HRIRSet(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("hrtf: spatializer HRIR load failed: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if !core.NearlyEqual(set.SampleRate, sampleRate, 1e-9) {
		return nil, fmt.Errorf("hrtf: set sample rate %f does not match stream rate %f", set.SampleRate, sampleRate)
	}

	s := &Spatializer{
		sampleRate:  sampleRate,
		channels:    channels,
		set:         set,
		rampSamples: cfg.rampSamples,
	}
	maxDelay := set.MaxDelay()
	if err := s.left.init(set.Taps(), maxDelay); err != nil {
		return nil, err
	}
	if err := s.right.init(set.Taps(), maxDelay); err != nil {
		return nil, err
	}

	s.aim(rotation.Origin())
	s.snap()
	return s, nil
}

// Channels returns the number of values written per frame.
func (s *Spatializer) Channels() int {
	return s.channels
}

// Taps returns the FIR length per ear.
func (s *Spatializer) Taps() int {
	return s.set.Taps()
}

// SampleRate returns the stream sample rate.
func (s *Spatializer) SampleRate() float64 {
	return s.sampleRate
}

// Position returns the most recent target position.
func (s *Spatializer) Position() rotation.Position {
	return s.last
}

// Ramping reports whether a coefficient transition is in progress.
func (s *Spatializer) Ramping() bool {
	return s.remaining > 0
}

// SetPosition retargets the filters to p. The live coefficients move to the
// interpolated target over the configured ramp, starting from wherever they
// currently are. Filter history is kept.
func (s *Spatializer) SetPosition(p rotation.Position) {
	if p == s.last {
		return
	}
	s.aim(p)
	if s.rampSamples <= 1 {
		s.snap()
		return
	}

	inv := 1 / float64(s.rampSamples)
	s.left.plan(inv)
	s.right.plan(inv)
	s.remaining = s.rampSamples
}

// Process filters one mono sample and returns the left and right ear values.
func (s *Spatializer) Process(x float64) (float64, float64) {
	if s.remaining > 0 {
		s.remaining--
		if s.remaining == 0 {
			s.snap()
		} else {
			s.left.advance()
			s.right.advance()
		}
	}
	return s.left.process(x), s.right.process(x)
}

// RenderFrame spatializes one sample at position p and writes Channels()
// values into out (fewer if out is shorter).
func (s *Spatializer) RenderFrame(x float64, p rotation.Position, out []float64) {
	s.SetPosition(p)
	l, r := s.Process(x)

	n := min(len(out), s.channels)
	if n > 0 {
		out[0] = l
	}
	if n > 1 {
		out[1] = r
	}
	for c := 2; c < n; c++ {
		out[c] = 0
	}
}

// Reset clears filter histories and snaps to the current target. It is for
// reuse across streams; the render path never calls it.
func (s *Spatializer) Reset() {
	s.left.reset()
	s.right.reset()
	s.snap()
}

func (s *Spatializer) aim(p rotation.Position) {
	s.last = p
	az := p.Azimuth()
	s.left.delayTarget, s.right.delayTarget = s.set.InterpolateInto(az, s.left.target, s.right.target)
}

func (s *Spatializer) snap() {
	s.left.snap()
	s.right.snap()
	s.remaining = 0
}

// ear is the per-ear filter state: fractional onset delay followed by a FIR.
type ear struct {
	coeffs []float64
	target []float64
	step   []float64
	hist   []float64
	pos    int

	line        *delay.Line
	delay       float64
	delayTarget float64
	delayStep   float64
}

func (e *ear) init(taps int, maxDelay float64) error {
	line, err := delay.ForMaxDelay(maxDelay)
	if err != nil {
		return fmt.Errorf("hrtf: %w", err)
	}
	e.coeffs = make([]float64, taps)
	e.target = make([]float64, taps)
	e.step = make([]float64, taps)
	e.hist = make([]float64, taps)
	e.line = line
	return nil
}

func (e *ear) plan(inv float64) {
	for k := range e.coeffs {
		e.step[k] = (e.target[k] - e.coeffs[k]) * inv
	}
	e.delayStep = (e.delayTarget - e.delay) * inv
}

func (e *ear) advance() {
	for k := range e.coeffs {
		e.coeffs[k] += e.step[k]
	}
	e.delay += e.delayStep
}

func (e *ear) snap() {
	copy(e.coeffs, e.target)
	core.Zero(e.step)
	e.delay = e.delayTarget
	e.delayStep = 0
}

func (e *ear) process(x float64) float64 {
	e.hist[e.pos] = e.line.WriteRead(x, e.delay)

	n := len(e.coeffs)
	sum := 0.0
	idx := e.pos
	for k := 0; k < n; k++ {
		sum += e.coeffs[k] * e.hist[idx]
		idx--
		if idx < 0 {
			idx = n - 1
		}
	}

	e.pos++
	if e.pos >= n {
		e.pos = 0
	}
	return core.FlushDenormals(sum)
}

func (e *ear) reset() {
	core.Zero(e.hist)
	e.pos = 0
	e.line.Reset()
}
