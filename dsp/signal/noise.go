package signal

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Distribution selects the amplitude distribution of a Noise source.
type Distribution int

const (
	// Uniform draws evenly from [-amplitude, amplitude).
	Uniform Distribution = iota
	// Gaussian draws normal samples with sigma = amplitude/3, clamped into
	// [-amplitude, amplitude).
	Gaussian
)

func (d Distribution) String() string {
	switch d {
	case Uniform:
		return "uniform"
	case Gaussian:
		return "gaussian"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// golden ratio increment, used to derive the second PCG word from the seed.
const seedStream = 0x9e3779b97f4a7c15

// NoiseOption configures a Noise source.
type NoiseOption func(*noiseConfig) error

type noiseConfig struct {
	seed         uint64
	amplitude    float64
	distribution Distribution
}

func defaultNoiseConfig() noiseConfig {
	return noiseConfig{
		seed:         1,
		amplitude:    1,
		distribution: Uniform,
	}
}

// WithSeed sets the deterministic generator seed.
func WithSeed(seed uint64) NoiseOption {
	return func(cfg *noiseConfig) error {
		cfg.seed = seed
		return nil
	}
}

// WithAmplitude sets the peak amplitude of the produced samples.
func WithAmplitude(amplitude float64) NoiseOption {
	return func(cfg *noiseConfig) error {
		if amplitude < 0 || !core.IsFinite(amplitude) {
			return fmt.Errorf("signal: noise amplitude must be >= 0 and finite: %f", amplitude)
		}
		cfg.amplitude = amplitude
		return nil
	}
}

// WithDistribution selects the sample distribution.
func WithDistribution(d Distribution) NoiseOption {
	return func(cfg *noiseConfig) error {
		switch d {
		case Uniform, Gaussian:
			cfg.distribution = d
			return nil
		default:
			return fmt.Errorf("signal: noise distribution is invalid: %d", d)
		}
	}
}

// Noise is a seeded white-noise source pulled one sample at a time.
// It is not safe for concurrent use; the render path owns it exclusively.
type Noise struct {
	cfg   noiseConfig
	pcg   *rand.PCG
	rng   *rand.Rand
	upper float64 // largest value strictly below amplitude
}

// NewNoise creates a noise source. All validation happens here; Next never fails.
func NewNoise(opts ...NoiseOption) (*Noise, error) {
	cfg := defaultNoiseConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	pcg := rand.NewPCG(cfg.seed, cfg.seed^seedStream)
	return &Noise{
		cfg:   cfg,
		pcg:   pcg,
		rng:   rand.New(pcg),
		upper: math.Nextafter(cfg.amplitude, math.Inf(-1)),
	}, nil
}

// Amplitude returns the configured peak amplitude.
func (n *Noise) Amplitude() float64 {
	return n.cfg.amplitude
}

// Seed returns the construction seed.
func (n *Noise) Seed() uint64 {
	return n.cfg.seed
}

// Distribution returns the configured distribution.
func (n *Noise) Distribution() Distribution {
	return n.cfg.distribution
}

// Next returns the next sample and advances the generator exactly once.
func (n *Noise) Next() float64 {
	a := n.cfg.amplitude
	if n.cfg.distribution == Gaussian {
		v := n.rng.NormFloat64() * a / 3
		if v < -a {
			return -a
		}
		if v > n.upper {
			return max(n.upper, -a)
		}
		return v
	}
	return (2*n.rng.Float64() - 1) * a
}

// Fill writes successive samples into buf.
func (n *Noise) Fill(buf []float64) {
	for i := range buf {
		buf[i] = n.Next()
	}
}

// Reset rewinds the generator to its construction seed.
func (n *Noise) Reset() {
	n.pcg.Seed(n.cfg.seed, n.cfg.seed^seedStream)
}
