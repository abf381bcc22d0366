package render

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/hrtf"
	"github.com/cwbudde/algo-binaural/dsp/rotation"
	"github.com/cwbudde/algo-binaural/dsp/sample"
	"github.com/cwbudde/algo-binaural/dsp/signal"
	"github.com/cwbudde/algo-binaural/host"
)

// Defaults of DefaultConfig.
const (
	// DefaultSampleRate is the stream rate in Hz.
	DefaultSampleRate = 44100
	// DefaultChannels is the output channel count.
	DefaultChannels = 2
	// DefaultRotationHz is one turn every two seconds.
	DefaultRotationHz = 0.5
	// DefaultVolume is the linear gain applied to the noise.
	DefaultVolume = 0.25
)

// ErrChannels is returned for configurations with fewer than two channels.
var ErrChannels = errors.New("render: at least 2 channels required")

// State is the playback clock state.
type State int32

const (
	// Unstarted means no valid timestamp has been seen yet.
	Unstarted State = iota
	// Running means the playback origin is latched.
	Running
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config describes the scene and the stream shape.
type Config struct {
	SampleRate float64
	Channels   int
	// RotationHz is the source's turns per second around the listener.
	RotationHz float64
	// Volume scales the noise before spatialization.
	Volume float64
}

// DefaultConfig returns a stereo 44.1 kHz scene turning at 0.5 Hz at volume
// 0.25.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		RotationHz: DefaultRotationHz,
		Volume:     DefaultVolume,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SampleRate <= 0 || !core.IsFinite(c.SampleRate) {
		return fmt.Errorf("render: sample rate must be > 0 and finite: %f", c.SampleRate)
	}
	if c.Channels < 2 {
		return fmt.Errorf("%w: %d", ErrChannels, c.Channels)
	}
	if !core.IsFinite(c.RotationHz) {
		return fmt.Errorf("render: rotation rate must be finite: %f", c.RotationHz)
	}
	if c.Volume < 0 || !core.IsFinite(c.Volume) {
		return fmt.Errorf("render: volume must be >= 0 and finite: %f", c.Volume)
	}
	return nil
}

// Option configures the parts a Renderer builds.
type Option func(*options) error

type options struct {
	seed     uint64
	noise    *signal.Noise
	spatOpts []hrtf.SpatializerOption
}

// WithSeed seeds the default noise source.
func WithSeed(seed uint64) Option {
	return func(o *options) error {
		o.seed = seed
		return nil
	}
}

// WithNoise replaces the default noise source. It takes precedence over
// WithSeed.
func WithNoise(n *signal.Noise) Option {
	return func(o *options) error {
		if n == nil {
			return fmt.Errorf("render: noise source must not be nil")
		}
		o.noise = n
		return nil
	}
}

// WithProvider sets the HRIR provider of the spatializer.
func WithProvider(p hrtf.Provider) Option {
	return func(o *options) error {
		o.spatOpts = append(o.spatOpts, hrtf.WithProvider(p))
		return nil
	}
}

// WithRampSamples sets the spatializer's coefficient transition length.
func WithRampSamples(n int) Option {
	return func(o *options) error {
		o.spatOpts = append(o.spatOpts, hrtf.WithRampSamples(n))
		return nil
	}
}

// Renderer renders the rotating noise scene. Render, Fill and the callbacks
// must be driven from one goroutine. The accessors State, Position, Elapsed
// and Frames may be called from any goroutine.
type Renderer struct {
	cfg   Config
	model rotation.Model
	noise *signal.Noise
	spat  *hrtf.Spatializer
	frame []float64

	origin host.StreamInstant

	state   atomic.Int32
	angle   atomic.Uint64
	elapsed atomic.Int64
	frames  atomic.Int64
}

// New builds a Renderer. All buffers are allocated here.
func New(cfg Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	model, err := rotation.NewModel(cfg.RotationHz)
	if err != nil {
		return nil, err
	}
	noise := o.noise
	if noise == nil {
		noise, err = signal.NewNoise(signal.WithSeed(o.seed))
		if err != nil {
			return nil, err
		}
	}
	spat, err := hrtf.NewSpatializer(cfg.SampleRate, cfg.Channels, o.spatOpts...)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		cfg:   cfg,
		model: model,
		noise: noise,
		spat:  spat,
		frame: make([]float64, cfg.Channels),
	}, nil
}

// Config returns the configuration the Renderer was built with.
func (r *Renderer) Config() Config {
	return r.cfg
}

// State returns the playback clock state.
func (r *Renderer) State() State {
	return State(r.state.Load())
}

// Position returns the source position used for the most recent buffer.
func (r *Renderer) Position() rotation.Position {
	return rotation.FromAngle(math.Float64frombits(r.angle.Load()))
}

// Elapsed returns the playback time of the most recent buffer.
func (r *Renderer) Elapsed() time.Duration {
	return time.Duration(r.elapsed.Load())
}

// Frames returns the number of frames rendered so far.
func (r *Renderer) Frames() int64 {
	return r.frames.Load()
}

// Render writes whole interleaved frames of unclamped float values into dst
// and returns the number of frames written. Trailing samples that do not
// make up a whole frame are left untouched.
func (r *Renderer) Render(dst []float64, info host.OutputCallbackInfo) int {
	return fill(r, dst, info, raw)
}

// Fill is Render with each value clamped and converted to T.
func Fill[T sample.Sample](r *Renderer, dst []T, info host.OutputCallbackInfo) int {
	return fill(r, dst, info, sample.ConverterFor[T]())
}

func raw(v float64) float64 { return v }

func fill[T sample.Sample](r *Renderer, dst []T, info host.OutputCallbackInfo, conv sample.Converter[T]) int {
	elapsed := r.advance(info.Playback)
	angle := r.model.Angle(elapsed)
	if !core.IsFinite(angle) {
		elapsed, angle = 0, 0
	}
	pos := rotation.FromAngle(angle)

	channels := r.cfg.Channels
	frames := len(dst) / channels
	out := r.frame
	for f := range frames {
		x := r.noise.Next() * r.cfg.Volume
		r.spat.RenderFrame(x, pos, out)
		row := dst[f*channels : f*channels+channels]
		for c, v := range out {
			row[c] = conv(v)
		}
	}

	r.angle.Store(math.Float64bits(angle))
	r.elapsed.Store(int64(elapsed))
	r.frames.Add(int64(frames))
	return frames
}

// advance latches the origin on the first valid timestamp and returns the
// time elapsed since it. Missing or backwards timestamps give 0.
func (r *Renderer) advance(now host.StreamInstant) time.Duration {
	if State(r.state.Load()) == Unstarted {
		if !now.IsValid() {
			return 0
		}
		r.origin = now
		r.state.Store(int32(Running))
		return 0
	}
	d, ok := now.DurationSince(r.origin)
	if !ok {
		return 0
	}
	return d
}
