// Package virtual provides a headless output device. Streams are driven
// either synchronously with Pump or in real time by a ticker after Play.
package virtual

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-binaural/host"
)

// DefaultBufferFrames is the callback size used when the StreamConfig does
// not name one.
const DefaultBufferFrames = 512

// ErrRunning is returned by Pump while the stream plays in real time.
var ErrRunning = errors.New("virtual: stream is playing")

// Clock returns the callback info for the callback whose first frame is
// frame. It lets tests inject missing or non-monotonic timestamps.
type Clock func(frame int64, sampleRate int) host.OutputCallbackInfo

// FrameClock is the default Clock. Callback time is derived from frames
// delivered and playback lags it by latency.
func FrameClock(latency time.Duration) Clock {
	return func(frame int64, sampleRate int) host.OutputCallbackInfo {
		now := host.InstantAtFrame(frame, sampleRate)
		return host.OutputCallbackInfo{Callback: now, Playback: now.Add(latency)}
	}
}

// Option configures a Device.
type Option func(*Device) error

// WithName sets the device name.
func WithName(name string) Option {
	return func(d *Device) error {
		d.name = name
		return nil
	}
}

// WithChannels sets the supported channel range.
func WithChannels(lo, hi int) Option {
	return func(d *Device) error {
		if lo < 1 || hi < lo {
			return fmt.Errorf("virtual: channel range invalid: %d..%d", lo, hi)
		}
		d.minChannels, d.maxChannels = lo, hi
		return nil
	}
}

// WithSampleRates sets the supported sample rate range.
func WithSampleRates(lo, hi int) Option {
	return func(d *Device) error {
		if lo < 1 || hi < lo {
			return fmt.Errorf("virtual: sample rate range invalid: %d..%d", lo, hi)
		}
		d.minRate, d.maxRate = lo, hi
		return nil
	}
}

// WithFormats sets the offered formats. The first is the default.
func WithFormats(formats ...host.SampleFormat) Option {
	return func(d *Device) error {
		if len(formats) == 0 {
			return errors.New("virtual: no formats")
		}
		for _, f := range formats {
			if !f.Valid() {
				return fmt.Errorf("virtual: format invalid: %v", f)
			}
		}
		d.formats = append([]host.SampleFormat(nil), formats...)
		return nil
	}
}

// WithClock replaces the timestamp source.
func WithClock(c Clock) Option {
	return func(d *Device) error {
		if c == nil {
			return errors.New("virtual: nil clock")
		}
		d.clock = c
		return nil
	}
}

// Device is an in-memory output device.
type Device struct {
	name                     string
	minChannels, maxChannels int
	minRate, maxRate         int
	formats                  []host.SampleFormat
	clock                    Clock
}

// New returns a stereo 44.1 kHz float device unless options say otherwise.
func New(opts ...Option) (*Device, error) {
	d := &Device{
		name:        "virtual",
		minChannels: 1,
		maxChannels: 2,
		minRate:     8000,
		maxRate:     192000,
		formats:     []host.SampleFormat{host.FormatF32, host.FormatI16, host.FormatU16, host.FormatU8},
		clock:       FrameClock(0),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// DefaultOutputConfig uses every channel and the first configured format,
// at 44.1 kHz when the rate range allows it.
func (d *Device) DefaultOutputConfig() (host.DefaultConfig, error) {
	rate := min(max(44100, d.minRate), d.maxRate)
	return host.DefaultConfig{Channels: d.maxChannels, SampleRate: rate, Format: d.formats[0]}, nil
}

// SupportedOutputConfigs returns one range per configured format.
func (d *Device) SupportedOutputConfigs() ([]host.SupportedConfigRange, error) {
	out := make([]host.SupportedConfigRange, 0, len(d.formats))
	for _, f := range d.formats {
		out = append(out, host.SupportedConfigRange{
			MinChannels:   d.minChannels,
			MaxChannels:   d.maxChannels,
			MinSampleRate: d.minRate,
			MaxSampleRate: d.maxRate,
			Format:        f,
		})
	}
	return out, nil
}

// BuildOutputStream returns a paused *Stream.
func (d *Device) BuildOutputStream(cfg host.StreamConfig, format host.SampleFormat, data host.DataCallback, onErr host.ErrorCallback) (host.Stream, error) {
	return d.Build(cfg, format, data, onErr)
}

// Build is BuildOutputStream with the concrete stream type.
func (d *Device) Build(cfg host.StreamConfig, format host.SampleFormat, data host.DataCallback, onErr host.ErrorCallback) (*Stream, error) {
	fail := func(err error) (*Stream, error) {
		return nil, &host.StreamBuildError{Device: d.name, Err: err}
	}
	if data == nil {
		return fail(errors.New("nil data callback"))
	}
	supported := false
	ranges, _ := d.SupportedOutputConfigs()
	for _, r := range ranges {
		if r.Format == format && r.Accepts(cfg.Channels, cfg.SampleRate) {
			supported = true
			break
		}
	}
	if !supported {
		return fail(fmt.Errorf("unsupported config %d ch @ %d Hz %v", cfg.Channels, cfg.SampleRate, format))
	}
	if cfg.BufferFrames < 0 {
		return fail(fmt.Errorf("negative buffer size %d", cfg.BufferFrames))
	}
	if cfg.BufferFrames == 0 {
		cfg.BufferFrames = DefaultBufferFrames
	}
	buf, err := host.MakeData(format, cfg.BufferFrames*cfg.Channels)
	if err != nil {
		return fail(err)
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	return &Stream{
		cfg:   cfg,
		data:  buf,
		fill:  data,
		onErr: onErr,
		clock: d.clock,
	}, nil
}

// Stream is a virtual output stream.
type Stream struct {
	cfg   host.StreamConfig
	data  *host.Data
	fill  host.DataCallback
	onErr host.ErrorCallback
	clock Clock

	mu      sync.Mutex
	frame   int64
	calls   int
	closed  bool
	stop    chan struct{}
	stopped chan struct{}
}

// Config returns the stream configuration with defaults applied.
func (s *Stream) Config() host.StreamConfig { return s.cfg }

// Data returns the buffer handed to every callback.
func (s *Stream) Data() *host.Data { return s.data }

// Frames returns the number of frames delivered so far.
func (s *Stream) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Callbacks returns the number of data callbacks made so far.
func (s *Stream) Callbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Pump runs n callbacks on the calling goroutine.
func (s *Stream) Pump(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return host.ErrStreamClosed
	case s.stop != nil:
		return ErrRunning
	}
	for range n {
		s.tick()
	}
	return nil
}

// PumpFrames runs a single callback sized to frames, clamped to the
// buffer capacity.
func (s *Stream) PumpFrames(frames int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return host.ErrStreamClosed
	case s.stop != nil:
		return ErrRunning
	}
	s.data.Resize(frames * s.cfg.Channels)
	s.deliver()
	s.data.Resize(s.data.Cap())
	return nil
}

// tick runs one full-buffer callback. s.mu must be held.
func (s *Stream) tick() {
	s.data.Resize(s.data.Cap())
	s.deliver()
}

func (s *Stream) deliver() {
	frames := s.data.Len() / s.cfg.Channels
	s.fill(s.data, s.clock(s.frame, s.cfg.SampleRate))
	s.frame += int64(frames)
	s.calls++
}

// Play starts delivering buffers at the configured real-time rate.
func (s *Stream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return host.ErrStreamClosed
	}
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	period := time.Duration(s.cfg.BufferFrames) * time.Second / time.Duration(s.cfg.SampleRate)
	if period <= 0 {
		period = time.Millisecond
	}
	go s.run(period, s.stop, s.stopped)
	return nil
}

func (s *Stream) run(period time.Duration, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.tick()
			s.mu.Unlock()
		}
	}
}

// Close stops playback and waits for the delivery goroutine to exit.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stop, stopped := s.stop, s.stopped
	s.mu.Unlock()
	if stop != nil {
		close(stop)
		<-stopped
	}
	return nil
}

// Fail reports err to the error callback as a *host.CallbackError.
func (s *Stream) Fail(err error) {
	s.onErr(&host.CallbackError{Err: err})
}
