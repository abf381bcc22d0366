// Package otohost plays streams on the system output through
// github.com/ebitengine/oto/v3.
//
// oto pulls audio through an io.Reader on its own goroutine; each Read is
// one data callback. oto allows a single context per process, so every
// stream built in a process must share one configuration.
//
// Building with the headless tag replaces oto with a backend that always
// fails to open.
package otohost

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-binaural/host"
)

const (
	// MinSampleRate and MaxSampleRate bound the rates the device advertises.
	MinSampleRate = 8000
	MaxSampleRate = 192000

	// DefaultBufferFrames sizes the pre-allocated callback buffer when the
	// StreamConfig does not name one.
	DefaultBufferFrames = 1024
	// DefaultPollInterval is how often a playing stream checks the player
	// for errors.
	DefaultPollInterval = 100 * time.Millisecond
)

// ErrContextInUse is returned when a stream asks for a configuration other
// than the one the process-wide oto context was opened with.
var ErrContextInUse = errors.New("otohost: oto context already open with another configuration")

// formats oto can play, in preference order.
var formats = []host.SampleFormat{host.FormatF32, host.FormatI16, host.FormatU8}

type contextConfig struct {
	SampleRate int
	Channels   int
	Format     host.SampleFormat
	Buffer     time.Duration
}

func (c contextConfig) sameStream(o contextConfig) bool {
	return c.SampleRate == o.SampleRate && c.Channels == o.Channels && c.Format == o.Format
}

type backend interface {
	NewPlayer(r io.Reader) player
}

type player interface {
	Play()
	Pause()
	Err() error
	Close()
}

var (
	sharedMu  sync.Mutex
	shared    backend
	sharedCfg contextConfig
)

// acquire returns the process-wide backend, opening it on first use.
func acquire(cfg contextConfig) (backend, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		if !sharedCfg.sameStream(cfg) {
			return nil, fmt.Errorf("%w: open %d ch @ %d Hz %v, want %d ch @ %d Hz %v", ErrContextInUse,
				sharedCfg.Channels, sharedCfg.SampleRate, sharedCfg.Format,
				cfg.Channels, cfg.SampleRate, cfg.Format)
		}
		return shared, nil
	}
	b, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	shared, sharedCfg = b, cfg
	return b, nil
}

// Option configures a Device.
type Option func(*Device) error

// WithMaxChannels sets the largest channel count the device advertises.
func WithMaxChannels(n int) Option {
	return func(d *Device) error {
		if n < 1 {
			return fmt.Errorf("otohost: max channels must be >= 1: %d", n)
		}
		d.maxChannels = n
		return nil
	}
}

// WithName sets the device name.
func WithName(name string) Option {
	return func(d *Device) error {
		d.name = name
		return nil
	}
}

// WithPollInterval sets how often a playing stream checks for player errors.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		if interval <= 0 {
			return fmt.Errorf("otohost: poll interval must be > 0: %v", interval)
		}
		d.poll = interval
		return nil
	}
}

// Device is the default system output.
type Device struct {
	name        string
	maxChannels int
	poll        time.Duration
}

// New returns the system output device. Nothing is opened until a stream
// is built.
func New(opts ...Option) (*Device, error) {
	d := &Device{
		name:        "oto",
		maxChannels: 2,
		poll:        DefaultPollInterval,
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

// DefaultOutputConfig is stereo (or fewer channels if capped) F32 at 44.1 kHz.
func (d *Device) DefaultOutputConfig() (host.DefaultConfig, error) {
	return host.DefaultConfig{Channels: min(2, d.maxChannels), SampleRate: 44100, Format: host.FormatF32}, nil
}

// SupportedOutputConfigs lists the formats oto can open.
func (d *Device) SupportedOutputConfigs() ([]host.SupportedConfigRange, error) {
	out := make([]host.SupportedConfigRange, 0, len(formats))
	for _, f := range formats {
		out = append(out, host.SupportedConfigRange{
			MinChannels:   1,
			MaxChannels:   d.maxChannels,
			MinSampleRate: MinSampleRate,
			MaxSampleRate: MaxSampleRate,
			Format:        f,
		})
	}
	return out, nil
}

// BuildOutputStream opens the oto context if needed and returns a paused
// stream.
func (d *Device) BuildOutputStream(cfg host.StreamConfig, format host.SampleFormat, data host.DataCallback, onErr host.ErrorCallback) (host.Stream, error) {
	fail := func(err error) (host.Stream, error) {
		return nil, &host.StreamBuildError{Device: d.name, Err: err}
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
	if data == nil {
		return fail(errors.New("nil data callback"))
	}
	if cfg.BufferFrames < 0 {
		return fail(fmt.Errorf("negative buffer size %d", cfg.BufferFrames))
	}
	if cfg.BufferFrames == 0 {
		cfg.BufferFrames = DefaultBufferFrames
	}

	s, err := newStream(cfg, format, data, onErr)
	if err != nil {
		return fail(err)
	}
	b, err := acquire(contextConfig{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		Format:     format,
		Buffer:     s.latency,
	})
	if err != nil {
		return fail(err)
	}
	s.player = b.NewPlayer(s)
	s.poll = d.poll
	return s, nil
}

// Stream feeds an oto player from a data callback.
type Stream struct {
	cfg        host.StreamConfig
	format     host.SampleFormat
	frameBytes int
	latency    time.Duration
	fill       host.DataCallback
	onErr      host.ErrorCallback
	player     player
	poll       time.Duration

	// Read state, owned by the oto goroutine. readMu is only ever taken by
	// Read and once by Close, so Read does not contend with anything while
	// the stream is open.
	readMu sync.Mutex
	data   *host.Data
	frame  int64

	closed  atomic.Bool
	ctlMu   sync.Mutex
	playing bool
	stop    chan struct{}
	watcher sync.WaitGroup
}

func newStream(cfg host.StreamConfig, format host.SampleFormat, data host.DataCallback, onErr host.ErrorCallback) (*Stream, error) {
	buf, err := host.MakeData(format, cfg.BufferFrames*cfg.Channels)
	if err != nil {
		return nil, err
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	return &Stream{
		cfg:        cfg,
		format:     format,
		frameBytes: cfg.Channels * format.Size(),
		latency:    time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
		fill:       data,
		onErr:      onErr,
		data:       buf,
		stop:       make(chan struct{}),
	}, nil
}

// Read renders len(p)/frameBytes whole frames into p. It is called by oto.
func (s *Stream) Read(p []byte) (int, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	if s.closed.Load() {
		return 0, io.EOF
	}

	frames := len(p) / s.frameBytes
	if frames == 0 {
		return 0, nil
	}
	samples := frames * s.cfg.Channels
	if samples > s.data.Cap() {
		grown, err := host.MakeData(s.format, samples)
		if err != nil {
			return 0, err
		}
		s.data = grown
	}
	s.data.Resize(samples)

	now := host.InstantAtFrame(s.frame, s.cfg.SampleRate)
	s.fill(s.data, host.OutputCallbackInfo{Callback: now, Playback: now.Add(s.latency)})
	s.frame += int64(frames)

	encode(p, s.data)
	return frames * s.frameBytes, nil
}

// encode writes d little-endian into p.
func encode(p []byte, d *host.Data) {
	switch d.Format() {
	case host.FormatF32:
		buf, _ := host.Slice[float32](d)
		for i, v := range buf {
			binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
		}
	case host.FormatI16:
		buf, _ := host.Slice[int16](d)
		for i, v := range buf {
			binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
		}
	case host.FormatU16:
		buf, _ := host.Slice[uint16](d)
		for i, v := range buf {
			binary.LittleEndian.PutUint16(p[2*i:], v)
		}
	case host.FormatU8:
		buf, _ := host.Slice[uint8](d)
		copy(p, buf)
	}
}

// Latency is the buffer duration playback lags the callback by.
func (s *Stream) Latency() time.Duration { return s.latency }

// Play starts playback and the error watcher.
func (s *Stream) Play() error {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()
	if s.closed.Load() {
		return host.ErrStreamClosed
	}
	if s.playing {
		return nil
	}
	s.playing = true
	s.player.Play()
	s.watcher.Add(1)
	go s.watch()
	return nil
}

// watch reports the first player error through the error callback.
func (s *Stream) watch() {
	defer s.watcher.Done()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.player.Err(); err != nil {
				s.onErr(&host.CallbackError{Err: err})
				return
			}
		}
	}
}

// Close stops playback. No data callback runs after Close returns. The
// process-wide oto context stays open for later streams.
func (s *Stream) Close() error {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()
	if s.closed.Load() {
		return nil
	}
	// Taking readMu waits out a Read already in flight.
	s.readMu.Lock()
	s.closed.Store(true)
	s.readMu.Unlock()

	close(s.stop)
	s.watcher.Wait()
	s.player.Pause()
	s.player.Close()
	return nil
}
