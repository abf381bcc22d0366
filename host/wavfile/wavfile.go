// Package wavfile renders a stream offline into a 16-bit PCM WAV file.
//
// The device pulls buffers from the data callback as fast as it can, with
// timestamps derived from frames written, so a WAV render is sample-exact
// with a real-time one of the same duration.
package wavfile

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/host"
)

const (
	// DefaultBufferFrames is the block size used when the StreamConfig does
	// not name one.
	DefaultBufferFrames = 1024
	// DefaultDuration is the amount of audio rendered by Play.
	DefaultDuration = 10 * time.Second

	bitDepth  = 16
	formatPCM = 1
)

// ErrInUse is returned when a second stream is built on the same writer.
var ErrInUse = errors.New("wavfile: writer already has a stream")

// Option configures a Device.
type Option func(*Device) error

// WithDuration sets how much audio Play renders.
func WithDuration(d time.Duration) Option {
	return func(dev *Device) error {
		if d <= 0 {
			return fmt.Errorf("wavfile: duration must be > 0: %v", d)
		}
		dev.duration = d
		return nil
	}
}

// WithName sets the device name reported in errors.
func WithName(name string) Option {
	return func(dev *Device) error {
		dev.name = name
		return nil
	}
}

// WithMaxChannels sets the largest channel count the device accepts.
func WithMaxChannels(n int) Option {
	return func(dev *Device) error {
		if n < 1 {
			return fmt.Errorf("wavfile: max channels must be >= 1: %d", n)
		}
		dev.maxChannels = n
		return nil
	}
}

// Device writes one stream into w.
type Device struct {
	w           io.WriteSeeker
	name        string
	duration    time.Duration
	maxChannels int

	mu   sync.Mutex
	used bool
}

// New returns a device writing into w.
func New(w io.WriteSeeker, opts ...Option) (*Device, error) {
	if w == nil {
		return nil, errors.New("wavfile: nil writer")
	}
	d := &Device{
		w:           w,
		name:        "wav",
		duration:    DefaultDuration,
		maxChannels: 8,
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

// DefaultOutputConfig is stereo 16-bit at 44.1 kHz.
func (d *Device) DefaultOutputConfig() (host.DefaultConfig, error) {
	return host.DefaultConfig{Channels: min(2, d.maxChannels), SampleRate: 44100, Format: host.FormatI16}, nil
}

// SupportedOutputConfigs advertises 16-bit PCM only.
func (d *Device) SupportedOutputConfigs() ([]host.SupportedConfigRange, error) {
	return []host.SupportedConfigRange{{
		MinChannels:   1,
		MaxChannels:   d.maxChannels,
		MinSampleRate: 8000,
		MaxSampleRate: 192000,
		Format:        host.FormatI16,
	}}, nil
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
	if format != host.FormatI16 {
		return fail(fmt.Errorf("format %v not supported, need i16", format))
	}
	if cfg.Channels < 1 || cfg.Channels > d.maxChannels {
		return fail(fmt.Errorf("channel count %d outside 1..%d", cfg.Channels, d.maxChannels))
	}
	if cfg.SampleRate < 8000 || cfg.SampleRate > 192000 {
		return fail(fmt.Errorf("sample rate %d outside 8000..192000", cfg.SampleRate))
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

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.used {
		return fail(ErrInUse)
	}

	samples := cfg.BufferFrames * cfg.Channels
	pcm := make([]int16, samples)
	buf, err := host.NewData(pcm)
	if err != nil {
		return fail(err)
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	d.used = true

	total := int64(d.duration.Seconds()*float64(cfg.SampleRate) + 0.5)
	return &Stream{
		cfg:   cfg,
		total: total,
		pcm:   pcm,
		data:  buf,
		fill:  data,
		onErr: onErr,
		enc:   wav.NewEncoder(d.w, cfg.SampleRate, bitDepth, cfg.Channels, formatPCM),
		block: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: cfg.Channels, SampleRate: cfg.SampleRate},
			Data:           make([]int, samples),
			SourceBitDepth: bitDepth,
		},
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}, nil
}

// Stream renders cfg-shaped blocks into the WAV encoder.
type Stream struct {
	cfg   host.StreamConfig
	total int64
	pcm   []int16
	data  *host.Data
	fill  host.DataCallback
	onErr host.ErrorCallback
	enc   *wav.Encoder
	block *audio.IntBuffer

	mu      sync.Mutex
	started bool
	closed  bool
	frames  int64
	err     error

	stop chan struct{}
	done chan struct{}
}

// TotalFrames returns the number of frames Play renders.
func (s *Stream) TotalFrames() int64 { return s.total }

// Frames returns the number of frames written so far.
func (s *Stream) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Done is closed once every frame has been written or writing failed.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Play starts rendering in a background goroutine.
func (s *Stream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return host.ErrStreamClosed
	}
	if !s.started {
		s.started = true
		go s.run()
	}
	return nil
}

func (s *Stream) run() {
	defer close(s.done)
	var frame int64
	for frame < s.total {
		select {
		case <-s.stop:
			return
		default:
		}
		n := int(min(int64(s.cfg.BufferFrames), s.total-frame))
		if err := s.writeBlock(frame, n); err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			s.onErr(&host.CallbackError{Err: err})
			return
		}
		frame += int64(n)
		s.mu.Lock()
		s.frames = frame
		s.mu.Unlock()
	}
}

func (s *Stream) writeBlock(frame int64, frames int) error {
	samples := frames * s.cfg.Channels
	s.data.Resize(samples)
	now := host.InstantAtFrame(frame, s.cfg.SampleRate)
	s.fill(s.data, host.OutputCallbackInfo{Callback: now, Playback: now})

	s.block.Data = core.EnsureLen(s.block.Data, samples)
	for i, v := range s.pcm[:samples] {
		s.block.Data[i] = int(v)
	}
	return s.enc.Write(s.block)
}

// Close stops rendering and finalizes the WAV header. It does not close the
// underlying writer.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	close(s.stop)
	if started {
		<-s.done
	} else {
		close(s.done)
	}

	err := s.enc.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if err != nil {
		return fmt.Errorf("wavfile: finalize: %w", err)
	}
	return nil
}
