package wavfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-binaural/host"
	"github.com/cwbudde/algo-binaural/render"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func decode(t *testing.T, f *os.File) *wav.Decoder {
	t.Helper()
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid WAV file")
	}
	return dec
}

func TestStreamWritesExpectedFrames(t *testing.T) {
	f := tempFile(t)
	dev, err := New(f, WithDuration(100*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	var stamps []time.Duration
	s, err := dev.Build(host.StreamConfig{Channels: 2, SampleRate: 8000, BufferFrames: 300}, host.FormatI16,
		func(d *host.Data, info host.OutputCallbackInfo) {
			buf, _ := host.Slice[int16](d)
			for i := range buf {
				if i%2 == 0 {
					buf[i] = 1000
				} else {
					buf[i] = -1000
				}
			}
			stamps = append(stamps, info.Playback.Offset())
		}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.TotalFrames() != 800 {
		t.Fatalf("TotalFrames() = %d, want 800", s.TotalFrames())
	}
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("render did not finish")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []time.Duration{0, 37500 * time.Microsecond, 75 * time.Millisecond}
	if len(stamps) != len(want) {
		t.Fatalf("callbacks = %d, want %d", len(stamps), len(want))
	}
	for i := range want {
		if stamps[i] != want[i] {
			t.Fatalf("stamp[%d] = %v, want %v", i, stamps[i], want[i])
		}
	}

	dec := decode(t, f)
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if dec.SampleRate != 8000 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("header = %d Hz %d ch %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if got := len(pcm.Data) / 2; got != 800 {
		t.Fatalf("frames = %d, want 800", got)
	}
	if pcm.Data[0] != 1000 || pcm.Data[1] != -1000 {
		t.Fatalf("first frame = %v", pcm.Data[:2])
	}
}

func TestRendererIntoWAV(t *testing.T) {
	f := tempFile(t)
	dev, _ := New(f, WithDuration(250*time.Millisecond))

	cfg, format, err := host.Negotiate(dev, host.Request{Channels: 2, SampleRate: 44100, Formats: []host.SampleFormat{host.FormatF32, host.FormatI16}})
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if format != host.FormatI16 {
		t.Fatalf("format = %v", format)
	}
	r, err := render.New(render.DefaultConfig(), render.WithSeed(5))
	if err != nil {
		t.Fatal(err)
	}
	cb, err := render.CallbackFor(r, format)
	if err != nil {
		t.Fatal(err)
	}
	s, err := dev.BuildOutputStream(cfg, format, cb, nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Play()
	<-s.(*Stream).Done()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	pcm, err := decode(t, f).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := int64(len(pcm.Data)/2), r.Frames(); got != want || got != 11025 {
		t.Fatalf("file frames %d, rendered %d, want 11025", got, want)
	}
	nonzero := 0
	for _, v := range pcm.Data {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero < len(pcm.Data)/2 {
		t.Fatalf("only %d of %d samples non-zero", nonzero, len(pcm.Data))
	}
}

func TestCloseBeforePlay(t *testing.T) {
	f := tempFile(t)
	dev, _ := New(f)
	s, err := dev.Build(host.StreamConfig{Channels: 1, SampleRate: 8000}, host.FormatI16,
		func(*host.Data, host.OutputCallbackInfo) {}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Play(); !errors.Is(err, host.ErrStreamClosed) {
		t.Fatalf("Play after Close = %v", err)
	}
	if s.Frames() != 0 {
		t.Fatalf("Frames() = %d", s.Frames())
	}
	<-s.Done()
}

func TestBuildValidation(t *testing.T) {
	noop := func(*host.Data, host.OutputCallbackInfo) {}
	tests := []struct {
		name   string
		cfg    host.StreamConfig
		format host.SampleFormat
		data   host.DataCallback
	}{
		{"format", host.StreamConfig{Channels: 2, SampleRate: 44100}, host.FormatF32, noop},
		{"channels", host.StreamConfig{Channels: 0, SampleRate: 44100}, host.FormatI16, noop},
		{"rate", host.StreamConfig{Channels: 2, SampleRate: 1000}, host.FormatI16, noop},
		{"callback", host.StreamConfig{Channels: 2, SampleRate: 44100}, host.FormatI16, nil},
		{"buffer", host.StreamConfig{Channels: 2, SampleRate: 44100, BufferFrames: -1}, host.FormatI16, noop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := New(tempFile(t))
			_, err := dev.BuildOutputStream(tt.cfg, tt.format, tt.data, nil)
			if !host.IsFatal(err) {
				t.Fatalf("err = %v, want build error", err)
			}
		})
	}
}

func TestSecondBuildFails(t *testing.T) {
	dev, _ := New(tempFile(t))
	cfg := host.StreamConfig{Channels: 2, SampleRate: 44100}
	noop := func(*host.Data, host.OutputCallbackInfo) {}
	s, err := dev.Build(cfg, host.FormatI16, noop, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := dev.Build(cfg, host.FormatI16, noop, nil); !errors.Is(err, ErrInUse) {
		t.Fatalf("second Build = %v, want ErrInUse", err)
	}
}

func TestOptions(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil writer")
	}
	f := tempFile(t)
	for _, opt := range []Option{WithDuration(0), WithMaxChannels(0)} {
		if _, err := New(f, opt); err == nil {
			t.Fatal("expected option error")
		}
	}
	dev, err := New(f, WithName("bounce"), WithMaxChannels(1))
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name() != "bounce" {
		t.Fatalf("Name() = %q", dev.Name())
	}
	_, _, err = host.Negotiate(dev, host.Request{Channels: 2, SampleRate: 44100})
	if !errors.Is(err, host.ErrTooFewChannels) {
		t.Fatalf("Negotiate on mono WAV = %v", err)
	}
}
