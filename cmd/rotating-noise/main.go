// Command rotating-noise plays white noise that circles the listener's head.
//
// Usage:
//
//	rotating-noise [flags]
//
// Examples:
//
//	rotating-noise
//	rotating-noise -rotation-hz 0.25 -duration 30s
//	rotating-noise -backend wav -out noise.wav
//	rotating-noise -backend null -tui off
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/host"
	"github.com/cwbudde/algo-binaural/host/otohost"
	"github.com/cwbudde/algo-binaural/host/virtual"
	"github.com/cwbudde/algo-binaural/host/wavfile"
	"github.com/cwbudde/algo-binaural/internal/monitor"
	"github.com/cwbudde/algo-binaural/render"
)

type options struct {
	backend     string
	out         string
	duration    time.Duration
	rotationHz  float64
	volume      float64
	volumeDB    float64
	seed        uint64
	rate        int
	channels    int
	maxChannels int
	buffer      int
	format      string
	tui         string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("rotating-noise", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.backend, "backend", "oto", "audio backend: oto, null or wav")
	fs.StringVar(&o.out, "out", "rotating-noise.wav", "output file for -backend wav")
	fs.DurationVar(&o.duration, "duration", 10*time.Second, "playback duration")
	fs.Float64Var(&o.rotationHz, "rotation-hz", render.DefaultRotationHz, "source turns per second")
	fs.Float64Var(&o.volume, "volume", render.DefaultVolume, "noise level before spatialization")
	fs.Float64Var(&o.volumeDB, "volume-db", math.NaN(), "noise level in dB, overrides -volume")
	fs.Uint64Var(&o.seed, "seed", 0, "noise seed")
	fs.IntVar(&o.rate, "rate", render.DefaultSampleRate, "sample rate in Hz")
	fs.IntVar(&o.channels, "channels", render.DefaultChannels, "output channels to request")
	fs.IntVar(&o.maxChannels, "max-channels", 2, "channels the oto or null device offers")
	fs.IntVar(&o.buffer, "buffer", 512, "callback buffer size in frames")
	fs.StringVar(&o.format, "format", "", "sample format to request (f32, i16, u16, u8); empty picks the best offered")
	fs.StringVar(&o.tui, "tui", "auto", "status view: auto, on or off")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rotating-noise [flags]\n\n")
		fmt.Fprintf(stderr, "Plays white noise rotating around the listener through an HRTF.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	switch o.backend {
	case "oto", "null", "wav":
	default:
		return o, fmt.Errorf("unknown backend %q", o.backend)
	}
	switch o.tui {
	case "auto", "on", "off":
	default:
		return o, fmt.Errorf("unknown -tui mode %q", o.tui)
	}
	if o.duration <= 0 {
		return o, fmt.Errorf("duration must be > 0: %v", o.duration)
	}
	if !math.IsNaN(o.volumeDB) {
		o.volume = core.DBToLinear(o.volumeDB)
	}
	return o, nil
}

// formats returns the request's format preference list.
func (o options) formats() ([]host.SampleFormat, error) {
	if o.format == "" {
		return []host.SampleFormat{host.FormatF32, host.FormatI16, host.FormatU16, host.FormatU8}, nil
	}
	f, err := host.ParseSampleFormat(o.format)
	if err != nil {
		return nil, err
	}
	return []host.SampleFormat{f}, nil
}

// useTUI resolves the -tui mode against whether stdout is a terminal.
func useTUI(mode string, isTerminal bool) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal
	}
}

// openDevice returns the selected device and a cleanup for resources it
// owns.
func openDevice(o options) (host.Device, func() error, error) {
	noop := func() error { return nil }
	switch o.backend {
	case "null":
		dev, err := virtual.New(virtual.WithName("null"), virtual.WithChannels(1, o.maxChannels))
		return dev, noop, err
	case "wav":
		f, err := os.Create(o.out)
		if err != nil {
			return nil, nil, err
		}
		dev, err := wavfile.New(f, wavfile.WithName(o.out), wavfile.WithDuration(o.duration))
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return dev, f.Close, nil
	default:
		dev, err := otohost.New(otohost.WithMaxChannels(o.maxChannels))
		return dev, noop, err
	}
}

// completer is implemented by streams that finish on their own.
type completer interface {
	Done() <-chan struct{}
}

func run(ctx context.Context, o options, logger *log.Logger, session string, tui bool) error {
	dev, cleanup, err := openDevice(o)
	if err != nil {
		return &host.SetupError{Err: err}
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Printf("cleanup: %v", err)
		}
	}()

	formats, err := o.formats()
	if err != nil {
		return &host.SetupError{Device: dev.Name(), Err: err}
	}
	cfg, format, err := host.Negotiate(dev, host.Request{
		Channels:     o.channels,
		SampleRate:   o.rate,
		Formats:      formats,
		BufferFrames: o.buffer,
	})
	if err != nil {
		return err
	}
	logger.Printf("device %q: %d ch @ %d Hz, %v, %d-frame buffers", dev.Name(), cfg.Channels, cfg.SampleRate, format, cfg.BufferFrames)
	logger.Printf("rotation %.3g Hz, volume %.3g (%.1f dB)", o.rotationHz, o.volume, core.LinearToDB(o.volume))

	r, err := render.New(render.Config{
		SampleRate: float64(cfg.SampleRate),
		Channels:   cfg.Channels,
		RotationHz: o.rotationHz,
		Volume:     o.volume,
	}, render.WithSeed(o.seed))
	if err != nil {
		return &host.SetupError{Device: dev.Name(), Err: err}
	}
	callback, err := render.CallbackFor(r, format)
	if err != nil {
		return &host.SetupError{Device: dev.Name(), Err: err}
	}

	errs := make(chan error, 16)
	onErr := func(err error) {
		logger.Printf("stream error: %v", err)
		select {
		case errs <- err:
		default:
		}
	}
	stream, err := dev.BuildOutputStream(cfg, format, callback, onErr)
	if err != nil {
		return err
	}
	if err := stream.Play(); err != nil {
		stream.Close()
		return &host.StreamBuildError{Device: dev.Name(), Err: err}
	}

	done := make(chan struct{})
	if c, ok := stream.(completer); ok {
		go func() {
			select {
			case <-c.Done():
			case <-ctx.Done():
			}
			close(done)
		}()
	} else {
		go func() {
			timer := time.NewTimer(o.duration)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			}
			close(done)
		}()
	}

	if tui {
		quit, err := monitor.Run(r, monitor.Info{
			Session:    session,
			Backend:    o.backend,
			Device:     dev.Name(),
			Format:     format.String(),
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
			RotationHz: o.rotationHz,
			Duration:   o.duration,
		}, done, errs)
		if err != nil {
			logger.Printf("status view: %v", err)
			<-done
		} else if quit {
			logger.Printf("stopped by user")
		}
	} else {
		<-done
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	p := r.Position()
	logger.Printf("rendered %d frames, %v elapsed, final azimuth %.1f°",
		r.Frames(), r.Elapsed(), p.Azimuth()*180/math.Pi)
	return nil
}

func main() {
	o, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	session := uuid.NewString()
	logger := log.New(os.Stderr, "rotating-noise "+session[:8]+" ", log.LstdFlags|log.Lmsgprefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tui := useTUI(o.tui, term.IsTerminal(int(os.Stdout.Fd())))
	if err := run(ctx, o, logger, session, tui); err != nil {
		if host.IsFatal(err) {
			logger.Fatalf("setup failed: %v", err)
		}
		logger.Fatalf("%v", err)
	}
}
