package host

import (
	"fmt"
	"slices"
)

// Request is what the caller needs from a device.
type Request struct {
	Channels   int
	SampleRate int
	// Formats lists acceptable formats in preference order. Empty accepts
	// any format, preferring the device default.
	Formats []SampleFormat
	// BufferFrames is passed through to the StreamConfig.
	BufferFrames int
}

// Negotiate checks req against the ranges dev advertises and returns the
// configuration to build. Every failure is a *SetupError.
func Negotiate(dev Device, req Request) (StreamConfig, SampleFormat, error) {
	if dev == nil {
		return StreamConfig{}, 0, &SetupError{Err: ErrNoDevice}
	}
	name := dev.Name()
	fail := func(err error) (StreamConfig, SampleFormat, error) {
		return StreamConfig{}, 0, &SetupError{Device: name, Err: err}
	}

	if req.Channels <= 0 || req.SampleRate <= 0 || req.BufferFrames < 0 {
		return fail(fmt.Errorf("invalid request %d ch @ %d Hz, %d frames",
			req.Channels, req.SampleRate, req.BufferFrames))
	}

	ranges, err := dev.SupportedOutputConfigs()
	if err != nil {
		return fail(err)
	}
	if len(ranges) == 0 {
		return fail(ErrNoDevice)
	}

	maxChannels := 0
	for _, r := range ranges {
		maxChannels = max(maxChannels, r.MaxChannels)
	}
	if maxChannels < req.Channels {
		return fail(fmt.Errorf("%w: device offers %d, need %d", ErrTooFewChannels, maxChannels, req.Channels))
	}

	var offered []SampleFormat
	for _, r := range ranges {
		if r.Accepts(req.Channels, req.SampleRate) && !slices.Contains(offered, r.Format) {
			offered = append(offered, r.Format)
		}
	}
	if len(offered) == 0 {
		return fail(fmt.Errorf("%w: %d Hz with %d channels", ErrSampleRate, req.SampleRate, req.Channels))
	}

	format, ok := pickFormat(dev, offered, req.Formats)
	if !ok {
		return fail(fmt.Errorf("%w: device offers %v, want %v", ErrSampleFormat, offered, req.Formats))
	}

	cfg := StreamConfig{
		Channels:     req.Channels,
		SampleRate:   req.SampleRate,
		BufferFrames: req.BufferFrames,
	}
	return cfg, format, nil
}

func pickFormat(dev Device, offered, wanted []SampleFormat) (SampleFormat, bool) {
	if len(wanted) == 0 {
		if def, err := dev.DefaultOutputConfig(); err == nil && slices.Contains(offered, def.Format) {
			return def.Format, true
		}
		return offered[0], true
	}
	for _, f := range wanted {
		if slices.Contains(offered, f) {
			return f, true
		}
	}
	return 0, false
}
