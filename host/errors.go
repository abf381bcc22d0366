package host

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice is returned when no output device is available.
	ErrNoDevice = errors.New("host: no output device")
	// ErrTooFewChannels is returned when a device cannot open enough channels.
	ErrTooFewChannels = errors.New("host: too few output channels")
	// ErrSampleRate is returned when no range covers the requested rate.
	ErrSampleRate = errors.New("host: unsupported sample rate")
	// ErrSampleFormat is returned when no acceptable format is offered.
	ErrSampleFormat = errors.New("host: no usable sample format")
	// ErrStreamClosed is returned by Play on a closed stream.
	ErrStreamClosed = errors.New("host: stream closed")
)

// SetupError reports a failure to find a usable device configuration.
type SetupError struct {
	Device string
	Err    error
}

func (e *SetupError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("host: setup: %v", e.Err)
	}
	return fmt.Sprintf("host: setup %q: %v", e.Device, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// StreamBuildError reports a failure to build a stream for a negotiated
// configuration.
type StreamBuildError struct {
	Device string
	Err    error
}

func (e *StreamBuildError) Error() string {
	return fmt.Sprintf("host: build stream on %q: %v", e.Device, e.Err)
}

func (e *StreamBuildError) Unwrap() error { return e.Err }

// CallbackError is a fault raised while a stream runs. Streaming continues.
type CallbackError struct {
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("host: stream: %v", e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// IsFatal reports whether err must halt startup.
func IsFatal(err error) bool {
	var setup *SetupError
	var build *StreamBuildError
	return errors.As(err, &setup) || errors.As(err, &build)
}
