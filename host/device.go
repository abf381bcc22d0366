package host

// StreamConfig is the negotiated shape of an output stream.
type StreamConfig struct {
	Channels   int
	SampleRate int
	// BufferFrames is the preferred callback size in frames. 0 leaves the
	// choice to the host.
	BufferFrames int
}

// SupportedConfigRange is one block of configurations a device accepts.
type SupportedConfigRange struct {
	MinChannels, MaxChannels     int
	MinSampleRate, MaxSampleRate int
	Format                       SampleFormat
}

// Accepts reports whether the range covers channels and sampleRate.
func (r SupportedConfigRange) Accepts(channels, sampleRate int) bool {
	return channels >= r.MinChannels && channels <= r.MaxChannels &&
		sampleRate >= r.MinSampleRate && sampleRate <= r.MaxSampleRate
}

// DefaultConfig is what a device would pick without a request.
type DefaultConfig struct {
	Channels   int
	SampleRate int
	Format     SampleFormat
}

// DataCallback fills data with interleaved frames. It runs on the audio
// thread and must not block or allocate.
type DataCallback func(data *Data, info OutputCallbackInfo)

// ErrorCallback receives stream faults. It may run on any goroutine.
type ErrorCallback func(err error)

// Device is an output endpoint.
type Device interface {
	// Name identifies the device in logs and errors.
	Name() string
	// DefaultOutputConfig is the configuration the device prefers.
	DefaultOutputConfig() (DefaultConfig, error)
	// SupportedOutputConfigs lists one range per sample format.
	SupportedOutputConfigs() ([]SupportedConfigRange, error)
	// BuildOutputStream prepares a paused stream. Errors should be
	// *StreamBuildError.
	BuildOutputStream(cfg StreamConfig, format SampleFormat, data DataCallback, onErr ErrorCallback) (Stream, error)
}

// Stream is a built output stream. It is created paused.
type Stream interface {
	// Play starts invoking the data callback.
	Play() error
	// Close stops the stream and releases it. No callback runs after Close
	// returns.
	Close() error
}
