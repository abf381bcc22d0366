package host

import "time"

// StreamInstant is a point on a stream's monotonic clock. The origin is
// arbitrary but fixed for the lifetime of a stream. The zero value is an
// unknown instant.
type StreamInstant struct {
	offset time.Duration
	valid  bool
}

// InstantAt returns the instant offset from the stream clock origin.
func InstantAt(offset time.Duration) StreamInstant {
	return StreamInstant{offset: offset, valid: true}
}

// InstantAtFrame returns the instant at which frame plays at sampleRate.
func InstantAtFrame(frame int64, sampleRate int) StreamInstant {
	if sampleRate <= 0 {
		return StreamInstant{}
	}
	secs := frame / int64(sampleRate)
	rem := frame % int64(sampleRate)
	return InstantAt(time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(sampleRate))
}

// IsValid reports whether the instant was actually obtained from the host.
func (i StreamInstant) IsValid() bool {
	return i.valid
}

// Offset returns the instant's offset from the stream clock origin.
func (i StreamInstant) Offset() time.Duration {
	return i.offset
}

// Add returns i shifted by d.
func (i StreamInstant) Add(d time.Duration) StreamInstant {
	if !i.valid {
		return i
	}
	return InstantAt(i.offset + d)
}

// DurationSince returns i - earlier. ok is false if either instant is unknown
// or earlier lies after i.
func (i StreamInstant) DurationSince(earlier StreamInstant) (d time.Duration, ok bool) {
	if !i.valid || !earlier.valid || i.offset < earlier.offset {
		return 0, false
	}
	return i.offset - earlier.offset, true
}

// OutputCallbackInfo accompanies every data callback.
type OutputCallbackInfo struct {
	// Callback is when the host invoked the callback.
	Callback StreamInstant
	// Playback is when the first frame of the buffer will be heard.
	Playback StreamInstant
}
