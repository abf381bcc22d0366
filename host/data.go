package host

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/sample"
)

// Data is a host-owned interleaved output buffer of a single SampleFormat.
// A host builds one Data per stream and resizes it for every callback.
type Data struct {
	format SampleFormat
	buf    any
	cap    int
	n      int
}

// NewData wraps buf. The callback sees at most len(buf) samples.
func NewData[T sample.Sample](buf []T) (*Data, error) {
	format, ok := FormatOf[T]()
	if !ok {
		return nil, fmt.Errorf("host: %T has no sample format", buf)
	}
	return &Data{format: format, buf: buf, cap: len(buf), n: len(buf)}, nil
}

// Format returns the sample representation of the buffer.
func (d *Data) Format() SampleFormat {
	return d.format
}

// Len returns the number of samples visible to the current callback.
func (d *Data) Len() int {
	return d.n
}

// Cap returns the largest size Resize accepts.
func (d *Data) Cap() int {
	return d.cap
}

// Resize sets the visible length, clamped to [0, Cap()].
func (d *Data) Resize(n int) {
	d.n = max(0, min(n, d.cap))
}

// Slice returns the visible samples as []T. ok is false if the buffer does
// not hold T.
func Slice[T sample.Sample](d *Data) (buf []T, ok bool) {
	if d == nil {
		return nil, false
	}
	full, ok := d.buf.([]T)
	if !ok {
		return nil, false
	}
	return full[:d.n], true
}

// MakeData allocates a buffer of samples values in format, filled with
// silence.
func MakeData(format SampleFormat, samples int) (*Data, error) {
	if samples < 0 {
		return nil, fmt.Errorf("host: negative buffer size %d", samples)
	}
	switch format {
	case FormatF32:
		return NewData(sample.Silence[float32](samples))
	case FormatI16:
		return NewData(sample.Silence[int16](samples))
	case FormatU16:
		return NewData(sample.Silence[uint16](samples))
	case FormatU8:
		return NewData(sample.Silence[uint8](samples))
	default:
		return nil, fmt.Errorf("host: cannot allocate %v buffer", format)
	}
}
