package host

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/sample"
)

// SampleFormat identifies the numeric representation of output samples.
type SampleFormat int

const (
	// FormatF32 is 32-bit IEEE float in [-1, 1].
	FormatF32 SampleFormat = iota + 1
	// FormatI16 is signed 16-bit PCM.
	FormatI16
	// FormatU16 is offset-binary unsigned 16-bit PCM.
	FormatU16
	// FormatU8 is offset-binary unsigned 8-bit PCM.
	FormatU8
)

// String returns the short format name.
func (f SampleFormat) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatI16:
		return "i16"
	case FormatU16:
		return "u16"
	case FormatU8:
		return "u8"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// Size returns the byte width of one sample, or 0 for an unknown format.
func (f SampleFormat) Size() int {
	switch f {
	case FormatF32:
		return 4
	case FormatI16, FormatU16:
		return 2
	case FormatU8:
		return 1
	default:
		return 0
	}
}

// Valid reports whether f is a known format.
func (f SampleFormat) Valid() bool {
	return f.Size() != 0
}

// ParseSampleFormat parses the names produced by String.
func ParseSampleFormat(s string) (SampleFormat, error) {
	for _, f := range []SampleFormat{FormatF32, FormatI16, FormatU16, FormatU8} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("host: unknown sample format %q", s)
}

// FormatOf returns the SampleFormat that carries T. float64 has no host
// format.
func FormatOf[T sample.Sample]() (SampleFormat, bool) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return FormatF32, true
	case int16:
		return FormatI16, true
	case uint16:
		return FormatU16, true
	case uint8:
		return FormatU8, true
	default:
		return 0, false
	}
}
