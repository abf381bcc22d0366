package render

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/sample"
	"github.com/cwbudde/algo-binaural/host"
)

// Callback adapts r to a host data callback for buffers of T. Buffers of
// any other type are left untouched.
func Callback[T sample.Sample](r *Renderer) host.DataCallback {
	conv := sample.ConverterFor[T]()
	return func(d *host.Data, info host.OutputCallbackInfo) {
		buf, ok := host.Slice[T](d)
		if !ok {
			return
		}
		fill(r, buf, info, conv)
	}
}

// CallbackFor returns the data callback matching a negotiated format.
func CallbackFor(r *Renderer, format host.SampleFormat) (host.DataCallback, error) {
	switch format {
	case host.FormatF32:
		return Callback[float32](r), nil
	case host.FormatI16:
		return Callback[int16](r), nil
	case host.FormatU16:
		return Callback[uint16](r), nil
	case host.FormatU8:
		return Callback[uint8](r), nil
	default:
		return nil, fmt.Errorf("render: no callback for format %v", format)
	}
}
