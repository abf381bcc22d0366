// Package delay provides the circular fractional delay line used to apply
// interaural time differences.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

// Line is a circular delay line. Read(0) is the most recently written sample.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay: size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// ForMaxDelay returns a line that can serve fractional reads up to maxDelay samples.
func ForMaxDelay(maxDelay float64) (*Line, error) {
	if maxDelay < 0 || !core.IsFinite(maxDelay) {
		return nil, fmt.Errorf("delay: max delay must be >= 0 and finite: %f", maxDelay)
	}
	// Hermite needs one sample past the integer part plus one guard.
	return New(int(math.Ceil(maxDelay)) + 3)
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest fractional delay ReadFractional honours.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - 3)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads the sample written delay writes ago.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := (d.writePos - 1 - delay) % size
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads with cubic Hermite interpolation.
// delay is clamped to [0, MaxDelay].
func (d *Line) ReadFractional(delay float64) float64 {
	if delay < 0 || math.IsNaN(delay) {
		delay = 0
	}
	maxDelay := d.MaxDelay()
	if maxDelay < 0 {
		return d.Read(0)
	}
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	xm1 := d.Read(max(0, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// WriteRead writes x and returns the fractional read at delay in one step.
func (d *Line) WriteRead(x, delay float64) float64 {
	d.Write(x)
	return d.ReadFractional(delay)
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
}
