// Package testutil holds signal generators and assertions shared by the
// package tests.
package testutil

import (
	"math/rand"
)

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Deinterleave splits a frame-major buffer into one slice per channel.
// Trailing samples that do not form a whole frame are dropped.
func Deinterleave[T any](buf []T, channels int) [][]T {
	if channels <= 0 {
		return nil
	}
	frames := len(buf) / channels
	out := make([][]T, channels)
	for c := range out {
		out[c] = make([]T, frames)
		for f := 0; f < frames; f++ {
			out[c][f] = buf[f*channels+c]
		}
	}
	return out
}
