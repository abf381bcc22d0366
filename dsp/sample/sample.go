// Package sample converts the render pipeline's float64 values into the
// numeric representations audio hosts accept.
//
// The pipeline stays in float64 end to end; a [Converter] is applied once per
// written value at the output boundary.
package sample

import "math"

// Sample is the set of output representations the renderer can write.
type Sample interface {
	float32 | float64 | int16 | uint16 | uint8
}

// Converter maps a pipeline value to one output sample.
type Converter[T Sample] func(v float64) T

// Clamp limits v to [-1, 1] and maps NaN to 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

// ToFloat32 converts to a clamped float32.
func ToFloat32(v float64) float32 {
	return float32(Clamp(v))
}

// ToFloat64 converts to a clamped float64.
func ToFloat64(v float64) float64 {
	return Clamp(v)
}

// ToInt16 converts to signed 16-bit PCM. The positive peak is 32767 so that
// +1 does not overflow.
func ToInt16(v float64) int16 {
	return int16(Clamp(v) * math.MaxInt16)
}

// ToUint16 converts to offset-binary unsigned 16-bit PCM (silence = 32768).
func ToUint16(v float64) uint16 {
	return uint16(int32(ToInt16(v)) + 1<<15)
}

// ToUint8 converts to offset-binary unsigned 8-bit PCM (silence = 128).
func ToUint8(v float64) uint8 {
	return uint8(int16(Clamp(v)*math.MaxInt8) + 1<<7)
}

// ConverterFor returns the conversion for T. The result is one of the
// package-level To* functions, so resolving it does not allocate.
func ConverterFor[T Sample]() Converter[T] {
	var (
		zero T
		conv any
	)
	switch any(zero).(type) {
	case float32:
		conv = Converter[float32](ToFloat32)
	case float64:
		conv = Converter[float64](ToFloat64)
	case int16:
		conv = Converter[int16](ToInt16)
	case uint16:
		conv = Converter[uint16](ToUint16)
	default:
		conv = Converter[uint8](ToUint8)
	}
	return conv.(Converter[T])
}

// Equilibrium returns the silent value of T.
func Equilibrium[T Sample]() T {
	return ConverterFor[T]()(0)
}

// Silence returns n samples of T set to the equilibrium value.
func Silence[T Sample](n int) []T {
	buf := make([]T, n)
	if eq := Equilibrium[T](); eq != 0 {
		for i := range buf {
			buf[i] = eq
		}
	}
	return buf
}
