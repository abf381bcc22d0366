// Package rotation maps elapsed playback time to a source position that
// orbits the listener in the horizontal plane.
//
// Coordinates are listener-centred: X points to the listener's right and Z
// straight ahead. Angle 0 is (X=1, Z=0), the right-hand side.
package rotation

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Position is a point on the unit circle around the listener.
type Position struct {
	X float64
	Z float64
}

// Origin returns the position at angle 0.
func Origin() Position {
	return Position{X: 1, Z: 0}
}

// Angle returns the counter-clockwise angle from +X in [0, 2π).
func (p Position) Angle() float64 {
	return core.WrapPhase(math.Atan2(p.Z, p.X))
}

// Azimuth returns the clockwise-from-front azimuth in [0, 2π): 0 is straight
// ahead, π/2 is the right ear, π is behind and 3π/2 is the left ear.
func (p Position) Azimuth() float64 {
	return core.WrapPhase(math.Atan2(p.X, p.Z))
}

// Angle returns the rotation angle after elapsed time at rateHz turns per
// second, wrapped to [0, 2π).
//
// The whole number of turns is discarded before scaling by 2π, so the result
// keeps full precision for arbitrarily long sessions. Non-finite inputs
// yield 0.
func Angle(elapsed time.Duration, rateHz float64) float64 {
	cycles := elapsed.Seconds() * rateHz
	return 2 * math.Pi * core.WrapCycles(cycles)
}

// PositionAt returns the position after elapsed time at rateHz turns per second.
func PositionAt(elapsed time.Duration, rateHz float64) Position {
	return FromAngle(Angle(elapsed, rateHz))
}

// FromAngle returns the unit-circle position at angle radians from the
// origin.
func FromAngle(angle float64) Position {
	return Position{X: math.Cos(angle), Z: math.Sin(angle)}
}

// Model is a fixed-rate rotation.
type Model struct {
	RateHz float64
}

// NewModel validates rateHz and returns a Model. Negative rates rotate clockwise.
func NewModel(rateHz float64) (Model, error) {
	if !core.IsFinite(rateHz) {
		return Model{}, fmt.Errorf("rotation: rate must be finite: %f", rateHz)
	}
	return Model{RateHz: rateHz}, nil
}

// Angle returns the model's angle after elapsed time, in [0, 2π).
func (m Model) Angle(elapsed time.Duration) float64 {
	return Angle(elapsed, m.RateHz)
}

// Position returns the model's position after elapsed time.
func (m Model) Position(elapsed time.Duration) Position {
	return PositionAt(elapsed, m.RateHz)
}

// Period returns the duration of one full turn, or 0 for a stationary model.
func (m Model) Period() time.Duration {
	if m.RateHz == 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / math.Abs(m.RateHz))
}
