package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(0) || !IsFinite(-1e300) {
		t.Fatal("finite values reported as non-finite")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Fatal("non-finite values reported as finite")
	}
}

func TestWrapCycles(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 0.25, want: 0.25},
		{in: 1, want: 0},
		{in: 3.5, want: 0.5},
		{in: -0.25, want: 0.75},
		{in: -2, want: 0},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: 0},
	}

	for _, tt := range tests {
		got := WrapCycles(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("WrapCycles(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 1 {
			t.Fatalf("WrapCycles(%v) = %v out of [0,1)", tt.in, got)
		}
	}
}

func TestWrapPhase(t *testing.T) {
	got := WrapPhase(5 * math.Pi)
	if math.Abs(got-math.Pi) > 1e-12 {
		t.Fatalf("WrapPhase(5π) = %v, want π", got)
	}

	got = WrapPhase(-math.Pi / 2)
	if math.Abs(got-1.5*math.Pi) > 1e-12 {
		t.Fatalf("WrapPhase(-π/2) = %v, want 3π/2", got)
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestLinearPowerToDB(t *testing.T) {
	if !NearlyEqual(LinearPowerToDB(100), 20, 1e-12) {
		t.Fatalf("LinearPowerToDB(100) = %v, want 20", LinearPowerToDB(100))
	}
	if !math.IsInf(LinearPowerToDB(0), -1) {
		t.Fatal("expected -Inf for zero power")
	}
	if !math.IsNaN(LinearPowerToDB(-1)) {
		t.Fatal("expected NaN for negative power")
	}
}
