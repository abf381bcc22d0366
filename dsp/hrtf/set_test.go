package hrtf

import (
	"errors"
	"math"
	"testing"
)

// ringSet returns a set with single-tap gains at the four cardinal azimuths.
func ringSet(sampleRate float64) *Set {
	return &Set{
		SampleRate: sampleRate,
		Measurements: []Measurement{
			{Azimuth: 0, Left: []float64{1}, Right: []float64{1}},
			{Azimuth: math.Pi / 2, Left: []float64{0.25}, Right: []float64{1.5}, LeftDelay: 4},
			{Azimuth: math.Pi, Left: []float64{0.5}, Right: []float64{0.5}},
			{Azimuth: 1.5 * math.Pi, Left: []float64{1.5}, Right: []float64{0.25}, RightDelay: 4},
		},
	}
}

func TestSetValidate(t *testing.T) {
	if err := ringSet(48000).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	var nilSet *Set
	if err := nilSet.Validate(); !errors.Is(err, ErrEmptySet) {
		t.Fatalf("nil set: err = %v, want ErrEmptySet", err)
	}

	tests := []struct {
		name   string
		mutate func(*Set)
		target error
	}{
		{name: "empty", mutate: func(s *Set) { s.Measurements = nil }, target: ErrEmptySet},
		{name: "rate", mutate: func(s *Set) { s.SampleRate = 0 }},
		{name: "taps", mutate: func(s *Set) { s.Measurements[2].Right = []float64{1, 2} }, target: ErrTapMismatch},
		{name: "empty fir", mutate: func(s *Set) {
			for i := range s.Measurements {
				s.Measurements[i].Left = nil
				s.Measurements[i].Right = nil
			}
		}},
		{name: "order", mutate: func(s *Set) { s.Measurements[1].Azimuth = 4 }},
		{name: "range", mutate: func(s *Set) { s.Measurements[3].Azimuth = 2 * math.Pi }},
		{name: "delay", mutate: func(s *Set) { s.Measurements[0].LeftDelay = -1 }},
		{name: "coefficient", mutate: func(s *Set) { s.Measurements[0].Left[0] = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ringSet(48000)
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestSetNeighbors(t *testing.T) {
	s := ringSet(48000)

	tests := []struct {
		name    string
		azimuth float64
		i, j    int
		w       float64
	}{
		{name: "exact front", azimuth: 0, i: 0, j: 1, w: 0},
		{name: "front-right", azimuth: math.Pi / 4, i: 0, j: 1, w: 0.5},
		{name: "exact right", azimuth: math.Pi / 2, i: 1, j: 2, w: 0},
		{name: "wrap", azimuth: 1.75 * math.Pi, i: 3, j: 0, w: 0.5},
		{name: "negative", azimuth: -math.Pi / 4, i: 3, j: 0, w: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, j, w := s.Neighbors(tt.azimuth)
			if i != tt.i || j != tt.j || math.Abs(w-tt.w) > 1e-12 {
				t.Fatalf("Neighbors(%v) = (%d, %d, %v), want (%d, %d, %v)", tt.azimuth, i, j, w, tt.i, tt.j, tt.w)
			}
		})
	}
}

func TestSetNeighborsSingleMeasurement(t *testing.T) {
	s := &Set{SampleRate: 48000, Measurements: []Measurement{{Azimuth: 1, Left: []float64{1}, Right: []float64{1}}}}

	i, j, w := s.Neighbors(3)
	if i != 0 || j != 0 || w != 0 {
		t.Fatalf("Neighbors() = (%d, %d, %v), want (0, 0, 0)", i, j, w)
	}
}

func TestSetInterpolateInto(t *testing.T) {
	s := ringSet(48000)
	left := make([]float64, 1)
	right := make([]float64, 1)

	ld, rd := s.InterpolateInto(math.Pi/4, left, right)
	if math.Abs(left[0]-0.625) > 1e-12 || math.Abs(right[0]-1.25) > 1e-12 {
		t.Fatalf("coefficients = %v/%v, want 0.625/1.25", left[0], right[0])
	}
	if math.Abs(ld-2) > 1e-12 || rd != 0 {
		t.Fatalf("delays = %v/%v, want 2/0", ld, rd)
	}
}

func TestSetTapsAndMaxDelay(t *testing.T) {
	s := ringSet(48000)
	if s.Taps() != 1 {
		t.Fatalf("Taps() = %d, want 1", s.Taps())
	}
	if s.MaxDelay() != 4 {
		t.Fatalf("MaxDelay() = %v, want 4", s.MaxDelay())
	}
	if (&Set{}).Taps() != 0 {
		t.Fatal("empty set must report 0 taps")
	}
}
