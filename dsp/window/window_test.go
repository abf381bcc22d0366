package window

import (
	"math"
	"testing"
)

func TestHann(t *testing.T) {
	w, err := Hann(5)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.5, 1, 0.5, 0}
	for i := range want {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Fatalf("Hann(5)[%d] = %v, want %v", i, w[i], want[i])
		}
	}
	if one, _ := Hann(1); one[0] != 1 {
		t.Fatalf("Hann(1) = %v", one)
	}
}

func TestFadeOut(t *testing.T) {
	w, err := FadeOut(64, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 48; i++ {
		if w[i] != 1 {
			t.Fatalf("w[%d] = %v, want 1 before the fade", i, w[i])
		}
	}
	for i := 48; i < 64; i++ {
		if !(w[i] < w[i-1]) {
			t.Fatalf("fade not decreasing at %d: %v >= %v", i, w[i], w[i-1])
		}
	}
	if last := w[63]; last <= 0 || last > 0.02 {
		t.Fatalf("last tap = %v, want small positive", last)
	}

	flat, _ := FadeOut(8, 0)
	for i, v := range flat {
		if v != 1 {
			t.Fatalf("fraction 0: w[%d] = %v", i, v)
		}
	}
}

func TestValidation(t *testing.T) {
	if _, err := Hann(0); err == nil {
		t.Error("expected error for size 0")
	}
	for _, f := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := FadeOut(16, f); err == nil {
			t.Errorf("expected error for fraction %v", f)
		}
	}
	if err := ApplyInPlace(make([]float64, 3), make([]float64, 2)); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestApplyInPlace(t *testing.T) {
	samples := []float64{2, 2, 2, 2, 2}
	w, _ := Hann(5)
	if err := ApplyInPlace(samples, w); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 2, 1, 0}
	for i := range want {
		if math.Abs(samples[i]-want[i]) > 1e-12 {
			t.Fatalf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestFadeOutMatchesHannTail(t *testing.T) {
	w, err := FadeOut(16, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	for i, k := 12, 1; i < 16; i, k = i+1, k+1 {
		want := 0.5 * (1 + math.Cos(math.Pi*float64(k)/5))
		if math.Abs(w[i]-want) > 1e-12 {
			t.Fatalf("w[%d] = %v, want %v", i, w[i], want)
		}
	}
}
