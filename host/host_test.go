package host_test

import (
	"testing"
	"time"

	"github.com/cwbudde/algo-binaural/host"
)

func TestSampleFormat(t *testing.T) {
	tests := []struct {
		f    host.SampleFormat
		name string
		size int
	}{
		{host.FormatF32, "f32", 4},
		{host.FormatI16, "i16", 2},
		{host.FormatU16, "u16", 2},
		{host.FormatU8, "u8", 1},
		{host.SampleFormat(99), "SampleFormat(99)", 0},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.f.Size(); got != tt.size {
			t.Errorf("%v.Size() = %d, want %d", tt.f, got, tt.size)
		}
		if tt.size == 0 {
			continue
		}
		parsed, err := host.ParseSampleFormat(tt.name)
		if err != nil || parsed != tt.f {
			t.Errorf("ParseSampleFormat(%q) = %v, %v", tt.name, parsed, err)
		}
	}
	if _, err := host.ParseSampleFormat("f64"); err == nil {
		t.Error("expected error for f64")
	}
}

func TestStreamInstant(t *testing.T) {
	var unknown host.StreamInstant
	a := host.InstantAt(2 * time.Second)
	b := a.Add(500 * time.Millisecond)

	if d, ok := b.DurationSince(a); !ok || d != 500*time.Millisecond {
		t.Fatalf("b-a = %v, %v", d, ok)
	}
	if _, ok := a.DurationSince(b); ok {
		t.Fatal("backwards difference must not be ok")
	}
	if _, ok := a.DurationSince(unknown); ok {
		t.Fatal("difference to unknown instant must not be ok")
	}
	if _, ok := unknown.DurationSince(a); ok {
		t.Fatal("difference from unknown instant must not be ok")
	}
	if unknown.Add(time.Second).IsValid() {
		t.Fatal("Add made an unknown instant valid")
	}
}

func TestInstantAtFrame(t *testing.T) {
	tests := []struct {
		frame int64
		rate  int
		want  time.Duration
	}{
		{0, 44100, 0},
		{44100, 44100, time.Second},
		{22050, 44100, 500 * time.Millisecond},
		{44100 * 3600 * 24, 44100, 24 * time.Hour},
	}
	for _, tt := range tests {
		got := host.InstantAtFrame(tt.frame, tt.rate)
		if !got.IsValid() || got.Offset() != tt.want {
			t.Errorf("InstantAtFrame(%d, %d) = %v, want %v", tt.frame, tt.rate, got.Offset(), tt.want)
		}
	}
	if host.InstantAtFrame(10, 0).IsValid() {
		t.Error("zero rate must give an unknown instant")
	}
}

func TestDataSlice(t *testing.T) {
	d, err := host.NewData(make([]int16, 8))
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	if d.Format() != host.FormatI16 {
		t.Fatalf("format = %v", d.Format())
	}
	if _, ok := host.Slice[float32](d); ok {
		t.Fatal("Slice[float32] on i16 data must fail")
	}
	d.Resize(5)
	s, ok := host.Slice[int16](d)
	if !ok || len(s) != 5 || d.Len() != 5 {
		t.Fatalf("Slice[int16] len = %d ok = %v", len(s), ok)
	}
	d.Resize(100)
	if d.Len() != d.Cap() {
		t.Fatalf("Resize not clamped: %d", d.Len())
	}
	if _, ok := host.Slice[int16](nil); ok {
		t.Fatal("nil data must not slice")
	}
	if _, err := host.NewData(make([]float64, 2)); err == nil {
		t.Fatal("float64 has no host format")
	}
}

func TestMakeData(t *testing.T) {
	for _, f := range []host.SampleFormat{host.FormatF32, host.FormatI16, host.FormatU16, host.FormatU8} {
		d, err := host.MakeData(f, 6)
		if err != nil {
			t.Fatalf("MakeData(%v): %v", f, err)
		}
		if d.Format() != f || d.Len() != 6 {
			t.Fatalf("MakeData(%v) = %v/%d", f, d.Format(), d.Len())
		}
	}
	if _, err := host.MakeData(0, 6); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestMakeDataStartsSilent(t *testing.T) {
	u8, _ := host.MakeData(host.FormatU8, 4)
	bytes, _ := host.Slice[uint8](u8)
	for i, v := range bytes {
		if v != 128 {
			t.Fatalf("u8[%d] = %v, want 128", i, v)
		}
	}
	u16, _ := host.MakeData(host.FormatU16, 4)
	words, _ := host.Slice[uint16](u16)
	for i, v := range words {
		if v != 32768 {
			t.Fatalf("u16[%d] = %v, want 32768", i, v)
		}
	}
}

func TestSliceDoesNotAllocate(t *testing.T) {
	d, _ := host.MakeData(host.FormatF32, 512)
	allocs := testing.AllocsPerRun(100, func() {
		d.Resize(256)
		s, _ := host.Slice[float32](d)
		s[0] = 1
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v", allocs)
	}
}
