package monitor

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-binaural/dsp/rotation"
	"github.com/cwbudde/algo-binaural/render"
)

type fakeSource struct {
	state   render.State
	elapsed time.Duration
	pos     rotation.Position
	frames  int64
}

func (f *fakeSource) State() render.State         { return f.state }
func (f *fakeSource) Elapsed() time.Duration      { return f.elapsed }
func (f *fakeSource) Position() rotation.Position { return f.pos }
func (f *fakeSource) Frames() int64               { return f.frames }

func TestNewModel(t *testing.T) {
	m := NewModel(nil, Info{Session: "abc"})
	if m.Quit() {
		t.Error("expected quit to be false initially")
	}
	if m.Init() == nil {
		t.Error("expected Init to schedule a tick")
	}
	if !strings.Contains(m.View(), "session abc") {
		t.Errorf("view missing session:\n%s", m.View())
	}
}

func TestTickPollsSource(t *testing.T) {
	src := &fakeSource{
		state:   render.Running,
		elapsed: 1500 * time.Millisecond,
		pos:     rotation.Position{X: 0, Z: -1},
		frames:  66150,
	}
	m := NewModel(src, Info{RotationHz: 0.5, Duration: 10 * time.Second})
	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick did not reschedule")
	}
	view := next.View()
	for _, want := range []string{"running", "66150 frames", "180.0°", "back", "1.5s / 10s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		next, cmd := NewModel(nil, Info{}).Update(key)
		if cmd == nil || !next.(Model).Quit() {
			t.Errorf("key %q did not quit", key.String())
		}
	}
	next, cmd := NewModel(nil, Info{}).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd != nil || next.(Model).Quit() {
		t.Error("unbound key quit")
	}
}

func TestDoneQuitsWithoutUserQuit(t *testing.T) {
	next, cmd := NewModel(&fakeSource{}, Info{}).Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("done did not quit the program")
	}
	m := next.(Model)
	if m.Quit() {
		t.Fatal("done counted as user quit")
	}
	if !strings.Contains(m.View(), "done") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestStreamErrors(t *testing.T) {
	var m tea.Model = NewModel(nil, Info{})
	m, _ = m.Update(StreamErrMsg{Err: errors.New("underrun")})
	m, _ = m.Update(StreamErrMsg{Err: errors.New("device lost")})
	if !strings.Contains(m.View(), "errors   2, last: device lost") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestDirectionAndRing(t *testing.T) {
	tests := []struct {
		deg  float64
		dir  string
		cell int
	}{
		{0, "front", 0},
		{90, "right", 9},
		{180, "back", 18},
		{270, "left", 27},
		{359, "front", 0},
	}
	for _, tt := range tests {
		if got := direction(tt.deg); got != tt.dir {
			t.Errorf("direction(%v) = %q, want %q", tt.deg, got, tt.dir)
		}
		cells := []rune(ring(tt.deg))
		if len(cells) != ringWidth || cells[tt.cell] != '●' {
			t.Errorf("ring(%v) = %q, want marker at %d", tt.deg, string(cells), tt.cell)
		}
	}
	if got := string([]rune(ringLabels())[9]); got != "R" {
		t.Errorf("label at 90° = %q", got)
	}
}

func TestAzimuthDegrees(t *testing.T) {
	// Rotation origin (1, 0) is the listener's right.
	if got := azimuthDegrees(rotation.Origin()); math.Abs(got-90) > 1e-9 {
		t.Fatalf("origin azimuth = %v, want 90", got)
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(5*time.Second, 10*time.Second, 10); got != "[█████░░░░░]" {
		t.Errorf("half bar = %q", got)
	}
	if got := progressBar(time.Minute, 10*time.Second, 4); got != "[████]" {
		t.Errorf("overfull bar = %q", got)
	}
	if got := progressBar(time.Second, 0, 4); got != "[░░░░]" {
		t.Errorf("unbounded bar = %q", got)
	}
}
