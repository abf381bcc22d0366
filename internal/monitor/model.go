// Package monitor is the terminal status view of a playing scene.
package monitor

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-binaural/dsp/rotation"
	"github.com/cwbudde/algo-binaural/render"
)

// DefaultInterval is the refresh period of the view.
const DefaultInterval = 50 * time.Millisecond

const ringWidth = 36

// Source is the live state the monitor polls. *render.Renderer implements it.
type Source interface {
	State() render.State
	Elapsed() time.Duration
	Position() rotation.Position
	Frames() int64
}

// Info is the static description of the session.
type Info struct {
	Session    string
	Backend    string
	Device     string
	Format     string
	SampleRate int
	Channels   int
	RotationHz float64
	Duration   time.Duration
}

type tickMsg time.Time

// StreamErrMsg reports a stream fault to the view.
type StreamErrMsg struct {
	Err error
}

// DoneMsg ends the view when playback finishes.
type DoneMsg struct{}

// Model is the bubbletea model of the status view.
type Model struct {
	src      Source
	info     Info
	interval time.Duration

	state   render.State
	elapsed time.Duration
	pos     rotation.Position
	frames  int64

	errCount int
	lastErr  string

	quit bool
	done bool
}

// NewModel returns a model polling src every DefaultInterval.
func NewModel(src Source, info Info) Model {
	return Model{
		src:      src,
		info:     info,
		interval: DefaultInterval,
		pos:      rotation.Origin(),
	}
}

// Quit reports whether the user asked to stop.
func (m Model) Quit() bool { return m.quit }

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	case tickMsg:
		m.poll()
		return m, tick(m.interval)
	case StreamErrMsg:
		m.errCount++
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		}
	case DoneMsg:
		m.poll()
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) poll() {
	if m.src == nil {
		return
	}
	m.state = m.src.State()
	m.elapsed = m.src.Elapsed()
	m.pos = m.src.Position()
	m.frames = m.src.Frames()
}

func (m Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rotating-noise  session %s\n", m.info.Session)
	fmt.Fprintf(&b, "output   %s (%s) %d Hz, %d ch, %s\n",
		m.info.Device, m.info.Backend, m.info.SampleRate, m.info.Channels, m.info.Format)
	fmt.Fprintf(&b, "state    %s, %d frames\n", m.state, m.frames)
	fmt.Fprintf(&b, "elapsed  %s %s\n", progressBar(m.elapsed, m.info.Duration, 30), formatElapsed(m.elapsed, m.info.Duration))

	az := azimuthDegrees(m.pos)
	fmt.Fprintf(&b, "azimuth  %5.1f° %-5s at %.2f Hz\n", az, direction(az), m.info.RotationHz)
	fmt.Fprintf(&b, "         %s\n", ring(az))
	fmt.Fprintf(&b, "         %s\n", ringLabels())

	if m.errCount > 0 {
		fmt.Fprintf(&b, "errors   %d, last: %s\n", m.errCount, m.lastErr)
	}
	if m.done {
		b.WriteString("done\n")
	} else {
		b.WriteString("q: stop\n")
	}
	return b.String()
}

// azimuthDegrees is the clockwise-from-front azimuth in [0, 360).
func azimuthDegrees(p rotation.Position) float64 {
	return p.Azimuth() * 180 / math.Pi
}

func direction(deg float64) string {
	names := [...]string{"front", "right", "back", "left"}
	i := int(math.Round(deg/90)) % len(names)
	return names[i]
}

// ring draws the azimuth on a strip running front, right, back, left, front.
func ring(deg float64) string {
	cells := []rune(strings.Repeat("·", ringWidth))
	i := int(math.Round(deg/360*ringWidth)) % ringWidth
	cells[i] = '●'
	return string(cells)
}

func ringLabels() string {
	cells := []rune(strings.Repeat(" ", ringWidth))
	for i, r := range "FRBL" {
		cells[i*ringWidth/4] = r
	}
	return string(cells)
}

func progressBar(elapsed, total time.Duration, width int) string {
	filled := 0
	if total > 0 {
		filled = int(float64(width) * min(1, float64(elapsed)/float64(total)))
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatElapsed(elapsed, total time.Duration) string {
	if total <= 0 {
		return elapsed.Truncate(100 * time.Millisecond).String()
	}
	return fmt.Sprintf("%s / %s", elapsed.Truncate(100*time.Millisecond), total)
}
