package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sim2d/internal/control"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/world"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	minTick         = time.Second / 60
)

type TickMsg time.Time

// Model drives a session from the keyboard. Arrow keys adjust the manual
// command; tab hands control to the autopilot when one is given.
type Model struct {
	session   *session.Session
	manual    *control.Manual
	autopilot control.Controller
	auto      bool
	start     geom.Pose
	repeat    int
	linStep   float64
	angStep   float64
	canvas    *Canvas
	rays      bool
	running   bool
	showHelp  bool
	title     string
	clearance []float64
	err       error
}

// NewModel expects an initialized session. autopilot may be nil.
func NewModel(s *session.Session, autopilot control.Controller, repeat int, title string) Model {
	r := s.Robot()
	return Model{
		session:   s,
		manual:    control.NewManual(),
		autopilot: autopilot,
		start:     s.Pose(),
		repeat:    repeat,
		linStep:   r.MaxLinearVelocity() / 5,
		angStep:   math.Max(r.MaxAngularVelocity(), 1) / 5,
		canvas:    NewCanvas(width, height),
		rays:      true,
		running:   true,
		title:     title,
		clearance: make([]float64, 0, historyCapacity),
	}
}

// tickEvery paces ticks so one Step covers the same span of wall time as
// of simulated time.
func (m Model) tickEvery() time.Duration {
	iv := m.session.Intervals()
	d := time.Duration(iv.CollisionCheck * float64(max(m.repeat, 1)) * float64(time.Second))
	if d < minTick {
		d = minTick
	}
	return d
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickEvery(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "up", "w":
			m.nudge(m.linStep, 0)
		case "down", "s":
			m.nudge(-m.linStep, 0)
		case "left", "a":
			m.nudge(0, m.angStep)
		case "right", "d":
			m.nudge(0, -m.angStep)
		case "x":
			m.manual.Set(0, 0)
		case "tab":
			if m.autopilot != nil {
				m.auto = !m.auto
			}
		case "l":
			m.rays = !m.rays
		case "r":
			m.reset()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) nudge(dv, dw float64) {
	r := m.session.Robot()
	cmd := m.manual.Cmd
	v := clamp(cmd.Linear+dv, r.MaxLinearVelocity())
	w := cmd.Angular + dw
	if wmax := r.MaxAngularVelocity(); wmax > 0 {
		w = clamp(w, wmax)
	}
	m.manual.Set(v, w)
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

func (m *Model) controller() control.Controller {
	if m.auto && m.autopilot != nil {
		return m.autopilot
	}
	return m.manual
}

func (m *Model) step() {
	s := m.session
	if s.Collided() {
		return
	}
	var scan *world.Scan
	if last, ok := s.LastScan(); ok {
		scan = &last
	}
	cmd := m.controller().Compute(s.Pose(), scan, s.Time())
	if _, err := s.Step(cmd.Linear, cmd.Angular, m.repeat); err != nil {
		m.err = err
		m.running = false
		return
	}
	if last, ok := s.LastScan(); ok {
		m.clearance = append(m.clearance, last.MinRange())
		if len(m.clearance) > historyCapacity {
			m.clearance = m.clearance[1:]
		}
	}
}

// reset puts the robot back at its start pose and clears the collision.
func (m *Model) reset() {
	m.session.SetPose(m.start.X, m.start.Y, m.start.Theta)
	m.manual.Set(0, 0)
	m.clearance = m.clearance[:0]
	m.err = nil
}

func (m Model) View() string {
	s := m.session
	f := s.Frame()

	m.canvas.Clear()
	DrawFrame(m.canvas, f, m.rays)
	canvasView := canvasStyle.Render(m.canvas.String())

	status := "RUNNING"
	switch {
	case f.Collided:
		status = "COLLIDED  (r to reset)"
	case m.err != nil:
		status = "ERROR: " + m.err.Error()
	case !m.running:
		status = "PAUSED"
	}
	mode := "manual"
	if m.auto {
		mode = "autopilot"
	}

	var b strings.Builder
	b.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")
	b.WriteString(statusStyle(f.Collided, m.running).Render(status) + "\n\n")

	if len(m.clearance) > 1 {
		chart := asciigraph.Plot(m.clearance, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Clearance (m)"))
		b.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	cmd := m.manual.Cmd
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", f.Time))
	row("Pose", fmt.Sprintf("%.2f, %.2f, %.2f", f.Pose.X, f.Pose.Y, f.Pose.Theta))
	row("Mode", mode)
	row("Command", fmt.Sprintf("v=%.2f w=%.2f", cmd.Linear, cmd.Angular))
	if f.Scan != nil {
		frac := f.Scan.MinRange() / f.Scan.MaxRange
		row("Nearest", fmt.Sprintf("%s %.2f", ProgressBar(frac, 10), f.Scan.MinRange()))
	}
	metrics := s.Metrics()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.3f", metrics[name]))
	}

	b.WriteString(helpStyle.Render("─────────────────────\n↑↓←→:Drive X:Stop SP:Pause\nR:Reset TAB:Auto L:Rays\nT:Theme ?:Help Q:Quit"))
	statsView := statsStyle.Render(b.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Up/W     - Faster forward           ║
║  Down/S   - Slower / reverse         ║
║  Left/A   - Turn left                ║
║  Right/D  - Turn right               ║
║  X        - Stop                     ║
║  Space    - Pause/Resume             ║
║  R        - Reset to start pose      ║
║  Tab      - Toggle autopilot         ║
║  L        - Toggle lidar hits        ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// RunLive starts the teleop TUI.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
