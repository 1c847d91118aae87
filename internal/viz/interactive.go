package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Launcher builds a live model for the chosen world and preset.
type Launcher func(world, preset string) (Model, error)

const (
	stateWorld = iota
	statePreset
	stateSim
)

var (
	pickTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	pickErrText = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// picker is a two-step menu (world, then preset) in front of the live view.
type picker struct {
	state     int
	cursor    int
	worlds    []string
	presets   []string
	world     string
	launch    Launcher
	liveModel Model
	err       error
}

func NewPicker(worlds, presets []string, launch Launcher) *picker {
	return &picker{
		state:   stateWorld,
		worlds:  worlds,
		presets: append([]string{"(none)"}, presets...),
		launch:  launch,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	items := m.items()
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state, m.cursor = stateWorld, 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(items) == 0 {
			return m, nil
		}
		if m.state == stateWorld {
			m.world = items[m.cursor]
			m.state, m.cursor = statePreset, 0
			return m, nil
		}
		preset := items[m.cursor]
		if m.cursor == 0 {
			preset = ""
		}
		live, err := m.launch(m.world, preset)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.liveModel, m.state = live, stateSim
		return m, m.liveModel.Init()
	}
	return m, nil
}

func (m picker) items() []string {
	if m.state == stateWorld {
		return m.worlds
	}
	return m.presets
}

func (m picker) View() string {
	if m.state == stateSim {
		return m.liveModel.View()
	}

	heading, sub := "SIM2D", "pick a world"
	if m.state == statePreset {
		heading, sub = strings.ToUpper(m.world), "pick a robot preset"
	}

	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render(heading) + "\n    " + pickSub.Render(sub) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.items() {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", pickCursor.Render("▸"), pickActive.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", pickIdle.Render(name)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + pickErrText.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickIdle.Render(" navigate  ") + pickKey.Render("enter") + pickIdle.Render(" select  ") + pickKey.Render("esc") + pickIdle.Render(" back  ") + pickKey.Render("q") + pickIdle.Render(" quit") + "\n")
	return b.String()
}

func RunInteractive(worlds, presets []string, launch Launcher) error {
	_, err := tea.NewProgram(NewPicker(worlds, presets, launch), tea.WithAltScreen()).Run()
	return err
}
