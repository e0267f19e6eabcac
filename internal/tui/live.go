// Package tui flies a mission phase interactively in the terminal.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/flighteom/internal/mission"
	"github.com/san-kum/flighteom/internal/sim"
	"github.com/san-kum/flighteom/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const historyLen = 60

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of a live phase.
type Model struct {
	def   *mission.Definition
	phase *mission.Phase
	integ sim.Integrator
	cfg   sim.Config

	x0      sim.State
	x       sim.State
	t       float64
	history [][]float64

	paused  bool
	done    bool
	reached bool
	err     error
	speed   float64

	width  int
	height int
}

func NewLive(def *mission.Definition, phase *mission.Phase, x0 sim.State, integ sim.Integrator, cfg sim.Config) Model {
	m := Model{
		def:    def,
		phase:  phase,
		integ:  integ,
		cfg:    cfg,
		x0:     x0.Clone(),
		speed:  1,
		width:  80,
		height: 24,
	}
	m.reset()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			steps := int(m.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps && !m.done; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "space", "p":
		m.paused = !m.paused
	case "r":
		m.reset()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 64)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 1)
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *Model) reset() {
	m.x = m.x0.Clone()
	m.t = 0
	m.done, m.reached, m.err = false, false, nil
	m.history = make([][]float64, len(m.x0))
	m.record()
}

func (m *Model) record() {
	for i, v := range m.x {
		m.history[i] = append(m.history[i], v)
		if len(m.history[i]) > historyLen {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m *Model) step() {
	if m.t >= m.cfg.Duration {
		m.done = true
		return
	}
	h := math.Min(m.cfg.Dt, m.cfg.Duration-m.t)
	next := m.integ.Step(m.phase, m.x, m.t, h)
	if !next.IsValid() {
		m.err = sim.SimError{Time: m.t, Message: "invalid state (NaN/Inf)"}
		m.done = true
		return
	}
	m.x = next
	m.t += h
	m.record()

	if m.cfg.StopWhen != nil && m.cfg.StopWhen(m.x, m.t) {
		m.done, m.reached = true, true
	}
	if m.t >= m.cfg.Duration {
		m.done = true
	}
}

// State returns the current time and state.
func (m Model) State() (float64, sim.State) { return m.t, m.x.Clone() }

// Done reports whether the phase finished and whether its target was reached.
func (m Model) Done() (bool, bool) { return m.done, m.reached }

func (m Model) View() string {
	var b strings.Builder

	statusIcon, statusText := green.Render("●"), green.Render("flying")
	switch {
	case m.err != nil:
		statusIcon, statusText = red.Render("●"), red.Render(m.err.Error())
	case m.reached:
		statusIcon, statusText = cyan.Render("●"), cyan.Render("target reached")
	case m.done:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("duration elapsed")
	case m.paused:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	}
	fmt.Fprintf(&b, "\n   %s %s  %s  %s\n", statusIcon, cyan.Render(m.def.Name), statusText,
		dim.Render(fmt.Sprintf("x%.0f", m.speed)))
	fmt.Fprintf(&b, "   %s\n\n", dim.Render(m.def.Description))

	progress := m.t / m.cfg.Duration
	if target := m.def.Target; target.State != "" {
		if i := m.phase.Index(target.State); i >= 0 && target.Value != m.x0[i] {
			progress = (m.x[i] - m.x0[i]) / (target.Value - m.x0[i])
		}
	}
	barWidth := 36
	filled := int(math.Max(0, math.Min(1, progress)) * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	fmt.Fprintf(&b, "   %s %s\n\n", bar, dim.Render(fmt.Sprintf("t=%.2fs/%.0fs", m.t, m.cfg.Duration)))

	labels, units := m.phase.Labels(), m.phase.Units()
	for i, label := range labels {
		fmt.Fprintf(&b, "   %s %s %s  %s\n",
			dim.Render(fmt.Sprintf("%-18s", label)),
			white.Render(fmt.Sprintf("%14.3f", m.x[i])),
			dim.Render(fmt.Sprintf("%-6s", units[i])),
			cyan.Render(viz.SparklineChart(m.history[i], 24)))
	}

	if m.width > 0 {
		b.WriteString("\n   " + viz.Separator(int(math.Min(float64(m.width-6), 60))) + "\n")
	}
	b.WriteString(dim.Render("   space pause  ±speed  r reset  q quit") + "\n")
	return b.String()
}

// RunLive flies def in an alternate screen until the user quits.
func RunLive(def *mission.Definition, phase *mission.Phase, x0 sim.State, integ sim.Integrator, cfg sim.Config) error {
	p := tea.NewProgram(NewLive(def, phase, x0, integ, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
