package viz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/metrics"
	"github.com/san-kum/graphsim/internal/sim"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 300
	frameInterval   = time.Second / 60
)

type TickMsg time.Time

// LiveOptions tunes the live view. Zero values fall back to defaults.
type LiveOptions struct {
	Title         string
	StepsPerFrame int
	Seed          int64
	Width, Height int
	Theme         string
}

// LiveModel is a Bubble Tea model that owns the frame loop of a simulation
// driven by a StepScheduler. The manager and scheduler are shared, so the
// model is safe to copy by value the way Bubble Tea expects.
type LiveModel struct {
	mgr   *sim.Manager
	sched *sim.StepScheduler

	title         string
	stepsPerFrame int
	canvas        *Canvas
	energy        *metrics.Energy
	history       *[]float64
	added         *[]string
	rng           *rand.Rand
	theme         Theme
	showHelp      bool
}

func NewLiveModel(mgr *sim.Manager, sched *sim.StepScheduler, opts LiveOptions) LiveModel {
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.Width <= 0 {
		opts.Width = width
	}
	if opts.Height <= 0 {
		opts.Height = height
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Title == "" {
		opts.Title = "graphsim"
	}

	energy := metrics.NewEnergy()
	mgr.AddObserver(energy)

	history := make([]float64, 0, historyCapacity)
	added := make([]string, 0)
	return LiveModel{
		mgr:           mgr,
		sched:         sched,
		title:         opts.Title,
		stepsPerFrame: opts.StepsPerFrame,
		canvas:        NewCanvas(opts.Width, opts.Height),
		energy:        energy,
		history:       &history,
		added:         &added,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		theme:         GetTheme(opts.Theme),
	}
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.togglePause()
		case "r":
			m.mgr.Reheat()
		case "n":
			m.addNode()
		case "x":
			m.removeNode()
		case "+", "=":
			m.scaleRepulsion(1.1)
		case "-", "_":
			m.scaleRepulsion(0.9)
		case "[":
			m.shiftLinkDistance(-10)
		case "]":
			m.shiftLinkDistance(10)
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.sched.Drain(m.stepsPerFrame) > 0 {
			m.record()
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) togglePause() {
	switch m.mgr.State() {
	case sim.Running:
		m.mgr.Pause()
	case sim.Paused:
		m.mgr.Resume()
	}
}

// addNode spawns a node next to a random existing node and links the two.
func (m *LiveModel) addNode() {
	nodes := m.mgr.Nodes()
	if len(nodes) == 0 {
		return
	}
	anchor := nodes[m.rng.Intn(len(nodes))]
	id := uuid.NewString()
	x := anchor.X + m.rng.Float64()*20 - 10
	y := anchor.Y + m.rng.Float64()*20 - 10
	m.mgr.AddNode(id, x, y, "")
	m.mgr.AddLink(id+"-"+anchor.ID, anchor.ID, id)
	*m.added = append(*m.added, id)
}

func (m *LiveModel) removeNode() {
	n := len(*m.added)
	if n == 0 {
		return
	}
	id := (*m.added)[n-1]
	*m.added = (*m.added)[:n-1]
	m.mgr.RemoveNode(id)
}

func (m *LiveModel) scaleRepulsion(factor float64) {
	cur := m.mgr.Config().Simulation.RepulsionStrength
	m.mgr.UpdateConfig(config.Patch{RepulsionStrength: config.Float(cur * factor)})
}

func (m *LiveModel) shiftLinkDistance(delta float64) {
	d := m.mgr.Config().Simulation.LinkDistance + delta
	if d < 0 {
		d = 0
	}
	m.mgr.UpdateConfig(config.Patch{LinkDistance: config.Float(d)})
}

func (m *LiveModel) record() {
	h := append(*m.history, m.energy.Value())
	if len(h) > historyCapacity {
		h = h[1:]
	}
	*m.history = h
}

func (m LiveModel) status() string {
	state := m.mgr.State()
	if state == sim.Running && !m.mgr.Ticking() {
		return "SETTLED"
	}
	return state.String()
}

func (m LiveModel) View() string {
	nodes := m.mgr.Nodes()
	links := m.mgr.Links()

	m.canvas.Clear()
	sw, sh := m.canvas.SubSize()
	DrawLayout(m.canvas, FitViewport(nodes, sw, sh, 2), nodes, links)
	canvasView := canvasStyle.Foreground(m.theme.Canvas).Render(m.canvas.String())

	cfg := m.mgr.Config().Simulation
	alpha := m.mgr.Alpha()
	status := m.status()

	var s strings.Builder
	s.WriteString(headerStyle.Foreground(m.theme.Accent).Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(statusStyle(m.theme, status == sim.Running.String()).Render(status) + "\n\n")

	history := *m.history
	if len(history) > 1 {
		chart := asciigraph.Plot(history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Alpha") + valueStyle.Render(ProgressBar(alpha, 16)+fmt.Sprintf(" %.3f", alpha)) + "\n")
	s.WriteString(labelStyle.Render("Ticks") + valueStyle.Render(fmt.Sprintf("%d", m.mgr.TickCount())) + "\n")
	s.WriteString(labelStyle.Render("Nodes") + valueStyle.Render(fmt.Sprintf("%d", len(nodes))) + "\n")
	s.WriteString(labelStyle.Render("Links") + valueStyle.Render(fmt.Sprintf("%d", len(links))) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f", m.energy.Value())) + "\n")
	s.WriteString("\nPARAMETERS\n")
	s.WriteString(labelStyle.Render("Repulsion") + valueStyle.Render(fmt.Sprintf("%.1f", cfg.RepulsionStrength)) + "\n")
	s.WriteString(labelStyle.Render("Link dist") + valueStyle.Render(fmt.Sprintf("%.1f", cfg.LinkDistance)) + "\n")
	s.WriteString(helpStyle.Foreground(m.theme.Muted).Render("─────────────────────\nSP:Pause R:Reheat Q:Quit\nN:Add X:Remove T:Theme\n+/-:Repulsion [ ]:Links ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reheat                   ║
║  N        - Add a linked node        ║
║  X        - Remove last added node   ║
║  + / -    - Repulsion +10% / -10%    ║
║  [ / ]    - Link distance -10 / +10  ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
