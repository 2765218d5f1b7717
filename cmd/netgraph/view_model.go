package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
	"github.com/dd0wney/cluso-netgraph/pkg/metrics"
	"github.com/dd0wney/cluso-netgraph/pkg/render"
	"github.com/dd0wney/cluso-netgraph/pkg/viewport"
)

// Styles
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5A4FCF")).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

const (
	// wheelStep is the delta reported for one wheel notch.
	wheelStep = 120
	// chromeRows is the status line plus the help line.
	chromeRows = 2
	panStep    = 4 * render.CellWidth
	keyZoom    = 1.2
)

type viewKeyMap struct {
	Quit      key.Binding
	Reset     key.Binding
	Reshuffle key.Binding
	Clear     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Help      key.Binding
}

var viewKeys = viewKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset view"),
	),
	Reshuffle: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "reshuffle"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear selection"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
}

func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reset, k.Reshuffle, k.Clear, k.Help, k.Quit}
}

func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reset, k.Reshuffle, k.Clear},
		{k.ZoomIn, k.ZoomOut},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Help, k.Quit},
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// viewModel drives a controller from terminal input. Mouse cells map to the
// pixel centre of the cell so the controller sees ordinary pointer events.
type viewModel struct {
	ctrl     *viewport.Controller
	renderer *render.Renderer
	metrics  *metrics.Registry
	logger   logging.Logger
	help     help.Model
	keys     viewKeyMap

	cols, rows int
	message    string
	messageErr bool
	startTime  time.Time
}

func newViewModel(c *viewport.Controller, opts render.Options, reg *metrics.Registry, logger logging.Logger) *viewModel {
	m := &viewModel{
		ctrl:      c,
		renderer:  render.NewRenderer(opts, reg, logger),
		metrics:   reg,
		logger:    logger,
		help:      help.New(),
		keys:      viewKeys,
		startTime: time.Now(),
	}
	c.Subscribe(m.onEvent)
	return m
}

func (m *viewModel) onEvent(ev viewport.Event) {
	if ev.Kind != viewport.SelectionChanged {
		return
	}
	if ev.NodeID == "" {
		m.setMessage("selection cleared", false)
		return
	}
	label := ev.NodeID
	if n, ok := m.ctrl.Graph().Node(ev.NodeID); ok {
		label = n.Label
	}
	verb := "deselected"
	if m.ctrl.State().IsSelected(ev.NodeID) {
		verb = "selected"
	}
	m.setMessage(fmt.Sprintf("%s %s", verb, label), false)
}

func (m *viewModel) setMessage(msg string, isErr bool) {
	m.message, m.messageErr = msg, isErr
}

func (m *viewModel) Init() tea.Cmd {
	return tickCmd()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tickMsg:
		if m.metrics != nil {
			m.metrics.UpdateSystemMetrics(m.startTime)
		}
		return m, tickCmd()

	case tea.MouseMsg:
		m.mouse(msg)

	case tea.KeyMsg:
		return m, m.key(msg)
	}
	return m, nil
}

func (m *viewModel) resize(cols, rows int) {
	m.cols, m.rows = cols, rows-chromeRows
	m.help.Width = cols
	if m.cols <= 0 || m.rows <= 0 {
		return
	}
	w, h := float64(m.cols*render.CellWidth), float64(m.rows*render.CellHeight)
	if err := m.ctrl.SetCanvasSize(w, h); err != nil {
		m.setMessage(err.Error(), true)
	}
}

// cellPoint is the pixel centre of a terminal cell.
func cellPoint(x, y int) geometry.Point {
	return geometry.Point{
		X: float64(x*render.CellWidth) + render.CellWidth/2,
		Y: float64(y*render.CellHeight) + render.CellHeight/2,
	}
}

func (m *viewModel) mouse(msg tea.MouseMsg) {
	if msg.Y >= m.rows && msg.Action != tea.MouseActionRelease {
		return
	}
	p := cellPoint(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.OnWheel(p, -wheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.OnWheel(p, wheelStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.ctrl.OnPointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.OnPointerMove(p)
	case msg.Action == tea.MouseActionRelease:
		m.ctrl.OnPointerUp(p)
	}
}

func (m *viewModel) key(msg tea.KeyMsg) tea.Cmd {
	center := cellPoint(m.cols/2, m.rows/2)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.ResetView()
		m.setMessage("view reset", false)
	case key.Matches(msg, m.keys.Reshuffle):
		if err := m.ctrl.Reshuffle(); err != nil {
			m.setMessage(err.Error(), true)
		} else {
			m.setMessage("reshuffled", false)
		}
	case key.Matches(msg, m.keys.Clear):
		m.ctrl.ClearSelection()
	case key.Matches(msg, m.keys.ZoomIn):
		m.ctrl.ZoomAt(keyZoom, center)
	case key.Matches(msg, m.keys.ZoomOut):
		m.ctrl.ZoomAt(1/keyZoom, center)
	case key.Matches(msg, m.keys.Up):
		m.ctrl.PanBy(0, panStep)
	case key.Matches(msg, m.keys.Down):
		m.ctrl.PanBy(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		m.ctrl.PanBy(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.ctrl.PanBy(-panStep, 0)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *viewModel) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return "Initializing..."
	}

	surface := render.NewTerminalSurface(m.cols, m.rows)
	m.renderer.Render(surface, render.SceneFrom(m.ctrl.Snapshot()))

	var s strings.Builder
	s.WriteString(surface.String())
	s.WriteString("\n")
	s.WriteString(m.status())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

func (m *viewModel) status() string {
	state := m.ctrl.State()
	visible := m.ctrl.Visible().Len()
	total := len(m.ctrl.Graph().Nodes)

	parts := []string{
		fmt.Sprintf("%d/%d nodes", visible, total),
		fmt.Sprintf("%d selected", len(state.Selected)),
		fmt.Sprintf("zoom %.0f%%", state.Zoom*100),
		m.ctrl.Mode().String(),
		m.ctrl.Graph().Report.Mode.String(),
	}
	if state.Hovered != "" {
		if n, ok := m.ctrl.Graph().Node(state.Hovered); ok {
			parts = append(parts, fmt.Sprintf("%s (degree %d)", n.Label, n.Degree))
		}
	}

	line := statusStyle.Render(strings.Join(parts, " │ "))
	if m.message != "" {
		style := messageStyle
		if m.messageErr {
			style = errorStyle
		}
		line += " " + style.Render(m.message)
	}
	return line
}
