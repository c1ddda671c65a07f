// Package tui is an interactive terminal editor for one board.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/session"
)

const headerHeight = 1

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Model is the bubbletea model for the board editor.
type Model struct {
	surface *board.Surface
	keys    keyMap
	help    help.Model

	selected string
	dragging bool
	top      int // first canvas row shown

	status string
	err    error

	width  int
	height int
}

// New creates an editor over sf.
func New(sf *board.Surface) Model {
	m := Model{
		surface: sf,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	if ordered := grid.SortByPosition(sf.Snapshot().Widgets); len(ordered) > 0 {
		m.selected = ordered[0].ID
	}
	return m
}

// Run starts the editor on the current terminal, blocking until the user
// quits.
func Run(sf *board.Surface) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(New(sf), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.key(session.DirUp, false)
	case key.Matches(msg, m.keys.Down):
		m.key(session.DirDown, false)
	case key.Matches(msg, m.keys.Left):
		m.key(session.DirLeft, false)
	case key.Matches(msg, m.keys.Right):
		m.key(session.DirRight, false)
	case key.Matches(msg, m.keys.GrowUp):
		m.key(session.DirUp, true)
	case key.Matches(msg, m.keys.GrowDown):
		m.key(session.DirDown, true)
	case key.Matches(msg, m.keys.GrowLeft):
		m.key(session.DirLeft, true)
	case key.Matches(msg, m.keys.GrowRight):
		m.key(session.DirRight, true)
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Add):
		rows := m.surface.Snapshot().Rows()
		p, err := m.surface.AddWidget(board.WidgetSpec{X: 0, Y: rows})
		if m.setErr(err) {
			m.selected = p.ID
			m.status = "added " + p.ID
		}
	case key.Matches(msg, m.keys.Delete):
		if m.selected == "" {
			break
		}
		removed := m.selected
		m.cycle(1)
		if m.setErr(m.surface.RemoveWidget(removed)) {
			m.status = "removed " + removed
			if m.selected == removed {
				m.selected = ""
			}
		}
	case key.Matches(msg, m.keys.Save):
		if m.setErr(m.surface.Save(context.Background())) {
			m.status = "saved"
		}
	case key.Matches(msg, m.keys.Cancel):
		if m.dragging {
			m.dragging = false
			m.setErr(m.surface.Handle(session.Event{Kind: session.EventCancel}))
		}
	}
	m.ensureVisible()
	return m, nil
}

func (m *Model) key(dir session.Direction, resize bool) {
	if m.selected == "" {
		return
	}
	m.setErr(m.surface.KeyCommand(m.selected, dir, resize))
}

// cycle moves the selection through widgets in reading order.
func (m *Model) cycle(step int) {
	ordered := grid.SortByPosition(m.surface.Snapshot().Widgets)
	if len(ordered) == 0 {
		m.selected = ""
		return
	}
	i := 0
	for j, p := range ordered {
		if p.ID == m.selected {
			i = (j + step + len(ordered)) % len(ordered)
			break
		}
	}
	m.selected = ordered[i].ID
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	b := m.surface.Snapshot()
	d := newDisplay(b.Grid.Columns, m.canvasWidth())
	x, y := msg.X, msg.Y-headerHeight+m.top

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.top = max(m.top-1, 0)
			return
		case tea.MouseButtonWheelDown:
			m.top++
			return
		case tea.MouseButtonLeft:
		default:
			return
		}
		p, corner, ok := d.hit(b.Widgets, x, y)
		if !ok {
			return
		}
		m.selected = p.ID
		mode := session.ModeDrag
		if corner {
			mode = session.ModeResize
		}
		if m.setErr(m.surface.Handle(session.Event{
			Kind:     session.EventSessionStart,
			WidgetID: p.ID,
			Mode:     mode,
			Pointer:  d.toBoard(b, x, y),
		})) {
			m.dragging = true
		}

	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		m.setErr(m.surface.Handle(session.Event{Kind: session.EventPointerMove, Pointer: d.toBoard(b, x, y)}))

	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		m.dragging = false
		m.setErr(m.surface.Handle(session.Event{Kind: session.EventSessionEnd}))
	}
}

// setErr records err for the status line and reports whether it was nil.
func (m *Model) setErr(err error) bool {
	m.err = err
	if err != nil {
		m.status = ""
		return false
	}
	return true
}

func (m Model) canvasWidth() int {
	return max(m.width, 1)
}

func (m Model) canvasHeight() int {
	footer := 1 + lipgloss.Height(m.help.View(m.keys))
	return max(m.height-headerHeight-footer, 1)
}

// ensureVisible scrolls so the selected widget is on screen.
func (m *Model) ensureVisible() {
	if m.height == 0 || m.selected == "" {
		return
	}
	b := m.surface.Snapshot()
	p, ok := b.Widgets.Find(m.selected)
	if !ok {
		return
	}
	r := newDisplay(b.Grid.Columns, m.canvasWidth()).rect(p)
	h := m.canvasHeight()
	if r.Y < m.top {
		m.top = r.Y
	} else if bottom := r.Y + r.Height; bottom > m.top+h {
		m.top = bottom - h
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	b := m.surface.Snapshot()

	dirty := ""
	if m.surface.Dirty() {
		dirty = " *"
	}
	title := titleStyle.Render("gridtile")
	info := infoStyle.Width(max(m.width-lipgloss.Width(title), 0)).Render(
		fmt.Sprintf("%s%s  %d cols  %d rows  %s", b.Name, dirty, b.Grid.Columns, b.Rows(), m.surface.Phase()))

	canvas := strings.Join(renderCanvas(b, m.selected, m.canvasWidth(), m.canvasHeight(), m.top), "\n")

	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render(m.err.Error())
	case m.status != "":
		status = statusStyle.Render(m.status)
	case m.selected != "":
		if p, ok := b.Widgets.Find(m.selected); ok {
			status = p.String()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, title, info),
		canvas,
		status,
		m.help.View(m.keys),
	)
}
