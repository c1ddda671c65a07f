// Package session turns a stream of pointer and keyboard events into a
// sequence of settled layouts.
//
// A Controller is not safe for concurrent use; hosts that receive events from
// several goroutines must serialise them (see board.Surface).
package session

import (
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
)

const op = "session"

// EmitFunc receives every layout the controller produces. The layout is the
// caller's to keep.
type EmitFunc func(grid.Layout)

// Controller owns the working layout and the state of at most one pointer
// session.
type Controller struct {
	cfg   geometry.GridConfig
	width int

	layout grid.Layout
	emit   EmitFunc
	state  state
}

// New creates an idle controller over a copy of layout. emit may be nil.
func New(layout grid.Layout, cfg geometry.GridConfig, containerWidthPx int, emit EmitFunc) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &grid.ArgumentError{Op: op, Field: "config", Err: err}
	}
	if emit == nil {
		emit = func(grid.Layout) {}
	}
	return &Controller{
		cfg:    cfg,
		width:  containerWidthPx,
		layout: layout.Clone(),
		emit:   emit,
	}, nil
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase { return c.state.phase }

// ActiveWidget returns the widget of the running session, or "" when idle.
func (c *Controller) ActiveWidget() string { return c.state.widgetID }

// Layout returns a copy of the last emitted (or initial) layout.
func (c *Controller) Layout() grid.Layout { return c.layout.Clone() }

// Grid returns the grid configuration and container width in use.
func (c *Controller) Grid() (geometry.GridConfig, int) { return c.cfg, c.width }

// SetLayout replaces the working layout, ending any running session. It is
// used when the owner edits the layout outside of a session.
func (c *Controller) SetLayout(layout grid.Layout) {
	c.state.reset()
	c.layout = layout.Clone()
}

// SetGrid swaps the grid configuration. Grid coordinates are kept; if they no
// longer form a settled layout under cfg (fewer columns) the layout is
// settled and emitted. Any running session is ended because its recorded
// pixel offsets refer to the old geometry.
func (c *Controller) SetGrid(cfg geometry.GridConfig, containerWidthPx int) error {
	if err := cfg.Validate(); err != nil {
		return &grid.ArgumentError{Op: op, Field: "config", Err: err}
	}
	c.state.reset()
	c.cfg = cfg
	c.width = containerWidthPx

	if grid.CheckSettled(c.layout, cfg) == nil {
		return nil
	}
	settled, err := grid.Settle(c.layout, cfg)
	if err != nil {
		return err
	}
	c.commit(settled)
	return nil
}

// BeginDrag starts a drag session. The offset between pointer and the
// widget's pixel top-left is kept for the whole session so the widget does
// not jump under the pointer. A running session is ended first.
func (c *Controller) BeginDrag(widgetID string, pointer geometry.Point) error {
	p, ok := c.layout.Find(widgetID)
	if !ok {
		return grid.InvalidArgument(op, "widgetID", "widget %q not in layout", widgetID)
	}
	c.state.reset()

	topLeft := geometry.Point{
		X: geometry.GridToPixelX(p.X, c.cfg, c.width),
		Y: geometry.GridToPixelY(p.Y, c.cfg),
	}
	c.state.phase = PhaseDragging
	c.state.widgetID = widgetID
	c.state.offset = pointer.Sub(topLeft)
	return nil
}

// BeginResize starts a resize session anchored at pointer.
func (c *Controller) BeginResize(widgetID string, pointer geometry.Point) error {
	p, ok := c.layout.Find(widgetID)
	if !ok {
		return grid.InvalidArgument(op, "widgetID", "widget %q not in layout", widgetID)
	}
	c.state.reset()

	c.state.phase = PhaseResizing
	c.state.widgetID = widgetID
	c.state.start = pointer
	c.state.startW = p.W
	c.state.startH = p.H
	return nil
}

// PointerMove applies one pointer position to the running session, resolves
// the result and emits it. It fails when no session is running.
func (c *Controller) PointerMove(pointer geometry.Point) error {
	next := c.layout.Clone()
	i := next.Index(c.state.widgetID)

	switch c.state.phase {
	case PhaseDragging:
		if i < 0 {
			return grid.InvalidArgument(op, "widgetID", "widget %q no longer in layout", c.state.widgetID)
		}
		topLeft := pointer.Sub(c.state.offset)
		next[i].X = geometry.PixelToGrid(topLeft.X, geometry.ColumnPitchPx(c.cfg, c.width))
		next[i].Y = geometry.PixelToGrid(topLeft.Y, geometry.RowPitchPx(c.cfg))
	case PhaseResizing:
		if i < 0 {
			return grid.InvalidArgument(op, "widgetID", "widget %q no longer in layout", c.state.widgetID)
		}
		delta := pointer.Sub(c.state.start)
		dw := geometry.PixelDeltaToGrid(delta.X, geometry.ColumnPitchPx(c.cfg, c.width))
		dh := geometry.PixelDeltaToGrid(delta.Y, geometry.RowPitchPx(c.cfg))
		next[i].W = max(1, c.state.startW+dw)
		next[i].H = max(1, c.state.startH+dh)
	default:
		return grid.InvalidArgument(op, "phase", "pointer move outside a session")
	}

	return c.resolve(next, c.state.widgetID)
}

// EndSession returns to idle, keeping the last emitted layout. It always
// succeeds.
func (c *Controller) EndSession() {
	c.state.reset()
}

// Cancel is EndSession for input-device loss.
func (c *Controller) Cancel() {
	c.EndSession()
}

// KeyCommand applies a single grid step to widgetID: x/y when resize is
// false, w/h otherwise (left/up shrink, right/down grow, never below 1).
func (c *Controller) KeyCommand(widgetID string, dir Direction, resize bool) error {
	if dir < DirUp || dir > DirRight {
		return grid.InvalidArgument(op, "direction", "invalid direction %d", int(dir))
	}
	next := c.layout.Clone()
	i := next.Index(widgetID)
	if i < 0 {
		return grid.InvalidArgument(op, "widgetID", "widget %q not in layout", widgetID)
	}

	dx, dy := dir.Delta()
	if resize {
		next[i].W = max(1, next[i].W+dx)
		next[i].H = max(1, next[i].H+dy)
	} else {
		next[i].X += dx
		next[i].Y += dy
	}
	return c.resolve(next, widgetID)
}

// Handle dispatches a normalized event to the matching method.
func (c *Controller) Handle(ev Event) error {
	switch ev.Kind {
	case EventSessionStart:
		switch ev.Mode {
		case ModeDrag, "":
			return c.BeginDrag(ev.WidgetID, ev.Pointer)
		case ModeResize:
			return c.BeginResize(ev.WidgetID, ev.Pointer)
		default:
			return grid.InvalidArgument(op, "mode", "unknown session mode %q", ev.Mode)
		}
	case EventPointerMove:
		return c.PointerMove(ev.Pointer)
	case EventSessionEnd:
		c.EndSession()
		return nil
	case EventCancel:
		c.Cancel()
		return nil
	case EventKeyCommand:
		return c.KeyCommand(ev.WidgetID, ev.Direction, ev.Resize)
	default:
		return grid.InvalidArgument(op, "kind", "unknown event kind %q", ev.Kind)
	}
}

func (c *Controller) resolve(tentative grid.Layout, changedID string) error {
	out, err := grid.Resolve(tentative, changedID, c.cfg)
	if err != nil {
		return err
	}
	c.commit(out)
	return nil
}

func (c *Controller) commit(l grid.Layout) {
	c.layout = l
	c.emit(l.Clone())
}
