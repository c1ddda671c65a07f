package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/journal"
	"github.com/1broseidon/gridtile/internal/session"
)

// Options configure a Surface.
type Options struct {
	Store   Store            // nil disables Save
	Journal *journal.Journal // nil disables journaling
	Logger  *log.Logger      // nil uses log.Default()

	// DefaultW and DefaultH size widgets added without a size.
	DefaultW int
	DefaultH int
}

// WidgetSpec describes a widget to add. Empty ID gets a generated one; zero
// W or H gets the default size.
type WidgetSpec struct {
	ID string `json:"id,omitempty"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
	W  int    `json:"w,omitempty"`
	H  int    `json:"h,omitempty"`
}

// Surface owns one committed board. All methods are safe for concurrent use
// and are applied in call order.
type Surface struct {
	mu        sync.Mutex
	board     Board
	ctrl      *session.Controller
	dirty     bool
	changed   bool
	opts      Options
	logger    *log.Logger
	listeners []func(Board)
}

// NewSurface validates b, settles its widgets and wraps it.
func NewSurface(b *Board, opts Options) (*Surface, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if opts.DefaultW < 1 {
		opts.DefaultW = 1
	}
	if opts.DefaultH < 1 {
		opts.DefaultH = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Surface{
		board:  b.Clone(),
		opts:   opts,
		logger: logger.With("board", b.Name),
	}
	settled, err := grid.Settle(s.board.Widgets, s.board.Grid)
	if err != nil {
		return nil, err
	}
	if !settled.Equal(s.board.Widgets) {
		s.logger.Debug("settled stored layout")
		s.dirty = true
	}
	s.board.Widgets = settled

	ctrl, err := session.New(settled, b.Grid, b.ContainerWidthPx, s.commit)
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// Name returns the board name.
func (s *Surface) Name() string {
	return s.board.Name
}

// OnChange registers fn to receive a snapshot after every committed change.
// fn runs outside the surface lock and may call back into the Surface.
func (s *Surface) OnChange(fn func(Board)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a copy of the committed board.
func (s *Surface) Snapshot() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// View is a board snapshot with the derived values remote callers need.
type View struct {
	Board    Board  `json:"board"`
	Rows     int    `json:"rows"`
	HeightPx int    `json:"height_px"`
	Dirty    bool   `json:"dirty"`
	Phase    string `json:"phase"`
	Active   string `json:"active_widget,omitempty"`
}

// View returns a consistent snapshot of the board and its session.
func (s *Surface) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.board.Clone()
	return View{
		Board:    b,
		Rows:     b.Rows(),
		HeightPx: b.HeightPx(),
		Dirty:    s.dirty,
		Phase:    s.ctrl.Phase().String(),
		Active:   s.ctrl.ActiveWidget(),
	}
}

// Dirty reports whether there are changes not yet saved.
func (s *Surface) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Phase returns the interaction session phase.
func (s *Surface) Phase() session.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Phase()
}

// AddWidget places a new widget and resolves the board around it.
func (s *Surface) AddWidget(spec WidgetSpec) (grid.Placement, error) {
	var added grid.Placement
	err := s.update(func() error {
		id := spec.ID
		if id == "" {
			id = uuid.New().String()[:8]
		}
		if _, exists := s.board.Widgets.Find(id); exists {
			return grid.InvalidArgument("add", "id", "widget %q already exists", id)
		}
		p := grid.Placement{ID: id, X: spec.X, Y: spec.Y, W: spec.W, H: spec.H}
		if p.W == 0 {
			p.W = s.opts.DefaultW
		}
		if p.H == 0 {
			p.H = s.opts.DefaultH
		}
		if p.X < 0 || p.Y < 0 {
			return grid.InvalidArgument("add", "position", "%s: negative coordinates", p)
		}

		next := append(s.board.Widgets.Clone(), p)
		out, err := grid.Resolve(next, id, s.board.Grid)
		if err != nil {
			return err
		}
		s.replace(out)
		added, _ = out.Find(id)
		s.opts.Journal.Record(journal.ActionWidgetAdd, s.board.Name, "widget", id, "placement", added.String())
		return nil
	})
	return added, err
}

// RemoveWidget deletes a widget and lets the rest fall into the gap.
func (s *Surface) RemoveWidget(id string) error {
	return s.update(func() error {
		if _, ok := s.board.Widgets.Find(id); !ok {
			return grid.InvalidArgument("remove", "id", "widget %q not in layout", id)
		}
		out, err := grid.Compact(s.board.Widgets.Without(id), s.board.Grid)
		if err != nil {
			return err
		}
		s.replace(out)
		s.opts.Journal.Record(journal.ActionWidgetRemove, s.board.Name, "widget", id)
		return nil
	})
}

// MoveWidget sets a widget's position directly and resolves.
func (s *Surface) MoveWidget(id string, x, y int) error {
	return s.edit(id, func(p *grid.Placement) error {
		p.X, p.Y = x, y
		return nil
	})
}

// ResizeWidget sets a widget's size directly and resolves.
func (s *Surface) ResizeWidget(id string, w, h int) error {
	return s.edit(id, func(p *grid.Placement) error {
		if w < 1 || h < 1 {
			return grid.InvalidArgument("resize", "size", "size must be at least 1x1 (got %dx%d)", w, h)
		}
		p.W, p.H = w, h
		return nil
	})
}

func (s *Surface) edit(id string, apply func(*grid.Placement) error) error {
	return s.update(func() error {
		next := s.board.Widgets.Clone()
		i := next.Index(id)
		if i < 0 {
			return grid.InvalidArgument("edit", "id", "widget %q not in layout", id)
		}
		if err := apply(&next[i]); err != nil {
			return err
		}
		out, err := grid.Resolve(next, id, s.board.Grid)
		if err != nil {
			return err
		}
		s.replace(out)
		p, _ := out.Find(id)
		s.opts.Journal.Record(journal.ActionWidgetEdit, s.board.Name, "widget", id, "placement", p.String())
		return nil
	})
}

// Handle feeds one normalized input event to the session controller.
func (s *Surface) Handle(ev session.Event) error {
	return s.update(func() error {
		if err := s.ctrl.Handle(ev); err != nil {
			s.opts.Journal.Record(journal.ActionRejected, s.board.Name, "event", ev.String(), "err", err.Error())
			return err
		}
		s.record(ev)
		return nil
	})
}

// KeyCommand applies a one-step keyboard move or resize.
func (s *Surface) KeyCommand(id string, dir session.Direction, resize bool) error {
	return s.Handle(session.Event{Kind: session.EventKeyCommand, WidgetID: id, Direction: dir, Resize: resize})
}

// SetGrid swaps the grid configuration. Widgets are only moved when they no
// longer fit.
func (s *Surface) SetGrid(cfg geometry.GridConfig, containerWidthPx int) error {
	return s.update(func() error {
		if containerWidthPx <= 0 {
			return grid.InvalidArgument("set-grid", "container_width_px", "must be > 0 (got %d)", containerWidthPx)
		}
		if err := s.ctrl.SetGrid(cfg, containerWidthPx); err != nil {
			return err
		}
		s.board.Grid = cfg
		s.board.ContainerWidthPx = containerWidthPx
		s.markChanged()
		s.opts.Journal.Record(journal.ActionGridSet, s.board.Name,
			"columns", cfg.Columns, "row_height_px", cfg.RowHeightPx, "gap_px", cfg.GapPx, "width", containerWidthPx)
		return nil
	})
}

// Save writes the committed board to the store.
func (s *Surface) Save(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.board.Clone()
	s.mu.Unlock()

	if s.opts.Store == nil {
		return fmt.Errorf("board %q: no store configured", snapshot.Name)
	}
	if err := s.opts.Store.Save(ctx, &snapshot); err != nil {
		return fmt.Errorf("failed to save board %q: %w", snapshot.Name, err)
	}

	s.mu.Lock()
	if s.board.UpdatedAt.Equal(snapshot.UpdatedAt) {
		s.dirty = false
	}
	s.mu.Unlock()

	s.opts.Journal.Record(journal.ActionBoardSave, snapshot.Name, "widgets", len(snapshot.Widgets))
	s.logger.Debug("saved", "widgets", len(snapshot.Widgets))
	return nil
}

// update runs fn under the lock and notifies listeners afterwards if fn
// committed anything.
func (s *Surface) update(fn func() error) error {
	s.mu.Lock()
	s.changed = false
	err := fn()
	changed := s.changed
	var snapshot Board
	var listeners []func(Board)
	if changed {
		snapshot = s.board.Clone()
		listeners = append(listeners, s.listeners...)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
	return err
}

// commit is the controller's emit callback; it runs with s.mu held.
func (s *Surface) commit(l grid.Layout) {
	s.board.Widgets = l
	s.markChanged()
}

// replace installs a layout produced outside the controller.
func (s *Surface) replace(l grid.Layout) {
	s.ctrl.SetLayout(l)
	s.board.Widgets = l.Clone()
	s.markChanged()
}

func (s *Surface) markChanged() {
	s.board.UpdatedAt = time.Now().UTC()
	s.dirty = true
	s.changed = true
}

func (s *Surface) record(ev session.Event) {
	name := s.board.Name
	switch ev.Kind {
	case session.EventSessionStart:
		action := journal.ActionDragStart
		if ev.Mode == session.ModeResize {
			action = journal.ActionResizeStart
		}
		s.opts.Journal.Record(action, name, "widget", ev.WidgetID, "x", ev.Pointer.X, "y", ev.Pointer.Y)
	case session.EventPointerMove:
		s.opts.Journal.Record(journal.ActionPointerMove, name, "x", ev.Pointer.X, "y", ev.Pointer.Y)
	case session.EventSessionEnd, session.EventCancel:
		s.opts.Journal.Record(journal.ActionSessionEnd, name, "cancel", ev.Kind == session.EventCancel)
	case session.EventKeyCommand:
		s.opts.Journal.Record(journal.ActionKey, name, "widget", ev.WidgetID, "direction", ev.Direction.String(), "resize", ev.Resize)
	}
}
