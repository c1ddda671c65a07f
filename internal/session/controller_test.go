package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
)

// 430px wide, 4 columns, gap 10: cells are 100px, column pitch 110, row pitch 40.
var (
	testCfg   = geometry.GridConfig{Columns: 4, RowHeightPx: 30, GapPx: 10}
	testWidth = 430
)

type recorder struct {
	emitted []grid.Layout
}

func (r *recorder) emit(l grid.Layout) { r.emitted = append(r.emitted, l) }

func (r *recorder) last(t *testing.T) grid.Layout {
	t.Helper()
	require.NotEmpty(t, r.emitted, "nothing emitted")
	return r.emitted[len(r.emitted)-1]
}

func newController(t *testing.T, layout grid.Layout) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := New(layout, testCfg, testWidth, rec.emit)
	require.NoError(t, err)
	return c, rec
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(nil, geometry.GridConfig{Columns: 0, RowHeightPx: 30}, testWidth, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrInvalidArgument))
}

func TestDrag_PushesDownOnCollision(t *testing.T) {
	c, rec := newController(t, grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 2, H: 1},
		{ID: "B", X: 2, Y: 0, W: 2, H: 1},
	})

	require.NoError(t, c.BeginDrag("A", geometry.Point{X: 50, Y: 15}))
	assert.Equal(t, PhaseDragging, c.Phase())
	assert.Empty(t, rec.emitted, "starting a session does not change the layout")

	require.NoError(t, c.PointerMove(geometry.Point{X: 270, Y: 15}))
	assert.Equal(t, grid.Layout{
		{ID: "A", X: 2, Y: 1, W: 2, H: 1},
		{ID: "B", X: 2, Y: 0, W: 2, H: 1},
	}, rec.last(t))

	c.EndSession()
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, rec.last(t), c.Layout())
}

func TestDrag_KeepsPointerOffset(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 1, Y: 0, W: 1, H: 1}})

	// Grab A near its right edge; the widget must not jump.
	require.NoError(t, c.BeginDrag("A", geometry.Point{X: 200, Y: 10}))
	require.NoError(t, c.PointerMove(geometry.Point{X: 200, Y: 10}))
	assert.Equal(t, 1, rec.last(t)[0].X)

	// 54px is less than half a column pitch.
	require.NoError(t, c.PointerMove(geometry.Point{X: 254, Y: 10}))
	assert.Equal(t, 1, rec.last(t)[0].X)

	// 56px rounds up to the next column.
	require.NoError(t, c.PointerMove(geometry.Point{X: 256, Y: 10}))
	assert.Equal(t, 2, rec.last(t)[0].X)

	// Far left clamps to column 0.
	require.NoError(t, c.PointerMove(geometry.Point{X: -500, Y: 10}))
	assert.Equal(t, 0, rec.last(t)[0].X)
	assert.Len(t, rec.emitted, 4, "every pointer move emits")
}

func TestDrag_DownwardIsUndoneByGravity(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 0, Y: 0, W: 1, H: 1}})

	require.NoError(t, c.BeginDrag("A", geometry.Point{X: 10, Y: 10}))
	require.NoError(t, c.PointerMove(geometry.Point{X: 10, Y: 400}))
	assert.Equal(t, grid.Placement{ID: "A", X: 0, Y: 0, W: 1, H: 1}, rec.last(t)[0])
}

func TestResize_OverflowIsAccepted(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 0, Y: 0, W: 2, H: 2}})

	require.NoError(t, c.BeginResize("A", geometry.Point{X: 210, Y: 70}))
	assert.Equal(t, PhaseResizing, c.Phase())

	require.NoError(t, c.PointerMove(geometry.Point{X: 650, Y: 70}))
	assert.Equal(t, grid.Placement{ID: "A", X: 0, Y: 0, W: 6, H: 2}, rec.last(t)[0])
}

func TestResize_NeverBelowOneCell(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 0, Y: 0, W: 2, H: 2}})

	require.NoError(t, c.BeginResize("A", geometry.Point{X: 210, Y: 70}))
	require.NoError(t, c.PointerMove(geometry.Point{X: -1000, Y: -1000}))
	assert.Equal(t, grid.Placement{ID: "A", X: 0, Y: 0, W: 1, H: 1}, rec.last(t)[0])

	// Sizes are relative to the session start, not the previous step.
	require.NoError(t, c.PointerMove(geometry.Point{X: 320, Y: 110}))
	assert.Equal(t, grid.Placement{ID: "A", X: 0, Y: 0, W: 3, H: 3}, rec.last(t)[0])
}

func TestResize_PushesChangedWidgetBelowNeighbour(t *testing.T) {
	c, rec := newController(t, grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 2, H: 1},
		{ID: "B", X: 2, Y: 0, W: 2, H: 1},
	})

	require.NoError(t, c.BeginResize("A", geometry.Point{X: 210, Y: 30}))
	require.NoError(t, c.PointerMove(geometry.Point{X: 320, Y: 30}))
	assert.Equal(t, grid.Layout{
		{ID: "A", X: 0, Y: 1, W: 3, H: 1},
		{ID: "B", X: 2, Y: 0, W: 2, H: 1},
	}, rec.last(t))
}

func TestPointerMove_OutsideSessionIsInvalid(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", W: 1, H: 1}})

	err := c.PointerMove(geometry.Point{X: 10, Y: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, grid.ErrInvalidArgument))
	assert.Empty(t, rec.emitted)
}

func TestBegin_UnknownWidget(t *testing.T) {
	c, _ := newController(t, grid.Layout{{ID: "A", W: 1, H: 1}})

	require.ErrorIs(t, c.BeginDrag("Z", geometry.Point{}), grid.ErrInvalidArgument)
	require.ErrorIs(t, c.BeginResize("Z", geometry.Point{}), grid.ErrInvalidArgument)
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestBegin_ReplacesRunningSession(t *testing.T) {
	c, _ := newController(t, grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 1, H: 1},
		{ID: "B", X: 1, Y: 0, W: 1, H: 1},
	})

	require.NoError(t, c.BeginDrag("A", geometry.Point{}))
	require.NoError(t, c.BeginResize("B", geometry.Point{}))
	assert.Equal(t, PhaseResizing, c.Phase())
	assert.Equal(t, "B", c.ActiveWidget())
}

func TestEndSession_AlwaysSucceeds(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", W: 1, H: 1}})

	c.EndSession()
	c.Cancel()
	assert.Equal(t, PhaseIdle, c.Phase())

	require.NoError(t, c.BeginDrag("A", geometry.Point{}))
	c.Cancel()
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, "", c.ActiveWidget())
	assert.Empty(t, rec.emitted)
}

func TestKeyCommand_DownThenUpRoundTrips(t *testing.T) {
	start := grid.Layout{{ID: "A", X: 1, Y: 0, W: 2, H: 1}}
	c, rec := newController(t, start)

	require.NoError(t, c.KeyCommand("A", DirDown, false))
	require.NoError(t, c.KeyCommand("A", DirUp, false))
	assert.Len(t, rec.emitted, 2)
	assert.Equal(t, start, c.Layout())
}

func TestKeyCommand(t *testing.T) {
	tests := []struct {
		name   string
		dir    Direction
		resize bool
		want   grid.Placement
	}{
		{"move left", DirLeft, false, grid.Placement{ID: "A", X: 0, Y: 0, W: 2, H: 2}},
		{"move right", DirRight, false, grid.Placement{ID: "A", X: 2, Y: 0, W: 2, H: 2}},
		{"move up at top", DirUp, false, grid.Placement{ID: "A", X: 1, Y: 0, W: 2, H: 2}},
		{"grow width", DirRight, true, grid.Placement{ID: "A", X: 1, Y: 0, W: 3, H: 2}},
		{"shrink width", DirLeft, true, grid.Placement{ID: "A", X: 1, Y: 0, W: 1, H: 2}},
		{"grow height", DirDown, true, grid.Placement{ID: "A", X: 1, Y: 0, W: 2, H: 3}},
		{"shrink height", DirUp, true, grid.Placement{ID: "A", X: 1, Y: 0, W: 2, H: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newController(t, grid.Layout{{ID: "A", X: 1, Y: 0, W: 2, H: 2}})
			require.NoError(t, c.KeyCommand("A", tt.dir, tt.resize))
			assert.Equal(t, tt.want, rec.last(t)[0])
		})
	}
}

func TestKeyCommand_ClampsAtRightEdgeAndMinimumSize(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 3, Y: 0, W: 1, H: 1}})

	require.NoError(t, c.KeyCommand("A", DirRight, false))
	assert.Equal(t, 3, rec.last(t)[0].X)

	require.NoError(t, c.KeyCommand("A", DirLeft, true))
	assert.Equal(t, 1, rec.last(t)[0].W)
}

func TestKeyCommand_Invalid(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", W: 1, H: 1}})

	require.ErrorIs(t, c.KeyCommand("Z", DirUp, false), grid.ErrInvalidArgument)
	require.ErrorIs(t, c.KeyCommand("A", Direction(9), false), grid.ErrInvalidArgument)
	assert.Empty(t, rec.emitted)
}

func TestSetGrid_SettlesWhenColumnsShrink(t *testing.T) {
	c, rec := newController(t, grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 2, H: 1},
		{ID: "B", X: 2, Y: 0, W: 2, H: 1},
	})
	require.NoError(t, c.BeginDrag("A", geometry.Point{}))

	narrow := geometry.GridConfig{Columns: 3, RowHeightPx: 30, GapPx: 10}
	require.NoError(t, c.SetGrid(narrow, 320))
	assert.Equal(t, PhaseIdle, c.Phase())
	require.NoError(t, grid.CheckSettled(rec.last(t), narrow))
	assert.Equal(t, grid.Placement{ID: "B", X: 1, Y: 1, W: 2, H: 1}, rec.last(t)[1])

	cfg, width := c.Grid()
	assert.Equal(t, narrow, cfg)
	assert.Equal(t, 320, width)
}

func TestSetGrid_KeepsCoordinatesWhenStillSettled(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 1, Y: 0, W: 2, H: 1}})

	require.NoError(t, c.SetGrid(geometry.GridConfig{Columns: 12, RowHeightPx: 20}, 1200))
	assert.Empty(t, rec.emitted)
	assert.Equal(t, grid.Layout{{ID: "A", X: 1, Y: 0, W: 2, H: 1}}, c.Layout())

	require.ErrorIs(t, c.SetGrid(geometry.GridConfig{Columns: 4}, 400), grid.ErrInvalidArgument)
}

func TestEmittedLayoutIsIndependent(t *testing.T) {
	c, rec := newController(t, grid.Layout{{ID: "A", X: 0, Y: 0, W: 1, H: 1}})

	require.NoError(t, c.KeyCommand("A", DirRight, false))
	rec.last(t)[0].X = 99
	assert.Equal(t, 1, c.Layout()[0].X)
}

func TestHandle_DecodedEventStream(t *testing.T) {
	c, rec := newController(t, grid.Layout{
		{ID: "A", X: 0, Y: 0, W: 2, H: 1},
		{ID: "B", X: 2, Y: 0, W: 2, H: 1},
	})

	raw := []string{
		`{"kind":"session_start","widget_id":"A","mode":"drag","pointer":{"x":50,"y":15}}`,
		`{"kind":"pointer_move","pointer":{"x":270,"y":15}}`,
		`{"kind":"session_end"}`,
		`{"kind":"key_command","widget_id":"B","direction":"left"}`,
	}
	for _, line := range raw {
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
		require.NoError(t, c.Handle(ev), ev.String())
	}

	require.Len(t, rec.emitted, 2)
	assert.Equal(t, grid.Layout{
		{ID: "A", X: 2, Y: 1, W: 2, H: 1},
		{ID: "B", X: 1, Y: 0, W: 2, H: 1},
	}, rec.last(t))
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestHandle_RejectsUnknownKindAndMode(t *testing.T) {
	c, _ := newController(t, grid.Layout{{ID: "A", W: 1, H: 1}})

	require.ErrorIs(t, c.Handle(Event{Kind: "teleport"}), grid.ErrInvalidArgument)
	require.ErrorIs(t, c.Handle(Event{Kind: EventSessionStart, WidgetID: "A", Mode: "spin"}), grid.ErrInvalidArgument)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"up", DirUp, false},
		{"DOWN", DirDown, false},
		{" left ", DirLeft, false},
		{"l", DirRight, false},
		{"k", DirUp, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "dragging", PhaseDragging.String())
	assert.Equal(t, "resizing", PhaseResizing.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
