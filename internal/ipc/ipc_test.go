package ipc

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/session"
	"github.com/1broseidon/gridtile/internal/store"
)

func startServer(t *testing.T) (*Server, *Client, *store.MemoryStore) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	st := store.NewMemoryStore()
	reg := board.NewRegistry(st, board.RegistryOptions{
		Surface:          board.Options{DefaultW: 2, DefaultH: 1},
		Grid:             geometry.GridConfig{Columns: 4, RowHeightPx: 30, GapPx: 10},
		ContainerWidthPx: 430,
	})
	srv, err := NewServer(reg, log.New(io.Discard))
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	return srv, NewClient(), st
}

func TestClientServer_BoardLifecycle(t *testing.T) {
	_, c, st := startServer(t)
	require.True(t, c.Available())

	_, err := c.GetBoard("main")
	assert.ErrorIs(t, err, board.ErrNotFound)

	v, err := c.AddWidget("main", board.WidgetSpec{ID: "a"})
	require.NoError(t, err)
	v, err = c.AddWidget("main", board.WidgetSpec{ID: "b", X: 2})
	require.NoError(t, err)
	assert.Equal(t, grid.Layout{
		{ID: "a", X: 0, Y: 0, W: 2, H: 1},
		{ID: "b", X: 2, Y: 0, W: 2, H: 1},
	}, v.Board.Widgets)
	assert.True(t, v.Dirty)

	v, err = c.MoveWidget("main", "a", 2, 0)
	require.NoError(t, err)
	a, _ := v.Board.Widgets.Find("a")
	assert.Equal(t, grid.Placement{ID: "a", X: 2, Y: 1, W: 2, H: 1}, a)

	v, err = c.KeyCommand("main", "a", session.DirLeft, true)
	require.NoError(t, err)
	a, _ = v.Board.Widgets.Find("a")
	assert.Equal(t, 1, a.W)

	v, err = c.ResizeWidget("main", "b", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Rows)

	v, err = c.RemoveWidget("main", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v.Board.Widgets.IDs())

	v, err = c.SaveBoard("main")
	require.NoError(t, err)
	assert.False(t, v.Dirty)
	stored, err := st.Load(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, stored.Widgets.IDs())

	names, err := c.ListBoards()
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, names)

	status, err := c.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, []string{"main"}, status.Boards)

	require.NoError(t, c.DeleteBoard("main"))
	assert.ErrorIs(t, c.DeleteBoard("main"), board.ErrNotFound)
}

func TestClientServer_EventStream(t *testing.T) {
	_, c, _ := startServer(t)

	_, err := c.AddWidget("main", board.WidgetSpec{ID: "a"})
	require.NoError(t, err)
	_, err = c.AddWidget("main", board.WidgetSpec{ID: "b", X: 2})
	require.NoError(t, err)

	v, err := c.SendEvent("main", session.Event{Kind: session.EventSessionStart, WidgetID: "a", Pointer: geometry.Point{X: 50, Y: 15}})
	require.NoError(t, err)
	assert.Equal(t, "dragging", v.Phase)

	v, err = c.SendEvent("main", session.Event{Kind: session.EventPointerMove, Pointer: geometry.Point{X: 270, Y: 15}})
	require.NoError(t, err)
	a, _ := v.Board.Widgets.Find("a")
	assert.Equal(t, grid.Placement{ID: "a", X: 2, Y: 1, W: 2, H: 1}, a)

	v, err = c.SendEvent("main", session.Event{Kind: session.EventSessionEnd})
	require.NoError(t, err)
	assert.Equal(t, "idle", v.Phase)

	_, err = c.SendEvent("main", session.Event{Kind: session.EventPointerMove})
	assert.ErrorIs(t, err, grid.ErrInvalidArgument)
}

func TestClientServer_SetGridAndErrors(t *testing.T) {
	_, c, _ := startServer(t)

	v, err := c.SetGrid("wide", geometry.GridConfig{Columns: 6, RowHeightPx: 20, GapPx: 5}, 600)
	require.NoError(t, err)
	assert.Equal(t, 6, v.Board.Grid.Columns)
	assert.Equal(t, 600, v.Board.ContainerWidthPx)

	_, err = c.SetGrid("wide", geometry.GridConfig{Columns: 0, RowHeightPx: 20}, 600)
	assert.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, err = c.MoveWidget("wide", "ghost", 0, 0)
	assert.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, err = c.MoveWidget("nope", "ghost", 0, 0)
	assert.ErrorIs(t, err, board.ErrNotFound)

	err = c.call(CommandType("BOGUS"), nil, nil)
	assert.ErrorContains(t, err, "Unknown command")

	err = c.call(CommandGetBoard, nil, nil)
	assert.ErrorIs(t, err, grid.ErrInvalidArgument)
}

func TestClient_NoDaemon(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	c := NewClient()
	assert.False(t, c.Available())
	_, err := c.GetStatus()
	assert.ErrorContains(t, err, "is the daemon running?")
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"GET_BOARD","payload":{"board":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, CommandGetBoard, req.Command)

	_, err = ParseRequest([]byte(`{}`))
	assert.Error(t, err)
	_, err = ParseRequest([]byte(`nope`))
	assert.Error(t, err)
}
