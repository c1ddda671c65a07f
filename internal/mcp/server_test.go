package mcp

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/store"
)

func newTestServer(t *testing.T, autoSave bool) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	reg := board.NewRegistry(st, board.RegistryOptions{
		Surface:          board.Options{DefaultW: 2, DefaultH: 1},
		Grid:             geometry.GridConfig{Columns: 4, RowHeightPx: 30, GapPx: 10},
		ContainerWidthPx: 430,
	})
	return NewServer(reg, Options{DefaultBoard: "main", AutoSave: autoSave, Logger: log.New(io.Discard)}), st
}

func TestHandlers_EditFlow(t *testing.T) {
	ctx := context.Background()
	s, st := newTestServer(t, true)

	_, _, err := s.handleGetBoard(ctx, nil, BoardInput{})
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, out, err := s.handleAddWidget(ctx, nil, AddWidgetInput{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "main", out.Board)
	_, out, err = s.handleAddWidget(ctx, nil, AddWidgetInput{ID: "b", X: 2})
	require.NoError(t, err)
	assert.False(t, out.Dirty, "auto-saved")

	_, out, err = s.handleMoveWidget(ctx, nil, MoveWidgetInput{ID: "a", X: 2, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, []grid.Placement{
		{ID: "a", X: 2, Y: 1, W: 2, H: 1},
		{ID: "b", X: 2, Y: 0, W: 2, H: 1},
	}, out.Widgets)
	assert.Equal(t, 2, out.Rows)
	assert.Equal(t, 70, out.HeightPx)

	_, out, err = s.handleKeyCommand(ctx, nil, KeyCommandInput{ID: "a", Direction: "left"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Widgets[0].X)

	_, _, err = s.handleKeyCommand(ctx, nil, KeyCommandInput{ID: "a", Direction: "sideways"})
	assert.Error(t, err)

	_, out, err = s.handleResizeWidget(ctx, nil, ResizeWidgetInput{ID: "b", W: 1, H: 1})
	require.NoError(t, err)
	assert.Equal(t, grid.Placement{ID: "b", X: 2, Y: 0, W: 1, H: 1}, out.Widgets[1])

	_, _, err = s.handleResizeWidget(ctx, nil, ResizeWidgetInput{ID: "b", W: 0, H: 1})
	assert.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, out, err = s.handleRemoveWidget(ctx, nil, WidgetInput{ID: "b"})
	require.NoError(t, err)
	assert.Len(t, out.Widgets, 1)

	stored, err := st.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, stored.Widgets.IDs())

	_, list, err := s.handleListBoards(ctx, nil, ListBoardsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, list.Boards)
}

func TestHandlers_SetGridAndSave(t *testing.T) {
	ctx := context.Background()
	s, st := newTestServer(t, false)

	_, out, err := s.handleSetGrid(ctx, nil, SetGridInput{Board: "ops", Columns: 6, RowHeightPx: 20, ContainerWidthPx: 600})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Grid.Columns)
	assert.True(t, out.Dirty)
	assert.Empty(t, out.Widgets)
	assert.NotNil(t, out.Widgets)

	_, err = st.Load(ctx, "ops")
	assert.ErrorIs(t, err, board.ErrNotFound)

	_, out, err = s.handleSaveBoard(ctx, nil, BoardInput{Board: "ops"})
	require.NoError(t, err)
	assert.False(t, out.Dirty)
	_, err = st.Load(ctx, "ops")
	assert.NoError(t, err)
}

func TestHandleResolveLayout(t *testing.T) {
	s, _ := newTestServer(t, false)

	_, out, err := s.handleResolveLayout(context.Background(), nil, ResolveLayoutInput{
		Columns:   4,
		ChangedID: "a",
		Layout: []grid.Placement{
			{ID: "a", X: 0, Y: 0, W: 6, H: 1},
			{ID: "b", X: 0, Y: 1, W: 1, H: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []grid.Placement{
		{ID: "a", X: 0, Y: 0, W: 6, H: 1},
		{ID: "b", X: 0, Y: 1, W: 1, H: 1},
	}, out.Layout)

	_, _, err = s.handleResolveLayout(context.Background(), nil, ResolveLayoutInput{Columns: 0, ChangedID: "a"})
	assert.ErrorIs(t, err, grid.ErrInvalidArgument)
}

func TestServer_OverTransport(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestServer(t, false)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_boards", "get_board", "add_widget", "remove_widget", "move_widget",
		"resize_widget", "key_command", "set_grid", "save_board", "resolve_layout",
	}, names)

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "add_widget",
		Arguments: map[string]any{"id": "a", "w": 3},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "move_widget",
		Arguments: map[string]any{"id": "ghost", "x": 0, "y": 0},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
