package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/session"
)

const defaultRowHeightPx = 30

func (s *Server) handleListBoards(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListBoardsInput) (*mcpsdk.CallToolResult, ListBoardsOutput, error) {
	names, err := s.registry.List(ctx)
	if err != nil {
		return nil, ListBoardsOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, ListBoardsOutput{Boards: names}, nil
}

func (s *Server) handleGetBoard(ctx context.Context, _ *mcpsdk.CallToolRequest, args BoardInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	sf, err := s.registry.Get(ctx, s.boardName(args.Board))
	if err != nil {
		return nil, BoardOutput{}, err
	}
	return nil, boardOutput(sf.View()), nil
}

func (s *Server) handleAddWidget(ctx context.Context, _ *mcpsdk.CallToolRequest, args AddWidgetInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	sf, err := s.registry.Open(ctx, s.boardName(args.Board))
	if err != nil {
		return nil, BoardOutput{}, err
	}
	if _, err := sf.AddWidget(board.WidgetSpec{ID: args.ID, X: args.X, Y: args.Y, W: args.W, H: args.H}); err != nil {
		return nil, BoardOutput{}, err
	}
	out, err := s.afterEdit(ctx, sf, "add_widget")
	return nil, out, err
}

func (s *Server) handleRemoveWidget(ctx context.Context, _ *mcpsdk.CallToolRequest, args WidgetInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	return s.edit(ctx, args.Board, "remove_widget", func(sf *board.Surface) error {
		return sf.RemoveWidget(args.ID)
	})
}

func (s *Server) handleMoveWidget(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveWidgetInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	return s.edit(ctx, args.Board, "move_widget", func(sf *board.Surface) error {
		return sf.MoveWidget(args.ID, args.X, args.Y)
	})
}

func (s *Server) handleResizeWidget(ctx context.Context, _ *mcpsdk.CallToolRequest, args ResizeWidgetInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	return s.edit(ctx, args.Board, "resize_widget", func(sf *board.Surface) error {
		return sf.ResizeWidget(args.ID, args.W, args.H)
	})
}

func (s *Server) handleKeyCommand(ctx context.Context, _ *mcpsdk.CallToolRequest, args KeyCommandInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	dir, err := session.ParseDirection(args.Direction)
	if err != nil {
		return nil, BoardOutput{}, err
	}
	return s.edit(ctx, args.Board, "key_command", func(sf *board.Surface) error {
		return sf.KeyCommand(args.ID, dir, args.Resize)
	})
}

func (s *Server) handleSetGrid(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetGridInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	sf, err := s.registry.Open(ctx, s.boardName(args.Board))
	if err != nil {
		return nil, BoardOutput{}, err
	}
	cfg := geometry.GridConfig{Columns: args.Columns, RowHeightPx: args.RowHeightPx, GapPx: args.GapPx}
	if err := sf.SetGrid(cfg, args.ContainerWidthPx); err != nil {
		return nil, BoardOutput{}, err
	}
	out, err := s.afterEdit(ctx, sf, "set_grid")
	return nil, out, err
}

func (s *Server) handleSaveBoard(ctx context.Context, _ *mcpsdk.CallToolRequest, args BoardInput) (*mcpsdk.CallToolResult, BoardOutput, error) {
	sf, err := s.registry.Get(ctx, s.boardName(args.Board))
	if err != nil {
		return nil, BoardOutput{}, err
	}
	if err := sf.Save(ctx); err != nil {
		return nil, BoardOutput{}, err
	}
	return nil, boardOutput(sf.View()), nil
}

func (s *Server) handleResolveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args ResolveLayoutInput) (*mcpsdk.CallToolResult, ResolveLayoutOutput, error) {
	cfg := geometry.GridConfig{Columns: args.Columns, RowHeightPx: args.RowHeightPx, GapPx: args.GapPx}
	if cfg.RowHeightPx == 0 {
		cfg.RowHeightPx = defaultRowHeightPx
	}
	out, err := grid.Resolve(grid.Layout(args.Layout), args.ChangedID, cfg)
	if err != nil {
		return nil, ResolveLayoutOutput{}, err
	}
	placements := []grid.Placement(out)
	if placements == nil {
		placements = []grid.Placement{}
	}
	return nil, ResolveLayoutOutput{Layout: placements, Rows: out.Bottom()}, nil
}

// edit applies fn to an existing board.
func (s *Server) edit(ctx context.Context, name, tool string, fn func(*board.Surface) error) (*mcpsdk.CallToolResult, BoardOutput, error) {
	sf, err := s.registry.Get(ctx, s.boardName(name))
	if err != nil {
		return nil, BoardOutput{}, err
	}
	if err := fn(sf); err != nil {
		return nil, BoardOutput{}, err
	}
	out, err := s.afterEdit(ctx, sf, tool)
	return nil, out, err
}
