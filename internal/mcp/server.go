// Package mcp exposes boards as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/grid"
)

const (
	ServerName    = "gridtile"
	ServerVersion = "0.1.0"
)

// Options configure the MCP server.
type Options struct {
	// DefaultBoard is used when a tool call names no board.
	DefaultBoard string
	// AutoSave writes the board to the store after every successful edit.
	AutoSave bool
	Logger   *log.Logger
}

// Server is the MCP server for gridtile boards.
type Server struct {
	mcpServer *mcpsdk.Server
	registry  *board.Registry
	opts      Options
	logger    *log.Logger
}

// NewServer creates an MCP server over registry.
func NewServer(registry *board.Registry, opts Options) *Server {
	if opts.DefaultBoard == "" {
		opts.DefaultBoard = "default"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		registry: registry,
		opts:     opts,
		logger:   logger.WithPrefix("mcp"),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close saves every board with unsaved edits.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.registry.SaveAll(context.Background())
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_boards",
		Description: "List the names of all stored and open boards.",
	}, s.handleListBoards)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_board",
		Description: "Return a board's grid configuration and widget placements. Coordinates are grid units: x is a column, y a row, w and h spans.",
	}, s.handleGetBoard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_widget",
		Description: "Add a widget to a board, creating the board if needed. Widgets it overlaps are not moved; the new widget is pushed below them and everything then falls upward.",
	}, s.handleAddWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_widget",
		Description: "Remove a widget. Widgets below it fall upward into the gap.",
	}, s.handleRemoveWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_widget",
		Description: "Move a widget to a column and row. The widget is clamped into the grid, pushed below anything it overlaps, and the board is compacted.",
	}, s.handleMoveWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_widget",
		Description: "Set a widget's width and height in grid units. Widths beyond the column count pin the widget to column 0.",
	}, s.handleResizeWidget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "key_command",
		Description: "Nudge a widget one cell (or grow/shrink it by one cell when resize is true) as a keyboard arrow would.",
	}, s.handleKeyCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_grid",
		Description: "Change a board's column count, row height, gap or container width. Widgets only move when they no longer fit.",
	}, s.handleSetGrid)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_board",
		Description: "Write a board to the configured store.",
	}, s.handleSaveBoard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resolve_layout",
		Description: "Run the collision and compaction engine on a layout without touching any board. Returns the corrected layout.",
	}, s.handleResolveLayout)
}

func (s *Server) boardName(name string) string {
	if name == "" {
		return s.opts.DefaultBoard
	}
	return name
}

// afterEdit saves when AutoSave is on and renders the board.
func (s *Server) afterEdit(ctx context.Context, sf *board.Surface, tool string) (BoardOutput, error) {
	if s.opts.AutoSave {
		if err := sf.Save(ctx); err != nil {
			return BoardOutput{}, fmt.Errorf("%s: %w", tool, err)
		}
	}
	s.logger.Debug("tool", "tool", tool, "board", sf.Name())
	return boardOutput(sf.View()), nil
}

func boardOutput(v board.View) BoardOutput {
	widgets := []grid.Placement(v.Board.Widgets.Clone())
	if widgets == nil {
		widgets = []grid.Placement{}
	}
	return BoardOutput{
		Board:            v.Board.Name,
		Grid:             v.Board.Grid,
		ContainerWidthPx: v.Board.ContainerWidthPx,
		Rows:             v.Rows,
		HeightPx:         v.HeightPx,
		Dirty:            v.Dirty,
		Widgets:          widgets,
	}
}
