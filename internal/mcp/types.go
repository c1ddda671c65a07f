package mcp

import (
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
)

// ListBoardsInput is the input for the list_boards tool.
type ListBoardsInput struct{}

// ListBoardsOutput is the output for the list_boards tool.
type ListBoardsOutput struct {
	Boards []string `json:"boards"`
}

// BoardInput names a board.
type BoardInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board)"`
}

// BoardOutput describes a board after a tool call.
type BoardOutput struct {
	Board            string              `json:"board"`
	Grid             geometry.GridConfig `json:"grid"`
	ContainerWidthPx int                 `json:"container_width_px"`
	Rows             int                 `json:"rows"`
	HeightPx         int                 `json:"height_px"`
	Dirty            bool                `json:"dirty"`
	Widgets          []grid.Placement    `json:"widgets"`
}

// AddWidgetInput is the input for the add_widget tool.
type AddWidgetInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board). Created if missing."`
	ID    string `json:"id,omitempty" jsonschema:"Widget id; generated when omitted"`
	X     int    `json:"x,omitempty" jsonschema:"Column of the widget's left edge (default 0)"`
	Y     int    `json:"y,omitempty" jsonschema:"Row of the widget's top edge (default 0); gravity pulls it up"`
	W     int    `json:"w,omitempty" jsonschema:"Width in columns (default: configured widget size)"`
	H     int    `json:"h,omitempty" jsonschema:"Height in rows (default: configured widget size)"`
}

// WidgetInput names a widget on a board.
type WidgetInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board)"`
	ID    string `json:"id" jsonschema:"Widget id"`
}

// MoveWidgetInput is the input for the move_widget tool.
type MoveWidgetInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board)"`
	ID    string `json:"id" jsonschema:"Widget id"`
	X     int    `json:"x" jsonschema:"Target column"`
	Y     int    `json:"y" jsonschema:"Target row"`
}

// ResizeWidgetInput is the input for the resize_widget tool.
type ResizeWidgetInput struct {
	Board string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board)"`
	ID    string `json:"id" jsonschema:"Widget id"`
	W     int    `json:"w" jsonschema:"Width in columns, at least 1"`
	H     int    `json:"h" jsonschema:"Height in rows, at least 1"`
}

// KeyCommandInput is the input for the key_command tool.
type KeyCommandInput struct {
	Board     string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board)"`
	ID        string `json:"id" jsonschema:"Widget id"`
	Direction string `json:"direction" jsonschema:"One of up, down, left, right"`
	Resize    bool   `json:"resize,omitempty" jsonschema:"When true, grow or shrink instead of moving"`
}

// SetGridInput is the input for the set_grid tool.
type SetGridInput struct {
	Board            string `json:"board,omitempty" jsonschema:"Board name (default: the configured default board)"`
	Columns          int    `json:"columns" jsonschema:"Number of columns, at least 1"`
	RowHeightPx      int    `json:"row_height_px" jsonschema:"Row height in pixels, at least 1"`
	GapPx            int    `json:"gap_px,omitempty" jsonschema:"Gap between cells in pixels"`
	ContainerWidthPx int    `json:"container_width_px" jsonschema:"Container width in pixels"`
}

// ResolveLayoutInput is the input for the resolve_layout tool.
type ResolveLayoutInput struct {
	Layout      []grid.Placement `json:"layout" jsonschema:"Tentative layout with the changed widget already moved or resized"`
	ChangedID   string           `json:"changed_id" jsonschema:"Id of the widget that was changed"`
	Columns     int              `json:"columns" jsonschema:"Number of grid columns"`
	RowHeightPx int              `json:"row_height_px,omitempty" jsonschema:"Row height in pixels (default 30)"`
	GapPx       int              `json:"gap_px,omitempty" jsonschema:"Gap in pixels"`
}

// ResolveLayoutOutput is the output for the resolve_layout tool.
type ResolveLayoutOutput struct {
	Layout []grid.Placement `json:"layout"`
	Rows   int              `json:"rows"`
}
