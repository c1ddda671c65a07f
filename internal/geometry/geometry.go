package geometry

import (
	"fmt"
	"math"
)

// MinCellWidthPx is returned by CellWidthPx when the container cannot fit
// the configured columns.
const MinCellWidthPx = 1

// GridConfig defines the pixel <-> grid mapping for one layout instance.
type GridConfig struct {
	Columns     int `json:"columns" yaml:"columns" toml:"columns"`
	RowHeightPx int `json:"row_height_px" yaml:"row_height_px" toml:"row_height_px"`
	GapPx       int `json:"gap_px" yaml:"gap_px" toml:"gap_px"`
}

// Validate reports whether the config can be used for coordinate math.
func (c GridConfig) Validate() error {
	if c.Columns <= 0 {
		return fmt.Errorf("columns must be > 0 (got %d)", c.Columns)
	}
	if c.RowHeightPx <= 0 {
		return fmt.Errorf("row_height_px must be > 0 (got %d)", c.RowHeightPx)
	}
	if c.GapPx < 0 {
		return fmt.Errorf("gap_px must be >= 0 (got %d)", c.GapPx)
	}
	return nil
}

// Point is a pointer position in pixels, relative to the container origin.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is a pixel rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// CellWidthPx computes the width of one column given the container width.
// Gaps only sit between columns: (container - gap*(columns-1)) / columns.
func CellWidthPx(cfg GridConfig, containerWidthPx int) int {
	if cfg.Columns <= 0 || containerWidthPx <= 0 {
		return MinCellWidthPx
	}

	gap := cfg.GapPx
	if gap < 0 {
		gap = 0
	}
	available := containerWidthPx - gap*(cfg.Columns-1)
	cellWidth := available / cfg.Columns
	if cellWidth < MinCellWidthPx {
		return MinCellWidthPx
	}
	return cellWidth
}

// ColumnPitchPx is the horizontal distance between two adjacent column origins.
func ColumnPitchPx(cfg GridConfig, containerWidthPx int) int {
	return CellWidthPx(cfg, containerWidthPx) + max(cfg.GapPx, 0)
}

// RowPitchPx is the vertical distance between two adjacent row origins.
func RowPitchPx(cfg GridConfig) int {
	pitch := cfg.RowHeightPx + max(cfg.GapPx, 0)
	if pitch < 1 {
		return 1
	}
	return pitch
}

// GridToPixelX converts a column coordinate to its left edge in pixels.
func GridToPixelX(coord int, cfg GridConfig, containerWidthPx int) int {
	return coord * ColumnPitchPx(cfg, containerWidthPx)
}

// GridToPixelY converts a row coordinate to its top edge in pixels.
func GridToPixelY(coord int, cfg GridConfig) int {
	return coord * RowPitchPx(cfg)
}

// PixelToGrid snaps a pixel offset to the nearest grid line. Rounding (not
// truncation) makes a drag released near a boundary land on the closer cell.
func PixelToGrid(px, cellSizeWithGap int) int {
	if cellSizeWithGap <= 0 {
		return 0
	}
	n := int(math.Round(float64(px) / float64(cellSizeWithGap)))
	if n < 0 {
		return 0
	}
	return n
}

// PixelSizeToGridUnits converts a pixel extent to a span of cells, never
// less than one.
func PixelSizeToGridUnits(px, cellSizeWithGap int) int {
	n := PixelToGrid(px, cellSizeWithGap)
	if n < 1 {
		return 1
	}
	return n
}

// PixelDeltaToGrid converts a signed pixel delta to a signed cell delta with
// the same rounding rule as PixelToGrid.
func PixelDeltaToGrid(px, cellSizeWithGap int) int {
	if cellSizeWithGap <= 0 {
		return 0
	}
	return int(math.Round(float64(px) / float64(cellSizeWithGap)))
}

// SpanPx returns the pixel extent of a span of cells including the inner gaps.
func SpanPx(cells, cellSize, gap int) int {
	if cells <= 0 {
		return 0
	}
	return cells*cellSize + (cells-1)*max(gap, 0)
}

// CellRect returns the pixel rectangle covered by a placement at x,y with
// size w,h.
func CellRect(x, y, w, h int, cfg GridConfig, containerWidthPx int) Rect {
	cellWidth := CellWidthPx(cfg, containerWidthPx)
	return Rect{
		X:      GridToPixelX(x, cfg, containerWidthPx),
		Y:      GridToPixelY(y, cfg),
		Width:  SpanPx(w, cellWidth, cfg.GapPx),
		Height: SpanPx(h, cfg.RowHeightPx, cfg.GapPx),
	}
}

// ContainerHeightPx returns the pixel height needed to show rows rows.
func ContainerHeightPx(rows int, cfg GridConfig) int {
	return SpanPx(rows, cfg.RowHeightPx, cfg.GapPx)
}
