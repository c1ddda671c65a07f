package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
)

// Terminal cells act as pixels: a row is three cells tall (border, label,
// border) and one cell of gap separates neighbours.
const (
	displayRowHeight = 3
	displayGap       = 1
)

// display maps a board onto a character canvas of a given width.
type display struct {
	cfg   geometry.GridConfig
	width int
}

func newDisplay(columns, width int) display {
	return display{
		cfg:   geometry.GridConfig{Columns: columns, RowHeightPx: displayRowHeight, GapPx: displayGap},
		width: width,
	}
}

func (d display) rect(p grid.Placement) geometry.Rect {
	return geometry.CellRect(p.X, p.Y, p.W, p.H, d.cfg, d.width)
}

// hit returns the widget under canvas cell (x, y) and whether the cell is
// its bottom-right corner.
func (d display) hit(l grid.Layout, x, y int) (grid.Placement, bool, bool) {
	for _, p := range l {
		r := d.rect(p)
		right := min(r.X+r.Width, d.width) - 1
		bottom := r.Y + r.Height - 1
		if x >= r.X && x <= right && y >= r.Y && y <= bottom {
			return p, x == right && y == bottom, true
		}
	}
	return grid.Placement{}, false, false
}

// toBoard scales a canvas cell to the board's pixel space. Scaling by the
// ratio of pitches keeps grid coordinates identical on both sides.
func (d display) toBoard(b board.Board, x, y int) geometry.Point {
	return geometry.Point{
		X: scale(x, geometry.ColumnPitchPx(d.cfg, d.width), geometry.ColumnPitchPx(b.Grid, b.ContainerWidthPx)),
		Y: scale(y, geometry.RowPitchPx(d.cfg), geometry.RowPitchPx(b.Grid)),
	}
}

func scale(v, from, to int) int {
	if from <= 0 {
		return v
	}
	return int(math.Round(float64(v) * float64(to) / float64(from)))
}

type borderSet struct {
	h, v, tl, tr, bl, br rune
}

var (
	thinBorder  = borderSet{'─', '│', '┌', '┐', '└', '┘'}
	heavyBorder = borderSet{'━', '┃', '┏', '┓', '┗', '┛'}
)

// renderCanvas draws every widget of b as a box. Rows above top are scrolled
// out; the selected widget gets a heavy border.
func renderCanvas(b board.Board, selected string, width, height, top int) []string {
	if width < 1 || height < 1 {
		return nil
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	d := newDisplay(b.Grid.Columns, width)
	for _, p := range b.Widgets {
		borders := thinBorder
		if p.ID == selected {
			borders = heavyBorder
		}
		r := d.rect(p)
		r.Y -= top
		drawTile(canvas, r, fmt.Sprintf("%s %dx%d", p.ID, p.W, p.H), borders)
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawTile(canvas [][]rune, r geometry.Rect, label string, b borderSet) {
	height := len(canvas)
	width := len(canvas[0])
	x1, y1 := r.X, r.Y
	x2, y2 := r.X+r.Width-1, r.Y+r.Height-1
	if x2 <= x1 || y2 <= y1 {
		return
	}

	set := func(x, y int, ch rune) {
		if x >= 0 && x < width && y >= 0 && y < height {
			canvas[y][x] = ch
		}
	}

	for x := x1; x <= x2; x++ {
		set(x, y1, b.h)
		set(x, y2, b.h)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y, b.v)
		set(x2, y, b.v)
	}
	set(x1, y1, b.tl)
	set(x2, y1, b.tr)
	set(x1, y2, b.bl)
	set(x2, y2, b.br)

	// Label on the first inner row, clipped to the box.
	inner := x2 - x1 - 1
	if inner < 1 {
		return
	}
	runes := []rune(label)
	if len(runes) > inner {
		runes = runes[:inner]
	}
	for i, ch := range runes {
		set(x1+1+i, y1+1, ch)
	}
}
