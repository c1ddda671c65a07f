// Package export renders boards to SVG, PNG and PDF.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want svg, png or pdf)", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Write renders b in format f to w.
func Write(w io.Writer, b board.Board, f Format) error {
	switch f {
	case FormatSVG:
		_, err := io.WriteString(w, SVG(b))
		return err
	case FormatPNG:
		return PNG(w, b)
	case FormatPDF:
		return PDF(w, b)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// rgb is a widget fill color.
type rgb struct {
	R, G, B int
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// palette cycles per widget in layout order.
var palette = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(i int) rgb {
	return palette[i%len(palette)]
}

var background = rgb{R: 245, G: 245, B: 245}

// tile is a widget's pixel rectangle plus its label.
type tile struct {
	rect  geometry.Rect
	label string
	color rgb
}

// canvasSize is the container's pixel size; an empty board is one row tall.
func canvasSize(b board.Board) (int, int) {
	return max(b.ContainerWidthPx, 1), max(b.HeightPx(), b.Grid.RowHeightPx, 1)
}

func tiles(b board.Board) []tile {
	out := make([]tile, 0, len(b.Widgets))
	for i, p := range b.Widgets {
		out = append(out, tile{
			rect:  b.WidgetRect(p),
			label: fmt.Sprintf("%s %dx%d", p.ID, p.W, p.H),
			color: colorFor(i),
		})
	}
	return out
}
