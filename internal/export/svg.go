package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/1broseidon/gridtile/internal/board"
)

// SVG renders b as a standalone SVG document sized to the container.
func SVG(b board.Board) string {
	width, height := canvasSize(b)

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
`, width, height, width, height))
	svg.WriteString(fmt.Sprintf(`<title>%s</title>
`, html.EscapeString(b.Name)))
	svg.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>
`, width, height, background.hex()))

	for _, t := range tiles(b) {
		r := t.rect
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="4" fill="%s" stroke="#1e1e1e" stroke-width="1"/>
`, r.X, r.Y, r.Width, r.Height, t.color.hex()))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="12" fill="#ffffff">%s</text>
`, r.X+r.Width/2, r.Y+r.Height/2, html.EscapeString(t.label)))
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}
