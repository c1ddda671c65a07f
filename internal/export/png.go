package export

import (
	"io"

	"github.com/fogleman/gg"

	"github.com/1broseidon/gridtile/internal/board"
)

// PNG rasterizes b at one image pixel per layout pixel.
func PNG(w io.Writer, b board.Board) error {
	return newRaster(b).EncodePNG(w)
}

func newRaster(b board.Board) *gg.Context {
	width, height := canvasSize(b)
	dc := gg.NewContext(width, height)
	dc.SetRGB255(background.R, background.G, background.B)
	dc.Clear()

	for _, t := range tiles(b) {
		r := t.rect
		x, y := float64(r.X), float64(r.Y)
		w, h := float64(r.Width), float64(r.Height)

		dc.SetRGB255(t.color.R, t.color.G, t.color.B)
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()

		dc.SetRGB255(30, 30, 30)
		dc.SetLineWidth(1)
		dc.DrawRectangle(x+0.5, y+0.5, w-1, h-1)
		dc.Stroke()

		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(t.label, x+w/2, y+h/2, 0.5, 0.5)
	}
	return dc
}
