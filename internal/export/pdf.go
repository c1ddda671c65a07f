package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/1broseidon/gridtile/internal/board"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// PDF renders b on a single A4 landscape page, scaled to fit.
func PDF(w io.Writer, b board.Board) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(b.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %d widgets, %d columns, %d rows", b.Name, len(b.Widgets), b.Grid.Columns, b.Rows())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	width, height := canvasSize(b)
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom
	scale := math.Min(drawWidth/float64(width), drawHeight/float64(height))

	offsetX := marginLeft + (drawWidth-float64(width)*scale)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(background.R, background.G, background.B)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, float64(width)*scale, float64(height)*scale, "FD")

	pdf.SetFont("Helvetica", "", 8)
	for _, t := range tiles(b) {
		r := t.rect
		px := offsetX + float64(r.X)*scale
		py := offsetY + float64(r.Y)*scale
		pw := float64(r.Width) * scale
		ph := float64(r.Height) * scale

		pdf.SetFillColor(t.color.R, t.color.G, t.color.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 8 && ph > 4 {
			pdf.SetTextColor(255, 255, 255)
			pdf.SetXY(px, py)
			pdf.CellFormat(pw, ph, t.label, "", 0, "CM", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
