package pdfs

import (
	"io"
	"time"
)

// Canvas is a minimal, stream-style, append-only PDF canvas. No page navigation.
// Coordinates are bottom-up page points, origin at the lower-left corner;
// Text places the baseline at y.
type Canvas interface {
	PaperSize() PaperSize

	AddPage()

	SetFont(family string, style string, size float64)
	SetTextColor(r, g, b int)

	Text(x float64, y float64, text string)
	TextRight(x float64, y float64, text string)  // x is the right edge
	TextCenter(x float64, y float64, text string) // x is the center
	Line(x1, y1, x2, y2 float64)

	// SetCreationTime pins the document metadata timestamp so the same
	// input always produces the same bytes.
	SetCreationTime(t time.Time)

	WriteTo(w io.Writer) (int64, error)
	ProduceBytes() ([]byte, error)
}
