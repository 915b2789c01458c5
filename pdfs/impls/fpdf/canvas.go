package fpdf

import (
	"bytes"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/zeptools/invoicing-core/pdfs"
	"github.com/zeptools/invoicing-core/rw"
)

var _ pdfs.Canvas = (*Canvas)(nil)

// Canvas implements pdfs.Canvas on gofpdf. Pagination is entirely caller
// driven, so the automatic page break is disabled.
type Canvas struct {
	pdf  *gofpdf.Fpdf
	size pdfs.PaperSize
	tr   func(string) string // cp1252 translation for non-ASCII text
}

func New(size pdfs.PaperSize) *Canvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return &Canvas{
		pdf:  pdf,
		size: size,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *Canvas) PaperSize() pdfs.PaperSize {
	return c.size
}

func (c *Canvas) AddPage() {
	c.pdf.AddPage()
}

func (c *Canvas) SetFont(family string, style string, size float64) {
	c.pdf.SetFont(family, style, size)
}

func (c *Canvas) SetTextColor(r, g, b int) {
	c.pdf.SetTextColor(r, g, b)
}

// Text places the baseline of text at (x, y), bottom-up coordinates.
func (c *Canvas) Text(x float64, y float64, text string) {
	c.pdf.Text(x, c.flip(y), c.tr(text))
}

func (c *Canvas) TextRight(x float64, y float64, text string) {
	t := c.tr(text)
	c.pdf.Text(x-c.pdf.GetStringWidth(t), c.flip(y), t)
}

func (c *Canvas) TextCenter(x float64, y float64, text string) {
	t := c.tr(text)
	c.pdf.Text(x-c.pdf.GetStringWidth(t)/2, c.flip(y), t)
}

func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, c.flip(y1), x2, c.flip(y2))
}

func (c *Canvas) SetCreationTime(t time.Time) {
	c.pdf.SetCreationDate(t)
}

func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	cw := rw.NewCountWriter(w)
	err := c.pdf.Output(cw)
	return cw.BytesWritten(), err
}

func (c *Canvas) ProduceBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flip converts the bottom-up y to gofpdf's top-down coordinate.
func (c *Canvas) flip(y float64) float64 {
	return c.size.Height - y
}
