package pagedoc

import (
	"fmt"
	"strconv"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/layout"
	"github.com/zeptools/invoicing-core/pdfs"
)

var _ billing.Renderer = (*Renderer)(nil)

const (
	fontFamily = "Helvetica"
	nameColX   = 120
)

// Renderer draws the paginated canvas invoice: identity block on page one
// only, table header redrawn on every page, manual page breaks by row count.
type Renderer struct {
	grid      layout.Grid
	schema    layout.Schema
	footer    FooterStyle
	newCanvas func(pdfs.PaperSize) pdfs.Canvas
}

// New builds a renderer over the given geometry. newCanvas supplies a fresh
// canvas per render (pdfs/impls/fpdf in production, a recorder in tests).
func New(grid layout.Grid, footer FooterStyle, newCanvas func(pdfs.PaperSize) pdfs.Canvas) *Renderer {
	return &Renderer{
		grid:      grid,
		schema:    DefaultSchema(grid),
		footer:    footer,
		newCanvas: newCanvas,
	}
}

// DefaultSchema is the three-column invoice table: ordinal, name, amount.
func DefaultSchema(grid layout.Grid) layout.Schema {
	return layout.Schema{
		{Caption: "No.", X: grid.Margin, Align: layout.AlignLeft},
		{Caption: "NAME", X: nameColX, Align: layout.AlignLeft, MaxChars: 58},
		{Caption: "AMOUNT", X: grid.Page.Width - grid.Margin, Align: layout.AlignRight},
	}
}

func (r *Renderer) Kind() string        { return "Invoice" }
func (r *Renderer) Extension() string   { return "pdf" }
func (r *Renderer) ContentType() string { return "application/pdf" }

func (r *Renderer) Render(doc billing.Document) ([]byte, error) {
	c := r.newCanvas(r.grid.Page)
	c.SetCreationTime(doc.IssuedAt)

	y := r.grid.Walk(len(doc.Items), func(first bool) {
		c.AddPage()
		if first {
			r.identityBlock(c, doc)
			r.tableHeader(c, r.grid.HeadTableY)
		} else {
			r.tableHeader(c, r.grid.ContTableY)
		}
	}, func(i int, y float64) {
		item := doc.Items[i]
		c.SetFont(fontFamily, "", 10)
		r.cell(c, r.schema[0], y, strconv.Itoa(item.ID))
		r.cell(c, r.schema[1], y, item.Name)
		r.cell(c, r.schema[2], y, doc.Money.Format(item.Price))
	})

	footerPage := func() float64 {
		c.AddPage()
		r.tableHeader(c, r.grid.ContTableY)
		return r.grid.ContRowY
	}
	y, broke := r.grid.EnsureFooterRoom(y, r.footer.height(r.grid, doc))
	if broke {
		footerPage()
		y = r.grid.ContRowY
	}
	r.footer.draw(c, r.grid, doc, y, footerPage)

	return c.ProduceBytes()
}

func (r *Renderer) identityBlock(c pdfs.Canvas, doc billing.Document) {
	g := r.grid
	cx := g.Page.Width / 2
	h := g.Page.Height
	p := doc.Profile

	c.SetTextColor(0, 51, 102)
	c.SetFont(fontFamily, "B", 14)
	c.TextCenter(cx, h-50, p.Name)
	c.SetFont(fontFamily, "", 12)
	c.TextCenter(cx, h-70, p.Title)
	c.TextCenter(cx, h-85, p.Registration)

	c.SetFont(fontFamily, "B", 10)
	c.TextCenter(cx, h-105, fmt.Sprintf("%s: %d", p.CountCaption, len(doc.Items)))
	c.TextCenter(cx, h-120, p.ServiceLine)

	c.SetTextColor(0, 0, 0)
	c.SetFont(fontFamily, "B", 12)
	c.Text(g.Margin, h-150, fmt.Sprintf("INVOICE N°: %s", doc.Number))
	c.SetFont(fontFamily, "", 11)
	c.Text(g.Margin, h-170, fmt.Sprintf("Date: %s", doc.IssuedAt.Format("02/01/2006 15:04")))
}

func (r *Renderer) tableHeader(c pdfs.Canvas, y float64) {
	g := r.grid
	c.SetTextColor(0, 0, 0)
	c.SetFont(fontFamily, "B", 10)
	for _, col := range r.schema {
		r.cell(c, col, y, col.Caption)
	}
	c.Line(g.Margin, y-5, g.Page.Width-g.Margin, y-5)
}

func (r *Renderer) cell(c pdfs.Canvas, col layout.Column, y float64, text string) {
	text = col.Fit(text)
	switch col.Align {
	case layout.AlignRight:
		c.TextRight(col.X, y, text)
	case layout.AlignCenter:
		c.TextCenter(col.X, y, text)
	default:
		c.Text(col.X, y, text)
	}
}
