package personal

import (
	"fmt"
	"strings"

	"github.com/zeptools/invoicing-core/layout"
	"github.com/zeptools/invoicing-core/money"
	"github.com/zeptools/invoicing-core/pdfs"
)

const (
	fontFamily  = "Helvetica"
	maxNotesLen = 200
	qtyColX     = 360
	unitColX    = 450

	// footerHeight is the fixed depth of the closing block: subtotal,
	// tax and total lines, the lowest baseline 58pt under the last row.
	footerHeight = 58
)

// Renderer draws the personal invoice variant: issuer and client blocks, a
// status badge, a 4-column item table paginated like the standard invoice,
// and a tax-bearing footer.
type Renderer struct {
	grid      layout.Grid
	schema    layout.Schema
	money     money.Formatter
	newCanvas func(pdfs.PaperSize) pdfs.Canvas
}

func New(grid layout.Grid, formatter money.Formatter, newCanvas func(pdfs.PaperSize) pdfs.Canvas) *Renderer {
	return &Renderer{
		grid:      grid,
		schema:    DefaultSchema(grid),
		money:     formatter,
		newCanvas: newCanvas,
	}
}

// DefaultSchema is the 4-column personal table: description, quantity,
// unit value, line total.
func DefaultSchema(grid layout.Grid) layout.Schema {
	return layout.Schema{
		{Caption: "DESCRIPTION", X: grid.Margin, Align: layout.AlignLeft, MaxChars: 42},
		{Caption: "QTY", X: qtyColX, Align: layout.AlignRight},
		{Caption: "UNIT VALUE", X: unitColX, Align: layout.AlignRight},
		{Caption: "TOTAL", X: grid.Page.Width - grid.Margin, Align: layout.AlignRight},
	}
}

func (r *Renderer) Kind() string        { return "PersonalInvoice" }
func (r *Renderer) Extension() string   { return "pdf" }
func (r *Renderer) ContentType() string { return "application/pdf" }

func (r *Renderer) Render(inv Invoice) ([]byte, error) {
	if !inv.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadStatus, inv.Status)
	}

	c := r.newCanvas(r.grid.Page)
	c.SetCreationTime(inv.IssuedAt)

	y := r.grid.Walk(len(inv.Items), func(first bool) {
		c.AddPage()
		if first {
			r.headerBlocks(c, inv)
			r.tableHeader(c, r.grid.HeadTableY)
		} else {
			r.tableHeader(c, r.grid.ContTableY)
		}
	}, func(i int, y float64) {
		li := inv.Items[i]
		c.SetFont(fontFamily, "", 10)
		r.cell(c, r.schema[0], y, li.Description)
		r.cell(c, r.schema[1], y, FormatQuantity(li.Quantity))
		r.cell(c, r.schema[2], y, r.money.FormatDecimal(li.UnitValue))
		r.cell(c, r.schema[3], y, r.money.FormatDecimal(li.Total()))
	})

	y, broke := r.grid.EnsureFooterRoom(y, footerHeight)
	if broke {
		c.AddPage()
		r.tableHeader(c, r.grid.ContTableY)
	}
	r.footer(c, inv, y)

	return c.ProduceBytes()
}

func (r *Renderer) headerBlocks(c pdfs.Canvas, inv Invoice) {
	g := r.grid
	h := g.Page.Height
	right := g.Page.Width - g.Margin

	c.SetTextColor(0, 0, 0)
	c.SetFont(fontFamily, "B", 14)
	c.Text(g.Margin, h-55, inv.Issuer.Name)
	c.SetFont(fontFamily, "", 10)
	c.Text(g.Margin, h-70, inv.Issuer.Address)
	c.Text(g.Margin, h-83, inv.Issuer.Email)

	badge := strings.ToUpper(string(inv.Status))
	br, bg, bb := inv.Status.Color()
	c.SetTextColor(br, bg, bb)
	c.SetFont(fontFamily, "B", 13)
	c.TextRight(right, h-55, badge)

	c.SetTextColor(0, 0, 0)
	c.SetFont(fontFamily, "B", 10)
	c.Text(g.Margin, h-110, "BILL TO:")
	c.SetFont(fontFamily, "", 10)
	c.Text(g.Margin, h-124, inv.Client.Name)
	c.Text(g.Margin, h-137, inv.Client.Address)
	c.Text(g.Margin, h-150, inv.Client.Email)

	c.SetFont(fontFamily, "B", 12)
	c.TextRight(right, h-110, fmt.Sprintf("INVOICE N°: %s", inv.Number))
	c.SetFont(fontFamily, "", 11)
	c.TextRight(right, h-126, fmt.Sprintf("Date: %s", inv.IssuedAt.Format("02/01/2006")))
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

func (r *Renderer) footer(c pdfs.Canvas, inv Invoice, y float64) {
	g := r.grid
	right := g.Page.Width - g.Margin

	c.SetTextColor(0, 0, 0)
	c.SetFont(fontFamily, "B", 11)
	c.TextRight(right, y-20, fmt.Sprintf("SUBTOTAL: %s", r.money.FormatDecimal(inv.Subtotal())))
	c.TextRight(right, y-38, fmt.Sprintf("TAX (%s%%): %s",
		inv.TaxRate.String(), r.money.FormatDecimal(inv.Tax())))
	c.SetFont(fontFamily, "B", 12)
	c.TextRight(right, y-58, fmt.Sprintf("TOTAL: %s", r.money.FormatDecimal(inv.Total())))

	if notes := strings.TrimSpace(inv.Notes); notes != "" {
		if runes := []rune(notes); len(runes) > maxNotesLen {
			notes = string(runes[:maxNotesLen])
		}
		c.SetFont(fontFamily, "", 9)
		c.Text(g.Margin, y-58, fmt.Sprintf("Notes: %s", notes))
	}
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
