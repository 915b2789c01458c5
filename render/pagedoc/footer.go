package pagedoc

import (
	"fmt"
	"sort"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/layout"
	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/pdfs"
)

// FooterStyle selects how the closing block is drawn. The style is fixed per
// renderer; it never depends on the data.
type FooterStyle int

const (
	// FooterPlain prints SUBTOTAL and a bold TOTAL, both the full sum.
	FooterPlain FooterStyle = iota
	// FooterGrouped prints one "qty x unit = sum" line per distinct price,
	// highest price first, then the grand total.
	FooterGrouped
)

func ParseFooterStyle(s string) (FooterStyle, error) {
	switch s {
	case "", "plain":
		return FooterPlain, nil
	case "grouped":
		return FooterGrouped, nil
	}
	return 0, fmt.Errorf("pagedoc: unknown footer style %q", s)
}

// height is the vertical depth the footer needs below its starting y.
// The grouped style grows with the data: one line per distinct price plus
// the grand total.
func (fs FooterStyle) height(g layout.Grid, doc billing.Document) float64 {
	if fs == FooterGrouped {
		return 20 + float64(len(GroupByPrice(doc.Items)))*g.RowHeight
	}
	return 40
}

// draw renders the footer block. newPage breaks to a fresh continuation page
// and returns the y to keep drawing at, for grouped footers too tall for the
// remaining space of a single page.
func (fs FooterStyle) draw(c pdfs.Canvas, g layout.Grid, doc billing.Document, y float64, newPage func() float64) {
	right := g.Page.Width - g.Margin
	total := doc.Subtotal()

	switch fs {
	case FooterGrouped:
		yy := y - 20
		for _, grp := range GroupByPrice(doc.Items) {
			if yy < g.BottomReserve {
				yy = newPage()
			}
			c.SetFont(fontFamily, "B", 11)
			line := fmt.Sprintf("%d x %s = %s",
				grp.Qty, doc.Money.Format(grp.Unit), doc.Money.Format(grp.Sum))
			c.TextRight(right, yy, line)
			yy -= g.RowHeight
		}
		if yy < g.BottomReserve {
			yy = newPage()
		}
		c.SetFont(fontFamily, "B", 12)
		c.TextRight(right, yy, fmt.Sprintf("TOTAL: %s", doc.Money.Format(total)))
	default:
		c.SetFont(fontFamily, "B", 11)
		c.TextRight(right, y-20, fmt.Sprintf("SUBTOTAL: %s", doc.Money.Format(total)))
		c.SetFont(fontFamily, "B", 12)
		c.TextRight(right, y-40, fmt.Sprintf("TOTAL: %s", doc.Money.Format(total)))
	}
}

// PriceGroup aggregates the items sharing one unit price.
type PriceGroup struct {
	Unit int64
	Qty  int
	Sum  int64
}

// GroupByPrice buckets items by identical price, highest unit price first.
func GroupByPrice(items []ledger.Item) []PriceGroup {
	byUnit := make(map[int64]*PriceGroup)
	for _, it := range items {
		g, ok := byUnit[it.Price]
		if !ok {
			g = &PriceGroup{Unit: it.Price}
			byUnit[it.Price] = g
		}
		g.Qty++
		g.Sum += it.Price
	}
	out := make([]PriceGroup, 0, len(byUnit))
	for _, g := range byUnit {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit > out[j].Unit })
	return out
}
