package pagedoc

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/layout"
	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/money"
	"github.com/zeptools/invoicing-core/pdfs"
)

// recorder captures drawing ops instead of producing PDF bytes.
type recorder struct {
	size  pdfs.PaperSize
	pages int
	texts []recordedText
}

type recordedText struct {
	page int
	x, y float64
	text string
}

var _ pdfs.Canvas = (*recorder)(nil)

func (r *recorder) PaperSize() pdfs.PaperSize              { return r.size }
func (r *recorder) AddPage()                               { r.pages++ }
func (r *recorder) SetFont(string, string, float64)        {}
func (r *recorder) SetTextColor(int, int, int)             {}
func (r *recorder) Line(x1, y1, x2, y2 float64)            {}
func (r *recorder) SetCreationTime(time.Time)              {}
func (r *recorder) WriteTo(io.Writer) (int64, error)       { return 0, nil }
func (r *recorder) ProduceBytes() ([]byte, error)          { return []byte("pdf"), nil }

func (r *recorder) Text(x, y float64, text string) {
	r.texts = append(r.texts, recordedText{page: r.pages, x: x, y: y, text: text})
}
func (r *recorder) TextRight(x, y float64, text string)  { r.Text(x, y, text) }
func (r *recorder) TextCenter(x, y float64, text string) { r.Text(x, y, text) }

func (r *recorder) onPage(page int, substr string) bool {
	for _, t := range r.texts {
		if t.page == page && strings.Contains(t.text, substr) {
			return true
		}
	}
	return false
}

func (r *recorder) minY() float64 {
	min := r.size.Height
	for _, t := range r.texts {
		if t.y < min {
			min = t.y
		}
	}
	return min
}

// Geometry sized for a round 30-row page.
func grid30() layout.Grid {
	g := layout.DefaultGrid(pdfs.PaperSizes["Letter"])
	g.HeadRowY = 575
	g.BottomReserve = 35
	return g
}

func makeDoc(n int) billing.Document {
	items := make([]ledger.Item, n)
	for i := range items {
		items[i] = ledger.Item{ID: i + 1, Name: "Entry", Price: 100_000}
	}
	return billing.Document{
		Number:   "FAC-20260828120000",
		IssuedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Profile: billing.Profile{
			Name:         "ACME DIAGNOSTICS",
			Title:        "CLINICAL SERVICES",
			Registration: "REG-0001",
			CountCaption: "NUMBER OF STUDIES REPORTED AND PROCESSED",
			ServiceLine:  "POLYSOMNOGRAPHY STUDIES",
		},
		Items: items,
		Money: money.DefaultFormatter(),
	}
}

func renderWith(t *testing.T, doc billing.Document, footer FooterStyle) *recorder {
	t.Helper()
	var rec *recorder
	r := New(grid30(), footer, func(size pdfs.PaperSize) pdfs.Canvas {
		rec = &recorder{size: size}
		return rec
	})
	if _, err := r.Render(doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return rec
}

func TestRenderPageCount(t *testing.T) {
	rec := renderWith(t, makeDoc(65), FooterPlain)
	if rec.pages != 3 {
		t.Fatalf("got %d pages, want 3", rec.pages)
	}
}

func TestIdentityBlockFirstPageOnly(t *testing.T) {
	rec := renderWith(t, makeDoc(65), FooterPlain)
	if !rec.onPage(1, "ACME DIAGNOSTICS") {
		t.Error("identity block missing from page 1")
	}
	for _, p := range []int{2, 3} {
		if rec.onPage(p, "ACME DIAGNOSTICS") {
			t.Errorf("identity block repeated on page %d", p)
		}
	}
	if !rec.onPage(1, "NUMBER OF STUDIES REPORTED AND PROCESSED: 65") {
		t.Error("item count line missing")
	}
	if !rec.onPage(1, "INVOICE N°: FAC-20260828120000") {
		t.Error("invoice number line missing")
	}
}

func TestTableHeaderEveryPage(t *testing.T) {
	rec := renderWith(t, makeDoc(65), FooterPlain)
	for _, p := range []int{1, 2, 3} {
		if !rec.onPage(p, "No.") || !rec.onPage(p, "AMOUNT") {
			t.Errorf("table header missing on page %d", p)
		}
	}
}

func TestPlainFooter(t *testing.T) {
	rec := renderWith(t, makeDoc(5), FooterPlain)
	if rec.pages != 1 {
		t.Fatalf("got %d pages, want 1", rec.pages)
	}
	if !rec.onPage(1, "SUBTOTAL: ₱500.000") {
		t.Error("subtotal line missing or misformatted")
	}
	if !rec.onPage(1, "TOTAL: ₱500.000") {
		t.Error("total line missing or misformatted")
	}
}

func TestGroupedFooter(t *testing.T) {
	items := []ledger.Item{
		{ID: 1, Name: "A", Price: 100},
		{ID: 2, Name: "B", Price: 100},
		{ID: 3, Name: "C", Price: 70},
		{ID: 4, Name: "D", Price: 70},
		{ID: 5, Name: "E", Price: 70},
	}
	doc := makeDoc(0)
	doc.Items = items

	rec := renderWith(t, doc, FooterGrouped)
	if !rec.onPage(1, "2 x ₱100 = ₱200") {
		t.Error("high-price group line missing")
	}
	if !rec.onPage(1, "3 x ₱70 = ₱210") {
		t.Error("low-price group line missing")
	}
	if !rec.onPage(1, "TOTAL: ₱410") {
		t.Error("grand total missing")
	}
}

// A full last page leaves no room below the rows, so the footer moves to a
// fresh page with a redrawn table header.
func TestFooterForcedPageBreak(t *testing.T) {
	rec := renderWith(t, makeDoc(30), FooterPlain)
	if rec.pages != 2 {
		t.Fatalf("got %d pages, want 2", rec.pages)
	}
	if !rec.onPage(2, "TOTAL") {
		t.Error("footer must land on the continuation page")
	}
	if !rec.onPage(2, "No.") {
		t.Error("continuation page must redraw the table header")
	}
}

// makeDistinctDoc gives every item its own price, so the grouped footer
// carries one line per item.
func makeDistinctDoc(n int) billing.Document {
	doc := makeDoc(n)
	for i := range doc.Items {
		doc.Items[i].Price = int64(n-i) * 10
	}
	return doc
}

// The grouped footer grows with the number of distinct prices; when it no
// longer fits under the last row it must move to a fresh page instead of
// running off the bottom edge.
func TestGroupedFooterForcedPageBreak(t *testing.T) {
	g := grid30()
	rec := renderWith(t, makeDistinctDoc(25), FooterGrouped)

	if rec.pages != 2 {
		t.Fatalf("got %d pages, want 2", rec.pages)
	}
	if !rec.onPage(2, "TOTAL: ") {
		t.Error("grand total must land on the continuation page")
	}
	if !rec.onPage(2, "No.") {
		t.Error("continuation page must redraw the table header")
	}
	if got := rec.minY(); got < g.BottomReserve {
		t.Errorf("lowest baseline %v is under the bottom reserve %v", got, g.BottomReserve)
	}
}

// A grouped footer taller than a whole continuation page keeps breaking
// until every group line and the total are placed.
func TestGroupedFooterChunksAcrossPages(t *testing.T) {
	g := grid30()
	rec := renderWith(t, makeDistinctDoc(40), FooterGrouped)

	if rec.pages != 4 {
		t.Fatalf("got %d pages, want 4", rec.pages)
	}
	if !rec.onPage(4, "TOTAL: ") {
		t.Error("grand total must land on the last footer page")
	}
	for _, p := range []int{3, 4} {
		if !rec.onPage(p, "No.") {
			t.Errorf("footer page %d must redraw the table header", p)
		}
	}
	if got := rec.minY(); got < g.BottomReserve {
		t.Errorf("lowest baseline %v is under the bottom reserve %v", got, g.BottomReserve)
	}
}

func TestGroupByPriceOrder(t *testing.T) {
	items := []ledger.Item{
		{Price: 70}, {Price: 100}, {Price: 70}, {Price: 250},
	}
	groups := GroupByPrice(items)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	wantUnits := []int64{250, 100, 70}
	for i, g := range groups {
		if g.Unit != wantUnits[i] {
			t.Errorf("group %d unit %d, want %d", i, g.Unit, wantUnits[i])
		}
	}
	if groups[2].Qty != 2 || groups[2].Sum != 140 {
		t.Errorf("70 group = %+v", groups[2])
	}
}
