package layout

import (
	"github.com/zeptools/invoicing-core/pdfs"
)

// Grid fixes the vertical geometry of a paginated table. All y values are
// bottom-up page coordinates in points, origin at the lower-left corner.
type Grid struct {
	Page      pdfs.PaperSize
	Margin    float64
	RowHeight float64

	// First page carries the identity block, so its table sits lower.
	HeadTableY float64 // column captions, first page
	HeadRowY   float64 // first data row, first page
	ContTableY float64 // column captions, continuation pages
	ContRowY   float64 // first data row, continuation pages

	// FooterFloor forces the footer onto a fresh page when the running y
	// has dropped below it. BottomReserve keeps rows off the page edge.
	FooterFloor   float64
	BottomReserve float64
}

// DefaultGrid returns the standard geometry for the given paper size.
func DefaultGrid(page pdfs.PaperSize) Grid {
	h := page.Height
	return Grid{
		Page:          page,
		Margin:        72,
		RowHeight:     18,
		HeadTableY:    h - 200,
		HeadRowY:      h - 225,
		ContTableY:    h - 50,
		ContRowY:      h - 80,
		FooterFloor:   100,
		BottomReserve: 35,
	}
}

// MaxRows is the row capacity of a page, computed once from the first-page
// geometry and applied uniformly to every page.
func (g Grid) MaxRows() int {
	return int((g.HeadRowY - g.BottomReserve) / g.RowHeight)
}

// Paginate splits n rows into per-page chunk sizes. Rows fill each page up
// to MaxRows before the next page starts.
func (g Grid) Paginate(n int) []int {
	if n <= 0 {
		return nil
	}
	max := g.MaxRows()
	pages := make([]int, 0, n/max+1)
	for n > 0 {
		c := max
		if n < c {
			c = n
		}
		pages = append(pages, c)
		n -= c
	}
	return pages
}

// Walk drives one pass over n rows: page is called at the top of every page
// (first reports whether it is page one), then row once per zero-based row
// index with its baseline y. Returns the y just below the last row drawn.
func (g Grid) Walk(n int, page func(first bool), row func(i int, y float64)) float64 {
	max := g.MaxRows()
	y := g.HeadRowY
	if n == 0 {
		page(true)
		return y
	}
	for i := 0; i < n; i++ {
		onPage := i % max
		if onPage == 0 {
			first := i == 0
			page(first)
			if first {
				y = g.HeadRowY
			} else {
				y = g.ContRowY
			}
		}
		row(i, y)
		y -= g.RowHeight
	}
	return y
}

// EnsureFooterRoom reports whether a footer of the given height starting at y
// must move to a fresh continuation page, and the y to draw it at. The floor
// catches short footers near the page edge; a taller block breaks as soon as
// its depth would cross the bottom reserve.
func (g Grid) EnsureFooterRoom(y float64, height float64) (float64, bool) {
	if y < g.FooterFloor || y-height < g.BottomReserve {
		return g.ContRowY, true
	}
	return y, false
}
