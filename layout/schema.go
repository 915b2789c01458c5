package layout

// Align selects the single fixed alignment of a column. Numeric columns are
// right-aligned, text columns left-aligned; alignment never varies per cell.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column places one table column at a fixed x. MaxChars > 0 truncates cell
// text; cells never wrap.
type Column struct {
	Caption  string
	X        float64
	Align    Align
	MaxChars int
}

// Schema is the ordered column set of one table variant.
type Schema []Column

// Fit truncates s to the column's MaxChars, counting runes.
func (c Column) Fit(s string) string {
	if c.MaxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= c.MaxChars {
		return s
	}
	return string(runes[:c.MaxChars])
}
