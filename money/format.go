package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders integer amounts as grouped currency strings.
// No decimal places: the billing domain works in whole currency units.
// Both document renderers must share one Formatter instance so the same
// amount always produces the same bytes.
type Formatter struct {
	Symbol    string `json:"symbol"`    // currency prefix, e.g. "₱"
	Separator string `json:"separator"` // thousands separator, e.g. "."
}

// DefaultFormatter - peso symbol with dot grouping
func DefaultFormatter() Formatter {
	return Formatter{Symbol: "₱", Separator: "."}
}

// Format groups the digits of amount in thousands and prefixes the currency symbol.
// Format(1234567) -> "₱1.234.567"
func (f Formatter) Format(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	b.Grow(len(f.Symbol) + len(digits) + len(digits)/3 + 1)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if i > 0 {
			b.WriteString(f.Separator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDecimal rounds to the nearest whole unit and formats.
// Used by the personal invoice variant where line math runs on decimals.
func (f Formatter) FormatDecimal(amount decimal.Decimal) string {
	return f.Format(amount.Round(0).IntPart())
}
