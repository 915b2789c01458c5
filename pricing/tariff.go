package pricing

// Tariff maps an item's insertion ordinal to its default price.
// The first Threshold items get the High rate, every item after that the Low rate.
// The threshold is a business rule carried over from billing practice, so it is
// a named parameter here, never a literal in calling code.
type Tariff struct {
	Threshold int   `json:"threshold"`
	High      int64 `json:"high"`
	Low       int64 `json:"low"`
}

// DefaultTariff - 20 items at 100,000 then 70,000 each
func DefaultTariff() Tariff {
	return Tariff{Threshold: 20, High: 100_000, Low: 70_000}
}

// Rate returns the default price for the item at the given zero-based ordinal.
// Pure function, no side effects.
func (t Tariff) Rate(ordinal int) int64 {
	if ordinal < t.Threshold {
		return t.High
	}
	return t.Low
}
