package personal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrBadStatus = errors.New("personal: unknown invoice status")

// Status is the payment state shown as a colored badge.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	}
	return false
}

// Color returns the fixed badge color for the status.
func (s Status) Color() (r, g, b int) {
	switch s {
	case StatusPaid:
		return 46, 125, 50
	case StatusOverdue:
		return 198, 40, 40
	default:
		return 230, 145, 0
	}
}

// Party is one side of the invoice, issuer or client.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// LineItem is one billed position. Quantity and unit value carry fractional
// parts, so the arithmetic runs on decimals rather than integers.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unit_value"`
}

func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitValue)
}

// Invoice is the personal invoice variant: free-form line items with
// quantities, a tax rate in percent, and issuer/client identity blocks.
type Invoice struct {
	Number   string          `json:"number"`
	IssuedAt time.Time       `json:"issued_at"`
	Issuer   Party           `json:"issuer"`
	Client   Party           `json:"client"`
	Status   Status          `json:"status"`
	TaxRate  decimal.Decimal `json:"tax_rate"` // percent
	Notes    string          `json:"notes"`
	Items    []LineItem      `json:"items"`
}

func (inv Invoice) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range inv.Items {
		sum = sum.Add(li.Total())
	}
	return sum
}

func (inv Invoice) Tax() decimal.Decimal {
	return inv.Subtotal().Mul(inv.TaxRate).Div(decimal.NewFromInt(100))
}

func (inv Invoice) Total() decimal.Decimal {
	return inv.Subtotal().Add(inv.Tax())
}

// FormatQuantity renders an integral quantity without a fractional part,
// anything else as the literal value.
func FormatQuantity(q decimal.Decimal) string {
	if q.IsInteger() {
		return q.Truncate(0).String()
	}
	return q.String()
}
