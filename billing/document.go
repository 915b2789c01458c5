package billing

import (
	"time"

	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/money"
)

// Profile is the issuer identity block printed at the top of page one.
type Profile struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Registration string `json:"registration"`
	CountCaption string `json:"count_caption"` // prefix of the "...: N" item count line
	ServiceLine  string `json:"service_line"`  // type of service, printed below the count
}

// Document is one fully resolved invoice handed to a renderer: a frozen item
// snapshot plus everything needed to draw it. Renderers never reach back into
// live state.
type Document struct {
	Number   string
	IssuedAt time.Time
	Profile  Profile
	Items    []ledger.Item
	Money    money.Formatter
}

func (d Document) Subtotal() int64 {
	return ledger.Subtotal(d.Items)
}

// Renderer produces one artifact format. Implementations are stateless and
// synchronous; the same Document always yields the same bytes.
type Renderer interface {
	Kind() string
	Extension() string
	ContentType() string
	Render(doc Document) ([]byte, error)
}
