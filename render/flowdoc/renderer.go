package flowdoc

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/zeptools/invoicing-core/billing"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

var _ billing.Renderer = (*Renderer)(nil)

// Renderer produces the flow-document invoice: one continuous HTML document
// with a single table, left for the viewer to paginate.
type Renderer struct {
	tpl *template.Template
}

func New() (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("flowdoc: parse templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

func (r *Renderer) Kind() string        { return "Invoice" }
func (r *Renderer) Extension() string   { return "html" }
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

type row struct {
	ID    int
	Name  string
	Price string
}

type view struct {
	Profile billing.Profile
	Count   int
	Number  string
	Date    string
	Rows    []row
	Total   string
}

func (r *Renderer) Render(doc billing.Document) ([]byte, error) {
	v := view{
		Profile: doc.Profile,
		Count:   len(doc.Items),
		Number:  doc.Number,
		Date:    doc.IssuedAt.Format("02/01/2006 15:04"),
		Rows:    make([]row, 0, len(doc.Items)),
		Total:   doc.Money.Format(doc.Subtotal()),
	}
	for _, it := range doc.Items {
		v.Rows = append(v.Rows, row{
			ID:    it.ID,
			Name:  it.Name,
			Price: doc.Money.Format(it.Price),
		})
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "invoice.gohtml", v); err != nil {
		return nil, fmt.Errorf("flowdoc: render: %w", err)
	}
	return buf.Bytes(), nil
}
