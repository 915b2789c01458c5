package handlers

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zeptools/invoicing-core/render/personal"
	"github.com/zeptools/invoicing-core/responses"
)

// PersonalHandler renders the personal invoice variant. The payload is
// self-contained, so nothing is snapshotted or read from the ledger.
type PersonalHandler struct {
	Renderer *personal.Renderer
}

// Render - POST /api/personal-invoice
func (h *PersonalHandler) Render(w http.ResponseWriter, r *http.Request) {
	if _, ok := ownerFromRequest(w, r); !ok {
		return
	}
	var inv personal.Invoice
	if err := json.UnmarshalRead(r.Body, &inv); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	if len(inv.Items) == 0 {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "items required")
		return
	}
	if inv.Status == "" {
		inv.Status = personal.StatusPending
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now()
	}
	if inv.Number == "" {
		inv.Number = "INV-" + inv.IssuedAt.Format("20060102150405")
	}
	data, err := h.Renderer.Render(inv)
	if err != nil {
		if errors.Is(err, personal.ErrBadStatus) {
			responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
			return
		}
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	filename := fmt.Sprintf("%s_%s.%s", h.Renderer.Kind(), inv.Number, h.Renderer.Extension())
	responses.WriteAttachment(w, h.Renderer.ContentType(), filename, data)
}
