package handlers

import (
	"encoding/json/v2"
	"errors"
	"net/http"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/requests"
	"github.com/zeptools/invoicing-core/responses"
	"github.com/zeptools/invoicing-core/snapshot"
)

// InvoicesHandler runs invoice actions against the billing service and
// streams the rendered artifacts back as downloads.
type InvoicesHandler struct {
	Billing *billing.Service
}

type generatePayload struct {
	Number string `json:"number"` // empty -> timestamp-derived default
}

type historyReply struct {
	Snapshots []snapshot.Summary `json:"snapshots"`
}

func writeBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrEmptyLedger):
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, billing.ErrUnknownFormat), errors.Is(err, snapshot.ErrNotFound):
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrActionInFlight):
		responses.WriteSimpleErrorJSON(w, http.StatusConflict, err.Error())
	default:
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, err.Error())
	}
}

// Generate - POST /api/invoices/{format}
// Renders the owner's current ledger, persists one snapshot record and
// streams the artifact.
func (h *InvoicesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var payload generatePayload
	if requests.HasBody(r) && r.ContentLength != 0 {
		if err := json.UnmarshalRead(r.Body, &payload); err != nil {
			responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "malformed JSON payload")
			return
		}
	}
	artifact, err := h.Billing.GenerateInvoice(r.Context(), owner, r.PathValue("format"), payload.Number)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	responses.WriteAttachment(w, artifact.ContentType, artifact.Filename, artifact.Bytes)
}

// History - GET /api/invoices
func (h *InvoicesHandler) History(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	summaries, err := h.Billing.History(r.Context(), owner)
	if err != nil {
		writeBillingError(w, err)
		return
	}
	if summaries == nil {
		summaries = []snapshot.Summary{}
	}
	responses.EncodeWriteJSON(w, http.StatusOK, historyReply{Snapshots: summaries})
}

// Replay - POST /api/invoices/{id}/{format}
// Re-renders a stored snapshot without touching the live ledger.
func (h *InvoicesHandler) Replay(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	artifact, err := h.Billing.Replay(r.Context(), owner, r.PathValue("id"), r.PathValue("format"))
	if err != nil {
		writeBillingError(w, err)
		return
	}
	responses.WriteAttachment(w, artifact.ContentType, artifact.Filename, artifact.Bytes)
}
