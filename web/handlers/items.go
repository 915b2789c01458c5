package handlers

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/nullable"
	"github.com/zeptools/invoicing-core/responses"
	"github.com/zeptools/invoicing-core/web/session"
)

// ItemsHandler serves the per-owner working ledger: the item list the next
// invoice will be generated from.
type ItemsHandler struct {
	Ledgers *ledger.Store
}

type itemPayload struct {
	Name  string       `json:"name"`
	Price nullable.Int `json:"price"` // null/absent -> tariff rate by ordinal
}

func (p *itemPayload) explicitPrice() *int64 {
	if p.Price.IsNil() {
		return nil
	}
	v := p.Price.ForceValue()
	return &v
}

var errMalformedPayload = errors.New("malformed JSON payload")

// decodeItemPayload decodes the body in two steps so a non-integer price
// surfaces as ledger.ErrInvalidPrice instead of a generic decode failure.
func decodeItemPayload(body io.Reader) (itemPayload, error) {
	var raw struct {
		Name  string         `json:"name"`
		Price jsontext.Value `json:"price"`
	}
	if err := json.UnmarshalRead(body, &raw); err != nil {
		return itemPayload{}, errMalformedPayload
	}
	p := itemPayload{Name: raw.Name}
	if len(raw.Price) > 0 {
		if err := json.Unmarshal(raw.Price, &p.Price); err != nil {
			return itemPayload{}, fmt.Errorf("%w: got %s", ledger.ErrInvalidPrice, raw.Price)
		}
	}
	return p, nil
}

func writePayloadError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrInvalidPrice) {
		writeLedgerError(w, err)
		return
	}
	responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
}

type batchPayload struct {
	Names []string `json:"names"` // raw names, e.g. uploaded filenames
}

type listReply struct {
	Items    []ledger.Item `json:"items"`
	Subtotal int64         `json:"subtotal"`
}

// ownerFromRequest reads the authenticated owner stashed by SessionAuthWrapper
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "sign-in required")
		return "", false
	}
	return id.Owner, true
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrEmptyName), errors.Is(err, ledger.ErrInvalidPrice):
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
	default:
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, err.Error())
	}
}

// List - GET /api/items
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	items := h.Ledgers.Snapshot(owner)
	responses.EncodeWriteJSON(w, http.StatusOK, listReply{
		Items:    items,
		Subtotal: ledger.Subtotal(items),
	})
}

// Create - POST /api/items
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	payload, err := decodeItemPayload(r.Body)
	if err != nil {
		writePayloadError(w, err)
		return
	}
	var created ledger.Item
	err = h.Ledgers.WithOwner(owner, func(l *ledger.Ledger) error {
		var addErr error
		created, addErr = l.Add(payload.Name, payload.explicitPrice())
		return addErr
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusCreated, created)
}

// CreateBatch - POST /api/items/batch
// Raw names get cleaned before insertion; the batch is all-or-nothing.
func (h *ItemsHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var payload batchPayload
	if err := json.UnmarshalRead(r.Body, &payload); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	if len(payload.Names) == 0 {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "names required")
		return
	}
	var created []ledger.Item
	err := h.Ledgers.WithOwner(owner, func(l *ledger.Ledger) error {
		var addErr error
		created, addErr = l.AddBatch(payload.Names)
		return addErr
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusCreated, listReply{
		Items:    created,
		Subtotal: ledger.Subtotal(created),
	})
}

// Update - PUT /api/items/{id}
// An absent price recomputes the tariff rate for the item's position.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "item id must be an integer")
		return
	}
	payload, err := decodeItemPayload(r.Body)
	if err != nil {
		writePayloadError(w, err)
		return
	}
	var updated ledger.Item
	err = h.Ledgers.WithOwner(owner, func(l *ledger.Ledger) error {
		var upErr error
		updated, upErr = l.Update(id, payload.Name, payload.explicitPrice())
		return upErr
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, updated)
}

// Delete - DELETE /api/items/{id}
// Remaining items are renumbered back to the contiguous sequence 1..N.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "item id must be an integer")
		return
	}
	var remaining []ledger.Item
	err = h.Ledgers.WithOwner(owner, func(l *ledger.Ledger) error {
		if delErr := l.Delete(id); delErr != nil {
			return delErr
		}
		remaining = l.Items()
		return nil
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, listReply{
		Items:    remaining,
		Subtotal: ledger.Subtotal(remaining),
	})
}

// Clear - DELETE /api/items
func (h *ItemsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	_ = h.Ledgers.WithOwner(owner, func(l *ledger.Ledger) error {
		l.Clear()
		return nil
	})
	responses.EncodeWriteJSON(w, http.StatusOK, listReply{Items: []ledger.Item{}})
}
