package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeptools/invoicing-core/ledger"
)

var ErrNotFound = errors.New("snapshot: record not found")

// ListWindow bounds history listings to the most recent records.
const ListWindow = 50

// Record is one immutable invoice snapshot, written once at render time and
// never updated. Items holds the JSON-serialized ledger items so replay
// reproduces the invoice exactly as it was issued.
type Record struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	ItemCount int       `json:"item_count"`
	Total     int64     `json:"total"`
	Items     []byte    `json:"items"`
}

// Summary is the listing shape: every Record field except the item bodies.
type Summary struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	ItemCount int       `json:"item_count"`
	Total     int64     `json:"total"`
}

// NewRecord freezes the given items into a snapshot record.
func NewRecord(owner, number string, createdAt time.Time, items []ledger.Item) (Record, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return Record{}, fmt.Errorf("snapshot: serialize items: %w", err)
	}
	return Record{
		ID:        uuid.NewString(),
		Owner:     owner,
		Number:    number,
		CreatedAt: createdAt,
		ItemCount: len(items),
		Total:     ledger.Subtotal(items),
		Items:     data,
	}, nil
}

// RestoreItems rehydrates the serialized item list for replay.
func (r Record) RestoreItems() ([]ledger.Item, error) {
	var items []ledger.Item
	if err := json.Unmarshal(r.Items, &items); err != nil {
		return nil, fmt.Errorf("snapshot: restore items: %w", err)
	}
	return items, nil
}

func (r Record) Summary() Summary {
	return Summary{
		ID:        r.ID,
		Number:    r.Number,
		CreatedAt: r.CreatedAt,
		ItemCount: r.ItemCount,
		Total:     r.Total,
	}
}
