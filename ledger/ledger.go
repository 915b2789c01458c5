package ledger

import (
	"errors"
	"strings"

	"github.com/zeptools/invoicing-core/pricing"
)

var (
	ErrEmptyName    = errors.New("ledger: item name required")
	ErrInvalidPrice = errors.New("ledger: price must be an integer")
	ErrNotFound     = errors.New("ledger: item not found")
)

// Item is one billable line. IDs are positional: within a ledger they are
// always the contiguous sequence 1..N matching the current list order.
type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Ledger is an ordered list of billable items for a single owner.
// It is not safe for concurrent use on its own; Store serializes access
// per owner.
type Ledger struct {
	tariff pricing.Tariff
	items  []Item
}

func New(tariff pricing.Tariff) *Ledger {
	return &Ledger{tariff: tariff}
}

func (l *Ledger) Len() int {
	return len(l.items)
}

// Add appends one item. The new item's id is the current size + 1, assigned
// before the append. When explicitPrice is nil the tariff rate for the item's
// zero-based ordinal applies.
func (l *Ledger) Add(name string, explicitPrice *int64) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	id := len(l.items) + 1
	price := l.tariff.Rate(id - 1)
	if explicitPrice != nil {
		price = *explicitPrice
	}
	item := Item{ID: id, Name: name, Price: price}
	l.items = append(l.items, item)
	return item, nil
}

// AddBatch cleans each raw name (typically an uploaded filename) and appends
// the whole batch at once, pricing every entry by its insertion ordinal.
// The batch is all-or-nothing: one bad name leaves the ledger unchanged.
func (l *Ledger) AddBatch(rawNames []string) ([]Item, error) {
	batch := make([]Item, 0, len(rawNames))
	base := len(l.items)
	for i, raw := range rawNames {
		name := CleanName(raw)
		if name == "" {
			return nil, ErrEmptyName
		}
		id := base + i + 1
		batch = append(batch, Item{
			ID:    id,
			Name:  name,
			Price: l.tariff.Rate(id - 1),
		})
	}
	l.items = append(l.items, batch...)
	return batch, nil
}

// Update modifies one item in place. A non-nil price is taken verbatim;
// a nil price recomputes the tariff rate for the item's ordinal, overwriting
// any price set earlier.
func (l *Ledger) Update(id int, name string, explicitPrice *int64) (Item, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Item{}, ErrNotFound
	}
	item := l.items[idx]
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		item.Name = trimmed
	}
	if explicitPrice != nil {
		item.Price = *explicitPrice
	} else {
		item.Price = l.tariff.Rate(item.ID - 1)
	}
	l.items[idx] = item
	return item, nil
}

// Delete removes one item and renumbers the remainder to 1..N, preserving
// relative order. Removal and renumbering are one atomic operation.
func (l *Ledger) Delete(id int) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	for i := range l.items {
		l.items[i].ID = i + 1
	}
	return nil
}

func (l *Ledger) Clear() {
	l.items = nil
}

// Items returns a copy of the current list.
func (l *Ledger) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Subtotal sums the prices of all items.
func (l *Ledger) Subtotal() int64 {
	return Subtotal(l.items)
}

func (l *Ledger) indexOf(id int) int {
	// ids are contiguous 1..N, so the index is implied; still verify
	if id < 1 || id > len(l.items) {
		return -1
	}
	return id - 1
}

// Subtotal sums the prices of a snapshot slice.
func Subtotal(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price
	}
	return sum
}
