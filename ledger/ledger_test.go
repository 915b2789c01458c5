package ledger

import (
	"errors"
	"testing"

	"github.com/zeptools/invoicing-core/pricing"
)

func testTariff() pricing.Tariff {
	return pricing.Tariff{Threshold: 20, High: 100_000, Low: 70_000}
}

func TestAddAutoPricing(t *testing.T) {
	l := New(testTariff())

	for i := 0; i < 25; i++ {
		item, err := l.Add("Entry", nil)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if item.ID != i+1 {
			t.Fatalf("item %d got id %d", i, item.ID)
		}
		want := int64(100_000)
		if i >= 20 {
			want = 70_000
		}
		if item.Price != want {
			t.Errorf("ordinal %d priced %d, want %d", i, item.Price, want)
		}
	}
}

func TestAddExplicitPrice(t *testing.T) {
	l := New(testTariff())
	price := int64(55_500)
	item, err := l.Add("Custom", &price)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Price != 55_500 {
		t.Errorf("explicit price not kept verbatim: %d", item.Price)
	}
}

func TestAddEmptyName(t *testing.T) {
	l := New(testTariff())
	if _, err := l.Add("   ", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("want ErrEmptyName, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatal("failed Add must not mutate the ledger")
	}
}

func TestAddBatchCleansAndPrices(t *testing.T) {
	l := New(testTariff())
	items, err := l.AddBatch([]string{"JOHN_DOE_study.pdf", "jane_roe.docx"})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Name != "John Doe Study" {
		t.Errorf("cleaned name = %q", items[0].Name)
	}
	if items[1].Name != "Jane Roe" {
		t.Errorf("cleaned name = %q", items[1].Name)
	}
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Errorf("batch ids = %d, %d", items[0].ID, items[1].ID)
	}
}

func TestAddBatchAtomic(t *testing.T) {
	l := New(testTariff())
	if _, err := l.Add("Existing", nil); err != nil {
		t.Fatal(err)
	}
	_, err := l.AddBatch([]string{"ok_name.pdf", "   "})
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("want ErrEmptyName, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("partial batch applied: len = %d", l.Len())
	}
}

func TestUpdateExplicitAndRecomputed(t *testing.T) {
	l := New(testTariff())
	if _, err := l.Add("A", nil); err != nil {
		t.Fatal(err)
	}

	price := int64(42)
	item, err := l.Update(1, "", &price)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if item.Price != 42 {
		t.Errorf("explicit price = %d, want 42", item.Price)
	}
	if item.Name != "A" {
		t.Errorf("empty name must keep the old one, got %q", item.Name)
	}

	// Omitting the price overwrites the explicit one with the tariff rate.
	item, err = l.Update(1, "B", nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if item.Price != 100_000 {
		t.Errorf("recomputed price = %d, want 100000", item.Price)
	}
	if item.Name != "B" {
		t.Errorf("name = %q, want B", item.Name)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	l := New(testTariff())
	if _, err := l.Update(3, "X", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteRenumbers(t *testing.T) {
	l := New(testTariff())
	names := []string{"A", "B", "C", "D", "E"}
	for _, n := range names {
		if _, err := l.Add(n, nil); err != nil {
			t.Fatal(err)
		}
	}

	if err := l.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	items := l.Items()
	if len(items) != 4 {
		t.Fatalf("len = %d, want 4", len(items))
	}
	wantNames := []string{"A", "C", "D", "E"}
	for i, it := range items {
		if it.ID != i+1 {
			t.Errorf("item %d has id %d, want %d", i, it.ID, i+1)
		}
		if it.Name != wantNames[i] {
			t.Errorf("item %d name %q, want %q", i, it.Name, wantNames[i])
		}
	}
}

func TestDeleteUnknownID(t *testing.T) {
	l := New(testTariff())
	if _, err := l.Add("A", nil); err != nil {
		t.Fatal(err)
	}
	if err := l.Delete(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatal("failed delete must not mutate the ledger")
	}
}

func TestClearAndSubtotal(t *testing.T) {
	l := New(testTariff())
	for i := 0; i < 3; i++ {
		if _, err := l.Add("X", nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := l.Subtotal(); got != 300_000 {
		t.Errorf("Subtotal = %d, want 300000", got)
	}
	l.Clear()
	if l.Len() != 0 || l.Subtotal() != 0 {
		t.Error("Clear must empty the ledger")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	l := New(testTariff())
	if _, err := l.Add("A", nil); err != nil {
		t.Fatal(err)
	}
	items := l.Items()
	items[0].Name = "tampered"
	if l.Items()[0].Name != "A" {
		t.Fatal("Items must return a defensive copy")
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"JOHN_DOE.pdf", "John Doe"},
		{"maria_luisa_gomez.docx", "Maria Luisa Gomez"},
		{"single", "Single"},
		{"trailing_underscore_.doc", "Trailing Underscore"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.raw); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
