package ledger

import (
	"sync"

	"github.com/zeptools/invoicing-core/pricing"
)

// Store holds one Ledger per owner. Mutations for the same owner are
// serialized through a per-owner mutex so id contiguity can never be broken
// by interleaving; distinct owners proceed fully in parallel.
type Store struct {
	tariff  pricing.Tariff
	ledgers sync.Map // owner string -> *Ledger
	locks   sync.Map // owner string -> *sync.Mutex
}

func NewStore(tariff pricing.Tariff) *Store {
	return &Store{tariff: tariff}
}

// WithOwner runs fn against the owner's ledger under the owner's lock.
// The ledger is created empty on first access.
func (s *Store) WithOwner(owner string, fn func(*Ledger) error) error {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()
	return fn(s.ownerLedger(owner))
}

// Snapshot copies the owner's current items under the owner's lock.
// The returned slice is immutable from the ledger's point of view and safe
// to hand to renderers on other goroutines.
func (s *Store) Snapshot(owner string) []Item {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()
	return s.ownerLedger(owner).Items()
}

func (s *Store) ownerLock(owner string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *Store) ownerLedger(owner string) *Ledger {
	v, _ := s.ledgers.LoadOrStore(owner, New(s.tariff))
	return v.(*Ledger)
}
