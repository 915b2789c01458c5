package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/zeptools/invoicing-core/snapshot"
)

var _ snapshot.Store = (*Store)(nil)

// Store keeps snapshot records in memory. Used by tests and storage-less
// deployments; records do not survive a restart.
type Store struct {
	mu      sync.RWMutex
	records []snapshot.Record
}

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(_ context.Context, rec snapshot.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *Store) ListByOwner(_ context.Context, owner string) ([]snapshot.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]snapshot.Summary, 0)
	for _, rec := range s.records {
		if rec.Owner == owner {
			out = append(out, rec.Summary())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > snapshot.ListWindow {
		out = out[:snapshot.ListWindow]
	}
	return out, nil
}

func (s *Store) FindByIDAndOwner(_ context.Context, id string, owner string) (snapshot.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id && rec.Owner == owner {
			return rec, nil
		}
	}
	return snapshot.Record{}, snapshot.ErrNotFound
}
