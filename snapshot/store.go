package snapshot

import "context"

// Store persists snapshot records. Writes are append-only; records are never
// updated or deleted. Listing returns summaries only, newest first, bounded
// to ListWindow.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	ListByOwner(ctx context.Context, owner string) ([]Summary, error)
	FindByIDAndOwner(ctx context.Context, id string, owner string) (Record, error)
}
