package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/locks/keyonlylocks"
	"github.com/zeptools/invoicing-core/money"
	"github.com/zeptools/invoicing-core/snapshot"
	"github.com/zeptools/invoicing-core/storages/scratch"
)

var (
	ErrEmptyLedger    = errors.New("billing: no items to invoice")
	ErrUnknownFormat  = errors.New("billing: unknown invoice format")
	ErrActionInFlight = errors.New("billing: another invoice action is in progress for this owner")
)

// Artifact is one rendered invoice ready to stream back as an attachment.
type Artifact struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// Service runs invoice actions: snapshot the owner's ledger, render it,
// persist the snapshot record, hand back the artifact. Renders work on the
// frozen snapshot, never on live ledger state.
type Service struct {
	Profile   Profile
	Money     money.Formatter
	Ledgers   *ledger.Store
	Snapshots snapshot.Store
	Renderers map[string]Renderer // format selector -> renderer
	// ActionLocks serializes invoice actions per owner on top of the
	// ledger lock, so two concurrent actions cannot both snapshot and
	// persist the same state.
	ActionLocks *sync.Map
	Scratch     *scratch.Dir // optional; artifacts also land here when set
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateInvoice renders the owner's current ledger in the requested format
// and appends one snapshot record. An empty number gets a timestamp-derived
// default. The record is only written after a successful render.
func (s *Service) GenerateInvoice(ctx context.Context, owner string, format string, number string) (Artifact, error) {
	r, ok := s.Renderers[format]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	lockKeys := []string{"invoice-action:" + owner}
	acquired, ok := keyonlylocks.AcquireLocks(s.ActionLocks, lockKeys)
	if !ok {
		return Artifact{}, ErrActionInFlight
	}
	defer keyonlylocks.ReleaseLocks(s.ActionLocks, acquired)

	now := s.now()
	if number == "" {
		number = "FAC-" + now.Format("20060102150405")
	}

	items := s.Ledgers.Snapshot(owner)
	if len(items) == 0 {
		return Artifact{}, ErrEmptyLedger
	}

	doc := Document{
		Number:   number,
		IssuedAt: now,
		Profile:  s.Profile,
		Items:    items,
		Money:    s.Money,
	}
	data, err := r.Render(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s invoice: %w", format, err)
	}

	rec, err := snapshot.NewRecord(owner, number, now, items)
	if err != nil {
		return Artifact{}, err
	}
	if err = s.Snapshots.Insert(ctx, rec); err != nil {
		return Artifact{}, fmt.Errorf("persist snapshot: %w", err)
	}

	return s.artifact(r, number, data), nil
}

// Replay re-renders a stored snapshot. Items and totals come back exactly as
// recorded; only the displayed render timestamp is fresh.
func (s *Service) Replay(ctx context.Context, owner string, id string, format string) (Artifact, error) {
	r, ok := s.Renderers[format]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	rec, err := s.Snapshots.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return Artifact{}, err
	}
	items, err := rec.RestoreItems()
	if err != nil {
		return Artifact{}, err
	}

	doc := Document{
		Number:   rec.Number,
		IssuedAt: s.now(),
		Profile:  s.Profile,
		Items:    items,
		Money:    s.Money,
	}
	data, err := r.Render(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("replay %s invoice: %w", format, err)
	}
	return s.artifact(r, rec.Number, data), nil
}

// History lists the owner's most recent snapshot summaries.
func (s *Service) History(ctx context.Context, owner string) ([]snapshot.Summary, error) {
	return s.Snapshots.ListByOwner(ctx, owner)
}

func (s *Service) artifact(r Renderer, number string, data []byte) Artifact {
	filename := fmt.Sprintf("%s_%s.%s", r.Kind(), number, r.Extension())
	if s.Scratch != nil {
		if _, err := s.Scratch.Write(filename, data); err != nil {
			// scratch copies are a convenience; the response stream is the artifact
			log.Printf("[ERROR] scratch write failed for %s: %v", filename, err)
		}
	}
	return Artifact{
		Bytes:       data,
		Filename:    filename,
		ContentType: r.ContentType(),
	}
}
