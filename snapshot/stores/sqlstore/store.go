package sqlstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/zeptools/invoicing-core/db/sqldb"
	"github.com/zeptools/invoicing-core/snapshot"
)

//go:embed sql
var sqlFS embed.FS

var _ snapshot.Store = (*Store)(nil)

// Store persists snapshot records through the sqldb abstraction. The same
// store works against MySQL and PostgreSQL; dialect differences live in the
// embedded statements, not in code.
type Store struct {
	h     sqldb.Handle
	stmts *sqldb.RawSQLStore
}

func New(client sqldb.Client, dbType string) (*Store, error) {
	stmts := sqldb.NewRawSQLStore()
	if err := stmts.LoadGroup(sqlFS, "snapshots", dbType); err != nil {
		return nil, fmt.Errorf("sqlstore: load statements: %w", err)
	}
	return &Store{h: client.Handle(), stmts: stmts}, nil
}

// EnsureSchema creates the snapshot table when missing. The listing index is
// a separate statement on PostgreSQL, where the extended protocol takes one
// statement per Exec; MySQL declares it inline in the table definition.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.h.Exec(ctx, s.stmts.MustGet("snapshots.schema")); err != nil {
		return err
	}
	if stmt, ok := s.stmts.Get("snapshots.schema_index"); ok {
		if _, err := s.h.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, rec snapshot.Record) error {
	_, err := s.h.Exec(ctx, s.stmts.MustGet("snapshots.insert_record"),
		rec.ID, rec.Owner, rec.Number, rec.CreatedAt, rec.ItemCount, rec.Total, rec.Items,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: insert record: %w", err)
	}
	return nil
}

func (s *Store) ListByOwner(ctx context.Context, owner string) ([]snapshot.Summary, error) {
	rowptrs, err := sqldb.QueryItems[summaryRow, *summaryRow](
		ctx, s.h, s.stmts.MustGet("snapshots.list_by_owner"),
		owner, snapshot.ListWindow,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list by owner: %w", err)
	}
	out := make([]snapshot.Summary, 0, len(rowptrs))
	for _, r := range rowptrs {
		out = append(out, r.Summary)
	}
	return out, nil
}

func (s *Store) FindByIDAndOwner(ctx context.Context, id string, owner string) (snapshot.Record, error) {
	r, err := sqldb.QueryItem[recordRow, *recordRow](
		ctx, s.h, s.stmts.MustGet("snapshots.find_by_id_and_owner"),
		id, owner,
	)
	if err != nil {
		if errors.Is(err, sqldb.ErrNoRows) {
			return snapshot.Record{}, snapshot.ErrNotFound
		}
		return snapshot.Record{}, fmt.Errorf("sqlstore: find by id and owner: %w", err)
	}
	return r.Record, nil
}

type recordRow struct {
	snapshot.Record
}

func (r *recordRow) TargetFields() []any {
	return []any{
		&r.ID, &r.Owner, &r.Number, &r.CreatedAt, &r.ItemCount, &r.Total, &r.Items,
	}
}

type summaryRow struct {
	snapshot.Summary
}

func (r *summaryRow) TargetFields() []any {
	return []any{
		&r.ID, &r.Number, &r.CreatedAt, &r.ItemCount, &r.Total,
	}
}
