package sqldb

import (
	"context"
	"errors"
)

// ErrNoRows is the backend-neutral empty-result error. Implementations map
// their driver's sentinel to this one so callers never import a driver.
var ErrNoRows = errors.New("sqldb: no rows in result set")

type Client interface {
	Init() error
	Close() error
	Ping(ctx context.Context) error
	Handle() Handle
	BeginTx(ctx context.Context) (Tx, error)
}

// Handle executes statements against the database. Both the MySQL and the
// PostgreSQL clients expose the same surface; business code never branches
// on the backend type.
type Handle interface {
	// Exec executes SQL statements like INSERT, UPDATE, DELETE.
	Exec(ctx context.Context, query string, args ...any) (Result, error)

	QueryRows(ctx context.Context, query string, args ...any) (Rows, error) // Eager. Fails upfront on statement execution
	QueryRow(ctx context.Context, query string, args ...any) Row            // Lazy. Only fails at Scan()
}
