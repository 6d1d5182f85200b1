package store

import (
	"context"

	"github.com/kivisql/kivi/sql"
)

// RowIter iterates over the rows of a table; Next returns io.EOF once the
// rows are done. Mutating the table while a RowIter is open must be safe:
// rows already returned are not returned again, and the iteration neither
// skips nor corrupts rows it has yet to return.
type RowIter[K any] interface {
	Next(ctx context.Context) (K, sql.Row, error)
	Close() error
}

// Store is the storage contract of the engine. Row keys are opaque to the
// engine: it gets them from GenID or ScanData and hands them back unchanged.
// A key from GenID must be unique for the lifetime of its table, including
// after rows are deleted.
type Store[K any] interface {
	// SetSchema creates or replaces the schema for a table.
	SetSchema(ctx context.Context, sc *sql.Schema) error

	// GetSchema returns the schema for a table; it is an error if the
	// table does not exist.
	GetSchema(ctx context.Context, tn sql.Identifier) (*sql.Schema, error)

	// DelSchema removes a table: its schema and all of its rows.
	DelSchema(ctx context.Context, tn sql.Identifier) error

	// GenID reserves a new row key for a table.
	GenID(ctx context.Context, tn sql.Identifier) (K, error)

	// SetData stores a row at a key, replacing any existing row, and
	// returns the row as stored.
	SetData(ctx context.Context, key K, row sql.Row) (sql.Row, error)

	// DelData removes the row at a key.
	DelData(ctx context.Context, key K) error

	// ScanData iterates over all of the rows of a table.
	ScanData(ctx context.Context, tn sql.Identifier) (RowIter[K], error)
}
