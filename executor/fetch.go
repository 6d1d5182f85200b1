package executor

import (
	"context"

	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

func fetchColumns[K any](ctx context.Context, st store.Store[K],
	tn sql.Identifier) ([]sql.Identifier, error) {

	sc, err := st.GetSchema(ctx, tn)
	if err != nil {
		return nil, err
	}
	return sc.ColumnNames(), nil
}

// fetchRows iterates the rows of a table that pass a filter, keeping the
// store key of each row.
type fetchRows[K any] struct {
	columns []sql.Identifier
	iter    store.RowIter[K]
	filter  *Filter[K]
}

func fetch[K any](ctx context.Context, st store.Store[K], tn sql.Identifier,
	columns []sql.Identifier, filter *Filter[K]) (*fetchRows[K], error) {

	iter, err := st.ScanData(ctx, tn)
	if err != nil {
		return nil, err
	}
	return &fetchRows[K]{columns: columns, iter: iter, filter: filter}, nil
}

func (fr *fetchRows[K]) Next(ctx context.Context) (K, sql.Row, error) {
	for {
		key, row, err := fr.iter.Next(ctx)
		if err != nil {
			var zero K
			return zero, nil, err
		}
		ok, err := fr.filter.Matches(ctx, fr.columns, row)
		if err != nil {
			var zero K
			return zero, nil, err
		}
		if ok {
			return key, row, nil
		}
	}
}

func (fr *fetchRows[K]) Close() error {
	return fr.iter.Close()
}
