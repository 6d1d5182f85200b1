package executor

import (
	"context"
	"fmt"

	"github.com/kivisql/kivi/ast"
	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

// applier computes the updated version of a row. Every assignment
// expression is evaluated against the original row, so the order of the
// assignments does not matter.
type applier[K any] struct {
	st      store.Store[K]
	table   sql.Identifier
	schema  *sql.Schema
	columns []sql.Identifier
	updates []ast.ColumnUpdate
	indexes []int
}

// newApplier resolves the assignment target columns; an unknown column
// fails here, before any row is fetched or changed.
func newApplier[K any](st store.Store[K], table sql.Identifier, sc *sql.Schema,
	columns []sql.Identifier, updates []ast.ColumnUpdate) (*applier[K], error) {

	indexes := make([]int, 0, len(updates))
	for _, cu := range updates {
		idx := sc.FindColumn(cu.Column)
		if idx < 0 {
			return nil, fmt.Errorf("engine: update %s not found", cu.Column)
		}
		indexes = append(indexes, idx)
	}

	return &applier[K]{st: st, table: table, schema: sc, columns: columns, updates: updates,
		indexes: indexes}, nil
}

func (up *applier[K]) apply(ctx context.Context, row sql.Row) (sql.Row, error) {
	orig := &filterContext{table: up.table, columns: up.columns, row: row}

	nrow := append(make(sql.Row, 0, len(row)), row...)
	for i, cu := range up.updates {
		idx := up.indexes[i]
		v, err := evalExpr(ctx, up.st, orig, cu.Expr)
		if err != nil {
			return nil, err
		}
		v, err = up.schema.Columns[idx].Type.ConvertValue(cu.Column, v)
		if err != nil {
			return nil, err
		}
		nrow[idx] = v
	}
	return nrow, nil
}
