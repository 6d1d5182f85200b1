package executor

import (
	"context"
	"fmt"

	"github.com/kivisql/kivi/ast"
	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

// filterContext makes the columns of a row addressable by name while an
// expression is evaluated; next points at the row of the enclosing query
// so that subqueries may be correlated.
type filterContext struct {
	table   sql.Identifier
	columns []sql.Identifier
	row     sql.Row
	next    *filterContext
}

func (fctx *filterContext) lookup(tbl, col sql.Identifier) (sql.Value, bool) {
	for c := fctx; c != nil; c = c.next {
		if tbl != 0 && tbl != c.table {
			continue
		}
		for i, nam := range c.columns {
			if nam == col {
				return c.row[i], true
			}
		}
	}
	return nil, false
}

// Filter decides whether rows satisfy a WHERE condition.
type Filter[K any] struct {
	st    store.Store[K]
	table sql.Identifier
	cond  ast.Expr
	outer *filterContext
}

func NewFilter[K any](st store.Store[K], table sql.Identifier, cond ast.Expr,
	outer *filterContext) *Filter[K] {

	return &Filter[K]{st: st, table: table, cond: cond, outer: outer}
}

// Matches reports whether a row satisfies the condition. A condition that
// evaluates to NULL excludes the row; a condition that evaluates to a non
// boolean is an error.
func (f *Filter[K]) Matches(ctx context.Context, columns []sql.Identifier,
	row sql.Row) (bool, error) {

	if f.cond == nil {
		return true, nil
	}

	fctx := &filterContext{table: f.table, columns: columns, row: row, next: f.outer}
	v, err := evalExpr(ctx, f.st, fctx, f.cond)
	if err != nil {
		return false, err
	}
	switch v := v.(type) {
	case nil:
		return false, nil
	case sql.BoolValue:
		return bool(v), nil
	}
	return false, fmt.Errorf("engine: want boolean got %s", sql.Format(v))
}
