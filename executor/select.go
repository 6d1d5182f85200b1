package executor

import (
	"context"
	"fmt"
	"io"

	"github.com/kivisql/kivi/ast"
	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

// selectedRows produces the projected rows of a SELECT one at a time.
type selectedRows[K any] struct {
	st        store.Store[K]
	columns   []sql.Identifier
	results   []ast.SelectResult
	rows      *fetchRows[K] // nil when there is no FROM
	table     sql.Identifier
	tableCols []sql.Identifier
	outer     *filterContext
	limit     int64 // -1 when there is no LIMIT
	offset    int64
	returned  int64
	done      bool
}

func selectRows[K any](ctx context.Context, st store.Store[K], stmt *ast.Select,
	outer *filterContext) (*selectedRows[K], error) {

	if len(stmt.Table) == 0 && stmt.Results != nil {
		return selectNoTable(ctx, st, stmt, outer)
	}

	tn, err := tableName(stmt.Table)
	if err != nil {
		return nil, err
	}
	tableCols, err := fetchColumns(ctx, st, tn)
	if err != nil {
		return nil, err
	}

	nam := tn
	if stmt.Alias != 0 {
		nam = stmt.Alias
	}

	fr, err := fetch(ctx, st, tn, tableCols, NewFilter(st, nam, stmt.Where, outer))
	if err != nil {
		return nil, err
	}

	columns := tableCols
	if stmt.Results != nil {
		columns = make([]sql.Identifier, 0, len(stmt.Results))
		for i, sr := range stmt.Results {
			columns = append(columns, resultColumn(sr, i))
		}
	}

	limit := int64(-1)
	if stmt.Limit != nil {
		limit, err = intValue(ctx, st, stmt.Limit, "LIMIT")
		if err != nil {
			fr.Close()
			return nil, err
		}
	}
	var offset int64
	if stmt.Offset != nil {
		offset, err = intValue(ctx, st, stmt.Offset, "OFFSET")
		if err != nil {
			fr.Close()
			return nil, err
		}
	}

	return &selectedRows[K]{st: st, columns: columns, results: stmt.Results, rows: fr,
		table: nam, tableCols: tableCols, outer: outer, limit: limit, offset: offset}, nil
}

// selectNoTable handles a SELECT without a FROM: the result expressions are
// evaluated once, against the outer row if there is one.
func selectNoTable[K any](ctx context.Context, st store.Store[K], stmt *ast.Select,
	outer *filterContext) (*selectedRows[K], error) {

	columns := make([]sql.Identifier, 0, len(stmt.Results))
	for i, sr := range stmt.Results {
		columns = append(columns, resultColumn(sr, i))
	}

	limit := int64(-1)
	var err error
	if stmt.Limit != nil {
		limit, err = intValue(ctx, st, stmt.Limit, "LIMIT")
		if err != nil {
			return nil, err
		}
	}
	var offset int64
	if stmt.Offset != nil {
		offset, err = intValue(ctx, st, stmt.Offset, "OFFSET")
		if err != nil {
			return nil, err
		}
	}

	sr := &selectedRows[K]{st: st, columns: columns, results: stmt.Results, outer: outer,
		limit: limit, offset: offset}

	ok, err := NewFilter(st, 0, stmt.Where, outer).Matches(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok || offset > 0 {
		sr.done = true
	}
	return sr, nil
}

func resultColumn(sr ast.SelectResult, idx int) sql.Identifier {
	if sr.Alias != 0 {
		return sr.Alias
	}
	switch e := sr.Expr.(type) {
	case ast.Ref:
		return e[len(e)-1]
	case *ast.Call:
		return e.Name
	}
	return sql.ID(fmt.Sprintf("expr%d", idx+1))
}

func intValue[K any](ctx context.Context, st store.Store[K], e ast.Expr,
	what string) (int64, error) {

	v, err := evalExpr(ctx, st, nil, e)
	if err != nil {
		return 0, err
	}
	i, ok := v.(sql.Int64Value)
	if !ok || i < 0 {
		return 0, fmt.Errorf("engine: %s: want non-negative integer got %s", what,
			sql.Format(v))
	}
	return int64(i), nil
}

func (sr *selectedRows[K]) Columns() []sql.Identifier {
	return sr.columns
}

func (sr *selectedRows[K]) Next(ctx context.Context) (sql.Row, error) {
	for {
		if sr.limit >= 0 && sr.returned >= sr.limit {
			return nil, io.EOF
		}
		if sr.rows == nil {
			if sr.done {
				return nil, io.EOF
			}
			sr.done = true
			sr.returned += 1

			prow := make(sql.Row, 0, len(sr.results))
			for _, res := range sr.results {
				v, err := evalExpr(ctx, sr.st, sr.outer, res.Expr)
				if err != nil {
					return nil, err
				}
				prow = append(prow, v)
			}
			return prow, nil
		}
		_, row, err := sr.rows.Next(ctx)
		if err != nil {
			return nil, err
		}
		if sr.offset > 0 {
			sr.offset -= 1
			continue
		}
		sr.returned += 1

		if sr.results == nil {
			return row, nil
		}
		fctx := &filterContext{table: sr.table, columns: sr.tableCols, row: row,
			next: sr.outer}
		prow := make(sql.Row, 0, len(sr.results))
		for _, res := range sr.results {
			v, err := evalExpr(ctx, sr.st, fctx, res.Expr)
			if err != nil {
				return nil, err
			}
			prow = append(prow, v)
		}
		return prow, nil
	}
}

func (sr *selectedRows[K]) Close() error {
	if sr.rows == nil {
		return nil
	}
	return sr.rows.Close()
}
