package executor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kivisql/kivi/ast"
	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

var (
	ErrQueryNotSupported    = errors.New("engine: query not supported")
	ErrDropTypeNotSupported = errors.New("engine: drop type not supported")
)

// Execute runs a single statement against a store and returns its payload.
// Statements it does not know how to run fail with ErrQueryNotSupported
// before the store is touched.
func Execute[K any](ctx context.Context, st store.Store[K], stmt ast.Stmt) (Payload, error) {
	switch stmt := stmt.(type) {
	case *ast.CreateTable:
		return createTable(ctx, st, stmt)
	case *ast.Select:
		return query(ctx, st, stmt)
	case *ast.InsertValues:
		return insert(ctx, st, stmt)
	case *ast.Update:
		return update(ctx, st, stmt)
	case *ast.Delete:
		return deleteRows(ctx, st, stmt)
	case *ast.Drop:
		return drop(ctx, st, stmt)
	}
	return nil, ErrQueryNotSupported
}

func tableName(tn ast.TableName) (sql.Identifier, error) {
	if len(tn) != 1 {
		return 0, fmt.Errorf("engine: want table name got %s", tn)
	}
	return tn[0], nil
}

func createTable[K any](ctx context.Context, st store.Store[K],
	stmt *ast.CreateTable) (Payload, error) {

	tn, err := tableName(stmt.Table)
	if err != nil {
		return nil, err
	}

	colDefs := make([]sql.ColumnDef, 0, len(stmt.Columns))
	for _, cd := range stmt.Columns {
		for _, prev := range colDefs {
			if prev.Name == cd.Name {
				return nil, fmt.Errorf("engine: column %s specified more than once", cd.Name)
			}
		}

		ct := cd.Type
		if cd.Default != nil {
			v, err := evalExpr(ctx, st, nil, cd.Default)
			if err != nil {
				return nil, err
			}
			v, err = ct.ConvertValue(cd.Name, v)
			if err != nil {
				return nil, err
			}
			ct.Default = v
			ct.HasDefault = true
		}
		colDefs = append(colDefs, sql.ColumnDef{Name: cd.Name, Type: ct})
	}

	err = st.SetSchema(ctx, &sql.Schema{Table: tn, Columns: colDefs})
	if err != nil {
		return nil, err
	}
	return Created{}, nil
}

func insert[K any](ctx context.Context, st store.Store[K],
	stmt *ast.InsertValues) (Payload, error) {

	tn, err := tableName(stmt.Table)
	if err != nil {
		return nil, err
	}
	sc, err := st.GetSchema(ctx, tn)
	if err != nil {
		return nil, err
	}
	if len(stmt.Rows) != 1 {
		return nil, fmt.Errorf("engine: want one row of values got %d", len(stmt.Rows))
	}

	// DEFAULT in the values is the same as leaving the column out.
	columns := stmt.Columns
	exprs := stmt.Rows[0]
	hasDefault := false
	for _, e := range exprs {
		if e == nil {
			hasDefault = true
			break
		}
	}
	if hasDefault {
		if len(columns) == 0 {
			all := sc.ColumnNames()
			if len(exprs) > len(all) {
				return nil, fmt.Errorf("engine: want %d values got %d", len(all), len(exprs))
			}
			columns = all[:len(exprs)]
		}
		ncols := make([]sql.Identifier, 0, len(columns))
		nexprs := make([]ast.Expr, 0, len(exprs))
		for i, e := range exprs {
			if e != nil {
				ncols = append(ncols, columns[i])
				nexprs = append(nexprs, e)
			}
		}
		columns, exprs = ncols, nexprs
	}

	values := make([]sql.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := evalExpr(ctx, st, nil, e)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	row, err := sql.NewRow(sc.Columns, columns, values)
	if err != nil {
		return nil, err
	}
	key, err := st.GenID(ctx, tn)
	if err != nil {
		return nil, err
	}
	row, err = st.SetData(ctx, key, row)
	if err != nil {
		return nil, err
	}
	return Inserted{Row: row}, nil
}

func query[K any](ctx context.Context, st store.Store[K], stmt *ast.Select) (Payload, error) {
	rows, err := selectRows(ctx, st, stmt, nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []sql.Row
	for {
		row, err := rows.Next(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		all = append(all, row)
	}
	return Selected{Columns: rows.Columns(), Rows: all}, nil
}

func update[K any](ctx context.Context, st store.Store[K], stmt *ast.Update) (Payload, error) {
	tn, err := tableName(stmt.Table)
	if err != nil {
		return nil, err
	}
	sc, err := st.GetSchema(ctx, tn)
	if err != nil {
		return nil, err
	}

	columns := sc.ColumnNames()
	up, err := newApplier(st, tn, sc, columns, stmt.ColumnUpdates)
	if err != nil {
		return nil, err
	}

	fr, err := fetch(ctx, st, tn, columns, NewFilter(st, tn, stmt.Where, nil))
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	cnt := 0
	for {
		key, row, err := fr.Next(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		nrow, err := up.apply(ctx, row)
		if err != nil {
			return nil, err
		}
		_, err = st.SetData(ctx, key, nrow)
		if err != nil {
			return nil, err
		}
		cnt += 1
	}
	return Updated{Count: cnt}, nil
}

func deleteRows[K any](ctx context.Context, st store.Store[K], stmt *ast.Delete) (Payload, error) {
	tn, err := tableName(stmt.Table)
	if err != nil {
		return nil, err
	}
	columns, err := fetchColumns(ctx, st, tn)
	if err != nil {
		return nil, err
	}

	fr, err := fetch(ctx, st, tn, columns, NewFilter(st, tn, stmt.Where, nil))
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	cnt := 0
	for {
		key, _, err := fr.Next(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		err = st.DelData(ctx, key)
		if err != nil {
			return nil, err
		}
		cnt += 1
	}
	return Deleted{Count: cnt}, nil
}

func drop[K any](ctx context.Context, st store.Store[K], stmt *ast.Drop) (Payload, error) {
	if stmt.Type != sql.TABLE {
		return nil, ErrDropTypeNotSupported
	}

	for _, nm := range stmt.Names {
		tn, err := tableName(nm)
		if err != nil {
			return nil, err
		}
		if stmt.IfExists {
			if _, err := st.GetSchema(ctx, tn); err != nil {
				continue
			}
		}
		err = st.DelSchema(ctx, tn)
		if err != nil {
			return nil, err
		}
	}
	return Dropped{}, nil
}
