package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/kivisql/kivi/ast"
	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

type callFunc struct {
	fn         func(args []sql.Value) (sql.Value, error)
	minArgs    int16
	maxArgs    int16
	name       string
	handleNull bool
}

var opFuncs = map[ast.Op]*callFunc{
	ast.AddOp:          {fn: addCall, minArgs: 2, maxArgs: 2, name: "+"},
	ast.AndOp:          {fn: andCall, minArgs: 2, maxArgs: 2, name: "AND", handleNull: true},
	ast.BinaryAndOp:    {fn: binaryAndCall, minArgs: 2, maxArgs: 2, name: "&"},
	ast.BinaryOrOp:     {fn: binaryOrCall, minArgs: 2, maxArgs: 2, name: "|"},
	ast.ConcatOp:       {fn: concatCall, minArgs: 2, maxArgs: 2, name: "||", handleNull: true},
	ast.DivideOp:       {fn: divideCall, minArgs: 2, maxArgs: 2, name: "/"},
	ast.EqualOp:        {fn: equalCall, minArgs: 2, maxArgs: 2, name: "=="},
	ast.GreaterEqualOp: {fn: greaterEqualCall, minArgs: 2, maxArgs: 2, name: ">="},
	ast.GreaterThanOp:  {fn: greaterThanCall, minArgs: 2, maxArgs: 2, name: ">"},
	ast.LessEqualOp:    {fn: lessEqualCall, minArgs: 2, maxArgs: 2, name: "<="},
	ast.LessThanOp:     {fn: lessThanCall, minArgs: 2, maxArgs: 2, name: "<"},
	ast.LShiftOp:       {fn: lShiftCall, minArgs: 2, maxArgs: 2, name: "<<"},
	ast.ModuloOp:       {fn: moduloCall, minArgs: 2, maxArgs: 2, name: "%"},
	ast.MultiplyOp:     {fn: multiplyCall, minArgs: 2, maxArgs: 2, name: "*"},
	ast.NegateOp:       {fn: negateCall, minArgs: 1, maxArgs: 1, name: "-"},
	ast.NotEqualOp:     {fn: notEqualCall, minArgs: 2, maxArgs: 2, name: "!="},
	ast.NotOp:          {fn: notCall, minArgs: 1, maxArgs: 1, name: "NOT", handleNull: true},
	ast.OrOp:           {fn: orCall, minArgs: 2, maxArgs: 2, name: "OR", handleNull: true},
	ast.RShiftOp:       {fn: rShiftCall, minArgs: 2, maxArgs: 2, name: ">>"},
	ast.SubtractOp:     {fn: subtractCall, minArgs: 2, maxArgs: 2, name: "-"},
}

var idFuncs = map[sql.Identifier]*callFunc{
	sql.ID("abs"):     {fn: absCall, minArgs: 1, maxArgs: 1},
	sql.ID("concat"):  {fn: concatCall, minArgs: 1, maxArgs: math.MaxInt16, handleNull: true},
	sql.ID("version"): {fn: versionCall, minArgs: 0, maxArgs: 0},
}

func init() {
	for id, cf := range idFuncs {
		cf.name = id.String()
	}
}

func evalExpr[K any](ctx context.Context, st store.Store[K], fctx *filterContext,
	e ast.Expr) (sql.Value, error) {

	switch e := e.(type) {
	case *ast.Literal:
		return e.Value, nil
	case ast.Ref:
		return evalRef(fctx, e)
	case *ast.Unary:
		if e.Op == ast.NoOp {
			return evalExpr(ctx, st, fctx, e.Expr)
		}
		return evalCall(ctx, st, fctx, opFuncs[e.Op], []ast.Expr{e.Expr})
	case *ast.Binary:
		return evalCall(ctx, st, fctx, opFuncs[e.Op], []ast.Expr{e.Left, e.Right})
	case *ast.Call:
		cf, ok := idFuncs[e.Name]
		if !ok {
			return nil, fmt.Errorf("engine: function %s not found", e.Name)
		}
		if len(e.Args) < int(cf.minArgs) {
			return nil, fmt.Errorf("engine: %s: want at least %d arguments got %d",
				cf.name, cf.minArgs, len(e.Args))
		}
		if len(e.Args) > int(cf.maxArgs) {
			return nil, fmt.Errorf("engine: %s: want at most %d arguments got %d",
				cf.name, cf.maxArgs, len(e.Args))
		}
		return evalCall(ctx, st, fctx, cf, e.Args)
	case *ast.IsNull:
		v, err := evalExpr(ctx, st, fctx, e.Expr)
		if err != nil {
			return nil, err
		}
		b := sql.BoolValue(v == nil)
		if e.Not {
			b = !b
		}
		return b, nil
	case *ast.Between:
		return evalBetween(ctx, st, fctx, e)
	case *ast.InList:
		return evalInList(ctx, st, fctx, e)
	case *ast.InSelect:
		return evalInSelect(ctx, st, fctx, e)
	case *ast.ScalarSelect:
		return evalScalarSelect(ctx, st, fctx, e)
	}
	return nil, fmt.Errorf("engine: unexpected expression: %s", e)
}

func evalRef(fctx *filterContext, r ast.Ref) (sql.Value, error) {
	var tbl, col sql.Identifier
	if len(r) == 1 {
		col = r[0]
	} else if len(r) == 2 {
		tbl = r[0]
		col = r[1]
	} else {
		return nil, fmt.Errorf("engine: %s is not a valid reference", r)
	}

	v, ok := fctx.lookup(tbl, col)
	if !ok {
		return nil, fmt.Errorf("engine: reference %s not found", r)
	}
	return v, nil
}

func evalCall[K any](ctx context.Context, st store.Store[K], fctx *filterContext,
	cf *callFunc, exprs []ast.Expr) (sql.Value, error) {

	args := make([]sql.Value, len(exprs))
	for i, e := range exprs {
		v, err := evalExpr(ctx, st, fctx, e)
		if err != nil {
			return nil, err
		}
		if v == nil && !cf.handleNull {
			return nil, nil
		}
		args[i] = v
	}
	return cf.fn(args)
}

func evalBetween[K any](ctx context.Context, st store.Store[K], fctx *filterContext,
	e *ast.Between) (sql.Value, error) {

	v, err := evalExpr(ctx, st, fctx, e.Expr)
	if err != nil {
		return nil, err
	}
	lo, err := evalExpr(ctx, st, fctx, e.Low)
	if err != nil {
		return nil, err
	}
	hi, err := evalExpr(ctx, st, fctx, e.High)
	if err != nil {
		return nil, err
	}

	lowOK, err := cmpBound(v, lo, func(cmp int) bool { return cmp >= 0 })
	if err != nil {
		return nil, err
	}
	highOK, err := cmpBound(v, hi, func(cmp int) bool { return cmp <= 0 })
	if err != nil {
		return nil, err
	}
	r, err := andCall([]sql.Value{lowOK, highOK})
	if err != nil {
		return nil, err
	}
	if e.Not {
		return notCall([]sql.Value{r})
	}
	return r, nil
}

func cmpBound(v, b sql.Value, fn func(int) bool) (sql.Value, error) {
	if v == nil || b == nil {
		return nil, nil
	}
	cmp, err := v.Compare(b)
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(fn(cmp)), nil
}

func evalInList[K any](ctx context.Context, st store.Store[K], fctx *filterContext,
	e *ast.InList) (sql.Value, error) {

	v, err := evalExpr(ctx, st, fctx, e.Expr)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	found := false
	unknown := false
	for _, le := range e.List {
		lv, err := evalExpr(ctx, st, fctx, le)
		if err != nil {
			return nil, err
		}
		if lv == nil {
			unknown = true
			continue
		}
		cmp, err := v.Compare(lv)
		if err != nil {
			return nil, err
		}
		if cmp == 0 {
			found = true
			break
		}
	}
	return inResult(found, unknown, e.Not)
}

func evalInSelect[K any](ctx context.Context, st store.Store[K], fctx *filterContext,
	e *ast.InSelect) (sql.Value, error) {

	v, err := evalExpr(ctx, st, fctx, e.Expr)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	rows, err := selectRows(ctx, st, e.Select, fctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if len(rows.Columns()) != 1 {
		return nil, fmt.Errorf("engine: want one column for IN got %d", len(rows.Columns()))
	}

	found := false
	unknown := false
	for {
		row, err := rows.Next(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if row[0] == nil {
			unknown = true
			continue
		}
		cmp, err := v.Compare(row[0])
		if err != nil {
			return nil, err
		}
		if cmp == 0 {
			found = true
			break
		}
	}
	return inResult(found, unknown, e.Not)
}

func inResult(found, unknown, not bool) (sql.Value, error) {
	var r sql.Value
	if found {
		r = sql.BoolValue(true)
	} else if !unknown {
		r = sql.BoolValue(false)
	}
	if not {
		return notCall([]sql.Value{r})
	}
	return r, nil
}

func evalScalarSelect[K any](ctx context.Context, st store.Store[K], fctx *filterContext,
	e *ast.ScalarSelect) (sql.Value, error) {

	rows, err := selectRows(ctx, st, e.Select, fctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if len(rows.Columns()) != 1 {
		return nil, fmt.Errorf("engine: want one column for scalar subquery got %d",
			len(rows.Columns()))
	}

	row, err := rows.Next(ctx)
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	v := row[0]

	_, err = rows.Next(ctx)
	if err == nil {
		return nil, errors.New("engine: want one row for scalar subquery")
	} else if err != io.EOF {
		return nil, err
	}
	return v, nil
}

func wantNumber(v sql.Value) error {
	return fmt.Errorf("engine: want number got %s", sql.Format(v))
}

func wantInteger(v sql.Value) error {
	return fmt.Errorf("engine: want integer got %s", sql.Format(v))
}

var errDivideByZero = errors.New("engine: divide by zero")

func numFunc(a0, a1 sql.Value, ifn func(i0, i1 sql.Int64Value) sql.Value,
	ffn func(f0, f1 sql.Float64Value) sql.Value) (sql.Value, error) {

	switch a0 := a0.(type) {
	case sql.Int64Value:
		switch a1 := a1.(type) {
		case sql.Int64Value:
			return ifn(a0, a1), nil
		case sql.Float64Value:
			return ffn(sql.Float64Value(a0), a1), nil
		}
		return nil, wantNumber(a1)
	case sql.Float64Value:
		switch a1 := a1.(type) {
		case sql.Int64Value:
			return ffn(a0, sql.Float64Value(a1)), nil
		case sql.Float64Value:
			return ffn(a0, a1), nil
		}
		return nil, wantNumber(a1)
	}
	return nil, wantNumber(a0)
}

func intFunc(a0, a1 sql.Value, fn func(i0, i1 sql.Int64Value) sql.Value) (sql.Value, error) {
	if i0, ok := a0.(sql.Int64Value); ok {
		if i1, ok := a1.(sql.Int64Value); ok {
			return fn(i0, i1), nil
		}
		return nil, wantInteger(a1)
	}
	return nil, wantInteger(a0)
}

func shiftFunc(a0, a1 sql.Value, fn func(i0 sql.Int64Value, i1 uint64) sql.Value) (sql.Value,
	error) {

	i0, ok := a0.(sql.Int64Value)
	if !ok {
		return nil, wantInteger(a0)
	}
	i1, ok := a1.(sql.Int64Value)
	if !ok {
		return nil, wantInteger(a1)
	}
	if i1 < 0 {
		return nil, fmt.Errorf("engine: want non-negative integer got %s", sql.Format(a1))
	}
	return fn(i0, uint64(i1)), nil
}

func nullableBool(v sql.Value) (sql.BoolValue, bool, error) {
	if v == nil {
		return false, true, nil
	}
	b, ok := v.(sql.BoolValue)
	if !ok {
		return false, false, fmt.Errorf("engine: want boolean got %s", sql.Format(v))
	}
	return b, false, nil
}

func addCall(args []sql.Value) (sql.Value, error) {
	return numFunc(args[0], args[1],
		func(i0, i1 sql.Int64Value) sql.Value { return i0 + i1 },
		func(f0, f1 sql.Float64Value) sql.Value { return f0 + f1 })
}

// andCall is false if either argument is false, even when the other one is
// NULL; NULL otherwise unless both arguments are true.
func andCall(args []sql.Value) (sql.Value, error) {
	b0, null0, err := nullableBool(args[0])
	if err != nil {
		return nil, err
	}
	b1, null1, err := nullableBool(args[1])
	if err != nil {
		return nil, err
	}

	if (!null0 && !bool(b0)) || (!null1 && !bool(b1)) {
		return sql.BoolValue(false), nil
	}
	if null0 || null1 {
		return nil, nil
	}
	return sql.BoolValue(true), nil
}

func binaryAndCall(args []sql.Value) (sql.Value, error) {
	return intFunc(args[0], args[1],
		func(i0, i1 sql.Int64Value) sql.Value { return i0 & i1 })
}

func binaryOrCall(args []sql.Value) (sql.Value, error) {
	return intFunc(args[0], args[1],
		func(i0, i1 sql.Int64Value) sql.Value { return i0 | i1 })
}

func concatCall(args []sql.Value) (sql.Value, error) {
	var s string
	for _, a := range args {
		if a == nil {
			continue
		}
		switch v := a.(type) {
		case sql.StringValue:
			s += string(v)
		case sql.BytesValue:
			s += v.HexString()
		default:
			s += a.String()
		}
	}
	return sql.StringValue(s), nil
}

func divideCall(args []sql.Value) (sql.Value, error) {
	switch a0 := args[0].(type) {
	case sql.Int64Value:
		switch a1 := args[1].(type) {
		case sql.Int64Value:
			if a1 == 0 {
				return nil, errDivideByZero
			}
			return a0 / a1, nil
		case sql.Float64Value:
			if a1 == 0 {
				return nil, errDivideByZero
			}
			return sql.Float64Value(a0) / a1, nil
		}
		return nil, wantNumber(args[1])
	case sql.Float64Value:
		switch a1 := args[1].(type) {
		case sql.Int64Value:
			if a1 == 0 {
				return nil, errDivideByZero
			}
			return a0 / sql.Float64Value(a1), nil
		case sql.Float64Value:
			if a1 == 0 {
				return nil, errDivideByZero
			}
			return a0 / a1, nil
		}
		return nil, wantNumber(args[1])
	}
	return nil, wantNumber(args[0])
}

func equalCall(args []sql.Value) (sql.Value, error) {
	cmp, err := args[0].Compare(args[1])
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(cmp == 0), nil
}

func greaterEqualCall(args []sql.Value) (sql.Value, error) {
	cmp, err := args[0].Compare(args[1])
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(cmp >= 0), nil
}

func greaterThanCall(args []sql.Value) (sql.Value, error) {
	cmp, err := args[0].Compare(args[1])
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(cmp > 0), nil
}

func lessEqualCall(args []sql.Value) (sql.Value, error) {
	cmp, err := args[0].Compare(args[1])
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(cmp <= 0), nil
}

func lessThanCall(args []sql.Value) (sql.Value, error) {
	cmp, err := args[0].Compare(args[1])
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(cmp < 0), nil
}

func lShiftCall(args []sql.Value) (sql.Value, error) {
	return shiftFunc(args[0], args[1],
		func(i0 sql.Int64Value, i1 uint64) sql.Value { return i0 << i1 })
}

func moduloCall(args []sql.Value) (sql.Value, error) {
	if i1, ok := args[1].(sql.Int64Value); ok && i1 == 0 {
		return nil, errDivideByZero
	}
	return intFunc(args[0], args[1],
		func(i0, i1 sql.Int64Value) sql.Value { return i0 % i1 })
}

func multiplyCall(args []sql.Value) (sql.Value, error) {
	return numFunc(args[0], args[1],
		func(i0, i1 sql.Int64Value) sql.Value { return i0 * i1 },
		func(f0, f1 sql.Float64Value) sql.Value { return f0 * f1 })
}

func negateCall(args []sql.Value) (sql.Value, error) {
	switch a0 := args[0].(type) {
	case sql.Int64Value:
		return -a0, nil
	case sql.Float64Value:
		return -a0, nil
	}
	return nil, wantNumber(args[0])
}

func notEqualCall(args []sql.Value) (sql.Value, error) {
	cmp, err := args[0].Compare(args[1])
	if err != nil {
		return nil, err
	}
	return sql.BoolValue(cmp != 0), nil
}

// notCall preserves NULL: NOT NULL is NULL.
func notCall(args []sql.Value) (sql.Value, error) {
	b, null, err := nullableBool(args[0])
	if err != nil {
		return nil, err
	}
	if null {
		return nil, nil
	}
	return !b, nil
}

// orCall is true if either argument is true, even when the other one is
// NULL; NULL otherwise unless both arguments are false.
func orCall(args []sql.Value) (sql.Value, error) {
	b0, null0, err := nullableBool(args[0])
	if err != nil {
		return nil, err
	}
	b1, null1, err := nullableBool(args[1])
	if err != nil {
		return nil, err
	}

	if (!null0 && bool(b0)) || (!null1 && bool(b1)) {
		return sql.BoolValue(true), nil
	}
	if null0 || null1 {
		return nil, nil
	}
	return sql.BoolValue(false), nil
}

func rShiftCall(args []sql.Value) (sql.Value, error) {
	return shiftFunc(args[0], args[1],
		func(i0 sql.Int64Value, i1 uint64) sql.Value { return i0 >> i1 })
}

func subtractCall(args []sql.Value) (sql.Value, error) {
	return numFunc(args[0], args[1],
		func(i0, i1 sql.Int64Value) sql.Value { return i0 - i1 },
		func(f0, f1 sql.Float64Value) sql.Value { return f0 - f1 })
}

func absCall(args []sql.Value) (sql.Value, error) {
	switch a0 := args[0].(type) {
	case sql.Int64Value:
		if a0 < 0 {
			return -a0, nil
		}
		return a0, nil
	case sql.Float64Value:
		return sql.Float64Value(math.Abs(float64(a0))), nil
	}
	return nil, wantNumber(args[0])
}

func versionCall(args []sql.Value) (sql.Value, error) {
	return sql.StringValue(sql.Version()), nil
}
