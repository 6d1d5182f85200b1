package ast

import (
	"fmt"
	"strings"

	"github.com/kivisql/kivi/sql"
)

type Op int

const (
	AddOp Op = iota
	AndOp
	BinaryAndOp
	BinaryOrOp
	ConcatOp
	DivideOp
	EqualOp
	GreaterEqualOp
	GreaterThanOp
	LessEqualOp
	LessThanOp
	LShiftOp
	ModuloOp
	MultiplyOp
	NegateOp
	NotEqualOp
	NotOp
	NoOp
	OrOp
	RShiftOp
	SubtractOp
)

var ops = [...]struct {
	name       string
	precedence int
}{
	AddOp:          {"+", 7},
	AndOp:          {"AND", 2},
	BinaryAndOp:    {"&", 6},
	BinaryOrOp:     {"|", 6},
	ConcatOp:       {"||", 10},
	DivideOp:       {"/", 8},
	EqualOp:        {"==", 4},
	GreaterEqualOp: {">=", 5},
	GreaterThanOp:  {">", 5},
	LessEqualOp:    {"<=", 5},
	LessThanOp:     {"<", 5},
	LShiftOp:       {"<<", 6},
	ModuloOp:       {"%", 8},
	MultiplyOp:     {"*", 8},
	NegateOp:       {"-", 9},
	NotEqualOp:     {"!=", 4},
	NotOp:          {"NOT", 3},
	NoOp:           {"", 11},
	OrOp:           {"OR", 1},
	RShiftOp:       {">>", 6},
	SubtractOp:     {"-", 7},
}

func (op Op) Precedence() int {
	return ops[op].precedence
}

func (op Op) String() string {
	return ops[op].name
}

type Expr interface {
	fmt.Stringer
}

type Literal struct {
	Value sql.Value
}

func (l *Literal) String() string {
	return sql.Format(l.Value)
}

// Ref is a column reference, optionally qualified by a table name.
type Ref []sql.Identifier

func (r Ref) String() string {
	parts := make([]string, 0, len(r))
	for _, id := range r {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ".")
}

type Unary struct {
	Op   Op
	Expr Expr
}

func (u *Unary) String() string {
	if u.Op == NoOp {
		return fmt.Sprintf("(%s)", u.Expr)
	}
	return fmt.Sprintf("(%s %s)", u.Op, u.Expr)
}

type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

type Call struct {
	Name sql.Identifier
	Args []Expr
}

func (c *Call) String() string {
	s := fmt.Sprintf("%s(", c.Name)
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

type IsNull struct {
	Expr Expr
	Not  bool
}

func (in *IsNull) String() string {
	if in.Not {
		return fmt.Sprintf("(%s IS NOT NULL)", in.Expr)
	}
	return fmt.Sprintf("(%s IS NULL)", in.Expr)
}

type Between struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (b *Between) String() string {
	if b.Not {
		return fmt.Sprintf("(%s NOT BETWEEN %s AND %s)", b.Expr, b.Low, b.High)
	}
	return fmt.Sprintf("(%s BETWEEN %s AND %s)", b.Expr, b.Low, b.High)
}

type InList struct {
	Expr Expr
	Not  bool
	List []Expr
}

func (il *InList) String() string {
	var s string
	if il.Not {
		s = fmt.Sprintf("(%s NOT IN (", il.Expr)
	} else {
		s = fmt.Sprintf("(%s IN (", il.Expr)
	}
	for i, e := range il.List {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "))"
}

type InSelect struct {
	Expr   Expr
	Not    bool
	Select *Select
}

func (is *InSelect) String() string {
	if is.Not {
		return fmt.Sprintf("(%s NOT IN (%s))", is.Expr, is.Select)
	}
	return fmt.Sprintf("(%s IN (%s))", is.Expr, is.Select)
}

type ScalarSelect struct {
	Select *Select
}

func (ss *ScalarSelect) String() string {
	return fmt.Sprintf("(%s)", ss.Select)
}
