package ast

import (
	"fmt"
	"strings"

	"github.com/kivisql/kivi/sql"
)

// Stmt is a parsed SQL statement.
type Stmt interface {
	fmt.Stringer
}

// TableName is a possibly qualified name; execution requires exactly one
// part, but the parser accepts dotted names so that the error is useful.
type TableName []sql.Identifier

func (tn TableName) String() string {
	parts := make([]string, 0, len(tn))
	for _, id := range tn {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ".")
}

type ColumnDef struct {
	Name    sql.Identifier
	Type    sql.ColumnType
	Default Expr // nil if no DEFAULT clause
}

type CreateTable struct {
	Table   TableName
	Columns []ColumnDef
}

func (stmt *CreateTable) String() string {
	s := fmt.Sprintf("CREATE TABLE %s (", stmt.Table)
	for i, cd := range stmt.Columns {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %s", cd.Name, cd.Type.DataType())
		if cd.Type.NotNull {
			s += " NOT NULL"
		}
		if cd.Default != nil {
			s += fmt.Sprintf(" DEFAULT %s", cd.Default)
		}
	}
	return s + ")"
}

type InsertValues struct {
	Table   TableName
	Columns []sql.Identifier
	Rows    [][]Expr
}

func (stmt *InsertValues) String() string {
	s := fmt.Sprintf("INSERT INTO %s ", stmt.Table)
	if stmt.Columns != nil {
		s += "("
		for i, col := range stmt.Columns {
			if i > 0 {
				s += ", "
			}
			s += col.String()
		}
		s += ") "
	}

	s += "VALUES"
	for i, r := range stmt.Rows {
		if i > 0 {
			s += ","
		}
		s += " ("
		for j, v := range r {
			if j > 0 {
				s += ", "
			}
			if v == nil {
				s += "DEFAULT"
			} else {
				s += v.String()
			}
		}
		s += ")"
	}
	return s
}

type SelectResult struct {
	Expr  Expr
	Alias sql.Identifier // 0 if no alias
}

func (sr SelectResult) String() string {
	if sr.Alias != 0 {
		return fmt.Sprintf("%s AS %s", sr.Expr, sr.Alias)
	}
	return sr.Expr.String()
}

type Select struct {
	Results []SelectResult // nil means SELECT *
	Table   TableName
	Alias   sql.Identifier // 0 if no alias
	Where   Expr
	Limit   Expr
	Offset  Expr
}

func (stmt *Select) String() string {
	s := "SELECT "
	if stmt.Results == nil {
		s += "*"
	} else {
		for i, sr := range stmt.Results {
			if i > 0 {
				s += ", "
			}
			s += sr.String()
		}
	}
	if len(stmt.Table) > 0 {
		s += fmt.Sprintf(" FROM %s", stmt.Table)
		if stmt.Alias != 0 {
			s += fmt.Sprintf(" AS %s", stmt.Alias)
		}
	}
	if stmt.Where != nil {
		s += fmt.Sprintf(" WHERE %s", stmt.Where)
	}
	if stmt.Limit != nil {
		s += fmt.Sprintf(" LIMIT %s", stmt.Limit)
	}
	if stmt.Offset != nil {
		s += fmt.Sprintf(" OFFSET %s", stmt.Offset)
	}
	return s
}

type ColumnUpdate struct {
	Column sql.Identifier
	Expr   Expr
}

type Update struct {
	Table         TableName
	ColumnUpdates []ColumnUpdate
	Where         Expr
}

func (stmt *Update) String() string {
	s := fmt.Sprintf("UPDATE %s SET ", stmt.Table)
	for i, cu := range stmt.ColumnUpdates {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s = %s", cu.Column, cu.Expr)
	}
	if stmt.Where != nil {
		s += fmt.Sprintf(" WHERE %s", stmt.Where)
	}
	return s
}

type Delete struct {
	Table TableName
	Where Expr
}

func (stmt *Delete) String() string {
	s := fmt.Sprintf("DELETE FROM %s", stmt.Table)
	if stmt.Where != nil {
		s += fmt.Sprintf(" WHERE %s", stmt.Where)
	}
	return s
}

type Drop struct {
	Type     sql.Identifier // TABLE or INDEX
	IfExists bool
	Names    []TableName
}

func (stmt *Drop) String() string {
	s := fmt.Sprintf("DROP %s ", stmt.Type)
	if stmt.IfExists {
		s += "IF EXISTS "
	}
	for i, nm := range stmt.Names {
		if i > 0 {
			s += ", "
		}
		s += nm.String()
	}
	return s
}

type Begin struct{}

func (stmt *Begin) String() string {
	return "BEGIN"
}

type Commit struct{}

func (stmt *Commit) String() string {
	return "COMMIT"
}

type Rollback struct{}

func (stmt *Rollback) String() string {
	return "ROLLBACK"
}
