package parser

import (
	"fmt"
	"io"
	"runtime"

	"github.com/kivisql/kivi/ast"
	"github.com/kivisql/kivi/parser/scanner"
	"github.com/kivisql/kivi/parser/token"
	"github.com/kivisql/kivi/sql"
)

type Parser interface {
	Parse() (ast.Stmt, error)
	ParseExpr() (ast.Expr, error)
}

type parser struct {
	scanner scanner.Scanner
	sctx    scanner.ScanCtx
	ahead   [2]scanner.ScanCtx
	nahead  int
}

func NewParser(rr io.RuneReader, fn string) Parser {
	var p parser
	p.scanner.Init(rr, fn)
	return &p
}

// Parse returns the next statement or io.EOF once the input is done. Empty
// statements are skipped.
func (p *parser) Parse() (stmt ast.Stmt, err error) {
	t := p.scan()
	for t == token.EndOfStatement {
		t = p.scan()
	}
	if t == token.EOF {
		return nil, io.EOF
	}
	p.unscan()

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
			stmt = nil
		}
	}()

	stmt = p.parseStmt()
	p.expectEndOfStatement()
	return
}

func (p *parser) ParseExpr() (e ast.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
			e = nil
		}
	}()

	e = p.parseExpr()
	p.expectEndOfStatement()
	return
}

func (p *parser) error(msg string) {
	panic(fmt.Errorf("parser: %s: %s", p.sctx.Position, msg))
}

func (p *parser) scan() rune {
	if p.nahead > 0 {
		p.sctx = p.ahead[0]
		p.ahead[0] = p.ahead[1]
		p.nahead -= 1
		return p.sctx.Token
	}

	p.scanner.Scan(&p.sctx)
	if p.sctx.Token == token.Error {
		p.error(p.sctx.Error.Error())
	}
	return p.sctx.Token
}

// unscan pushes the current token back; at most two tokens may be pushed
// back at once.
func (p *parser) unscan() {
	if p.nahead == len(p.ahead) {
		panic("parser: too many unscanned tokens")
	}
	p.ahead[1] = p.ahead[0]
	p.ahead[0] = p.sctx
	p.nahead += 1
}

func (p *parser) got() string {
	switch p.sctx.Token {
	case token.EOF:
		return "end of file"
	case token.EndOfStatement:
		return "end of statement"
	case token.Error:
		return fmt.Sprintf("error %s", p.sctx.Error)
	case token.Identifier:
		return fmt.Sprintf("identifier %s", p.sctx.Identifier)
	case token.Reserved:
		return fmt.Sprintf("reserved identifier %s", p.sctx.Identifier)
	case token.String:
		return fmt.Sprintf("string %q", p.sctx.String)
	case token.Integer:
		return fmt.Sprintf("integer %d", p.sctx.Integer)
	case token.Float:
		return fmt.Sprintf("float %f", p.sctx.Float)
	}

	return token.Format(p.sctx.Token)
}

func (p *parser) expectReserved(ids ...sql.Identifier) sql.Identifier {
	t := p.scan()
	if t == token.Reserved {
		for _, kw := range ids {
			if kw == p.sctx.Identifier {
				return kw
			}
		}
	}

	var msg string
	if len(ids) == 1 {
		msg = ids[0].String()
	} else {
		for i, kw := range ids {
			if i == len(ids)-1 {
				msg += ", or "
			} else if i > 0 {
				msg += ", "
			}
			msg += kw.String()
		}
	}

	p.error(fmt.Sprintf("expected keyword %s got %s", msg, p.got()))
	return 0
}

func (p *parser) optionalReserved(ids ...sql.Identifier) bool {
	t := p.scan()
	if t == token.Reserved {
		for _, kw := range ids {
			if kw == p.sctx.Identifier {
				return true
			}
		}
	}

	p.unscan()
	return false
}

func (p *parser) expectIdentifier(msg string) sql.Identifier {
	t := p.scan()
	if t != token.Identifier {
		p.error(fmt.Sprintf("%s got %s", msg, p.got()))
	}
	return p.sctx.Identifier
}

func (p *parser) expectTokens(tokens ...rune) rune {
	t := p.scan()
	for _, r := range tokens {
		if t == r {
			return r
		}
	}

	var msg string
	if len(tokens) == 1 {
		msg = token.Format(tokens[0])
	} else {
		for i, r := range tokens {
			if i == len(tokens)-1 {
				msg += ", or "
			} else if i > 0 {
				msg += ", "
			}
			msg += token.Format(r)
		}
	}

	p.error(fmt.Sprintf("expected %s got %s", msg, p.got()))
	return 0
}

func (p *parser) maybeToken(mr rune) bool {
	if p.scan() == mr {
		return true
	}
	p.unscan()
	return false
}

func (p *parser) expectInteger(min, max int64) int64 {
	if p.scan() != token.Integer || p.sctx.Integer < min || p.sctx.Integer > max {
		p.error(fmt.Sprintf("expected a number between %d and %d inclusive got %s", min, max,
			p.got()))
	}

	return p.sctx.Integer
}

func (p *parser) expectEndOfStatement() {
	t := p.scan()
	if t != token.EOF && t != token.EndOfStatement {
		p.error(fmt.Sprintf("expected the end of the statement got %s", p.got()))
	}
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.expectReserved(sql.BEGIN, sql.COMMIT, sql.CREATE, sql.DELETE, sql.DROP, sql.INSERT,
		sql.ROLLBACK, sql.SELECT, sql.UPDATE) {

	case sql.BEGIN:
		return &ast.Begin{}
	case sql.COMMIT:
		return &ast.Commit{}
	case sql.CREATE:
		p.expectReserved(sql.TABLE)
		return p.parseCreateTable()
	case sql.DELETE:
		p.expectReserved(sql.FROM)
		return p.parseDelete()
	case sql.DROP:
		return p.parseDrop()
	case sql.INSERT:
		p.expectReserved(sql.INTO)
		return p.parseInsert()
	case sql.ROLLBACK:
		return &ast.Rollback{}
	case sql.SELECT:
		return p.parseSelect()
	case sql.UPDATE:
		return p.parseUpdate()
	}

	return nil
}

func (p *parser) parseTableName() ast.TableName {
	tn := ast.TableName{p.expectIdentifier("expected a table name")}
	for p.maybeToken(token.Dot) {
		tn = append(tn, p.expectIdentifier("expected a table name"))
	}
	return tn
}

var columnTypes = map[sql.Identifier]sql.ColumnType{
	sql.BOOL:     {Type: sql.BooleanType, Size: 1},
	sql.BOOLEAN:  {Type: sql.BooleanType, Size: 1},
	sql.BYTEA:    {Type: sql.BytesType, Size: sql.MaxColumnSize},
	sql.BLOB:     {Type: sql.BytesType, Size: sql.MaxColumnSize},
	sql.CHAR:     {Type: sql.StringType, Fixed: true, Size: 1},
	sql.VARCHAR:  {Type: sql.StringType},
	sql.TEXT:     {Type: sql.StringType, Size: sql.MaxColumnSize},
	sql.DOUBLE:   {Type: sql.FloatType, Size: 8},
	sql.FLOAT:    {Type: sql.FloatType, Size: 8},
	sql.SMALLINT: {Type: sql.IntegerType, Size: 2},
	sql.INT:      {Type: sql.IntegerType, Size: 4},
	sql.INTEGER:  {Type: sql.IntegerType, Size: 4},
	sql.BIGINT:   {Type: sql.IntegerType, Size: 8},
}

func (p *parser) parseCreateTable() ast.Stmt {
	/*
		CREATE TABLE table (<column> [, ...])
		<column> = name <data type> [DEFAULT <expr>] [NOT NULL]
		<data type> =
			  BOOL | BOOLEAN
			| BYTEA | BLOB
			| CHAR [(length)] | VARCHAR (length) | TEXT
			| DOUBLE | FLOAT
			| SMALLINT | INT | INTEGER | BIGINT
	*/

	var stmt ast.CreateTable
	stmt.Table = p.parseTableName()
	p.expectTokens(token.LParen)

	for {
		nam := p.expectIdentifier("expected a column name")
		for _, cd := range stmt.Columns {
			if cd.Name == nam {
				p.error(fmt.Sprintf("duplicate column name %s", nam))
			}
		}

		typ := p.expectIdentifier("expected a data type")
		ct, found := columnTypes[typ]
		if !found {
			p.error(fmt.Sprintf("expected a data type got %s", typ))
		}

		cd := ast.ColumnDef{Name: nam, Type: ct}
		if typ == sql.VARCHAR {
			p.expectTokens(token.LParen)
			cd.Type.Size = uint32(p.expectInteger(0, sql.MaxColumnSize))
			p.expectTokens(token.RParen)
		} else if typ == sql.CHAR && p.maybeToken(token.LParen) {
			cd.Type.Size = uint32(p.expectInteger(0, sql.MaxColumnSize))
			p.expectTokens(token.RParen)
		}

		for {
			if p.optionalReserved(sql.DEFAULT) {
				if cd.Default != nil {
					p.error("DEFAULT specified more than once per column")
				}
				cd.Default = p.parseExpr()
			} else if p.optionalReserved(sql.NOT) {
				p.expectReserved(sql.NULL)
				if cd.Type.NotNull {
					p.error("NOT NULL specified more than once per column")
				}
				cd.Type.NotNull = true
			} else {
				break
			}
		}

		stmt.Columns = append(stmt.Columns, cd)

		if p.expectTokens(token.Comma, token.RParen) == token.RParen {
			break
		}
	}

	return &stmt
}

func (p *parser) parseDelete() ast.Stmt {
	// DELETE FROM table [WHERE <expr>]
	var stmt ast.Delete
	stmt.Table = p.parseTableName()
	if p.optionalReserved(sql.WHERE) {
		stmt.Where = p.parseExpr()
	}
	return &stmt
}

func (p *parser) parseDrop() ast.Stmt {
	// DROP TABLE | INDEX [IF EXISTS] name [, ...]
	var stmt ast.Drop
	stmt.Type = p.expectReserved(sql.TABLE, sql.INDEX)

	if p.optionalReserved(sql.IF) {
		p.expectReserved(sql.EXISTS)
		stmt.IfExists = true
	}

	for {
		stmt.Names = append(stmt.Names, p.parseTableName())
		if !p.maybeToken(token.Comma) {
			break
		}
	}
	return &stmt
}

func (p *parser) parseInsert() ast.Stmt {
	// INSERT INTO table [(column [, ...])] VALUES (<expr> | DEFAULT [, ...]) [, ...]
	var stmt ast.InsertValues
	stmt.Table = p.parseTableName()

	if p.maybeToken(token.LParen) {
		for {
			nam := p.expectIdentifier("expected a column name")
			for _, col := range stmt.Columns {
				if col == nam {
					p.error(fmt.Sprintf("duplicate column name %s", nam))
				}
			}
			stmt.Columns = append(stmt.Columns, nam)
			if p.expectTokens(token.Comma, token.RParen) == token.RParen {
				break
			}
		}
	}

	p.expectReserved(sql.VALUES)

	for {
		var row []ast.Expr

		p.expectTokens(token.LParen)
		for {
			if p.optionalReserved(sql.DEFAULT) {
				row = append(row, nil)
			} else {
				row = append(row, p.parseExpr())
			}
			if p.expectTokens(token.Comma, token.RParen) == token.RParen {
				break
			}
		}

		stmt.Rows = append(stmt.Rows, row)

		if !p.maybeToken(token.Comma) {
			break
		}
	}

	return &stmt
}

func (p *parser) parseSelect() *ast.Select {
	/*
		SELECT * FROM table [[AS] alias]
			[WHERE <expr>] [LIMIT <expr>] [OFFSET <expr>]
		SELECT <result> [, ...] [FROM table [[AS] alias]]
			[WHERE <expr>] [LIMIT <expr>] [OFFSET <expr>]
		<result> = <expr> [[AS] alias]
	*/

	var stmt ast.Select
	if p.maybeToken(token.Star) {
		p.expectReserved(sql.FROM)
		stmt.Table = p.parseTableName()
		stmt.Alias = p.parseOptionalAlias()
	} else {
		for {
			var sr ast.SelectResult
			sr.Expr = p.parseExpr()
			sr.Alias = p.parseOptionalAlias()
			stmt.Results = append(stmt.Results, sr)

			if !p.maybeToken(token.Comma) {
				break
			}
		}

		if p.optionalReserved(sql.FROM) {
			stmt.Table = p.parseTableName()
			stmt.Alias = p.parseOptionalAlias()
		}
	}

	if p.optionalReserved(sql.WHERE) {
		stmt.Where = p.parseExpr()
	}
	if p.optionalReserved(sql.LIMIT) {
		stmt.Limit = p.parseExpr()
	}
	if p.optionalReserved(sql.OFFSET) {
		stmt.Offset = p.parseExpr()
	}

	return &stmt
}

func (p *parser) parseOptionalAlias() sql.Identifier {
	if p.optionalReserved(sql.AS) {
		return p.expectIdentifier("expected an alias")
	}
	if p.scan() == token.Identifier {
		return p.sctx.Identifier
	}
	p.unscan()
	return 0
}

func (p *parser) parseUpdate() ast.Stmt {
	// UPDATE table SET column = <expr> [, ...] [WHERE <expr>]
	var stmt ast.Update
	stmt.Table = p.parseTableName()
	p.expectReserved(sql.SET)

	for {
		var cu ast.ColumnUpdate
		cu.Column = p.expectIdentifier("expected a column name")
		p.expectTokens(token.Equal)
		cu.Expr = p.parseExpr()
		stmt.ColumnUpdates = append(stmt.ColumnUpdates, cu)
		if !p.maybeToken(token.Comma) {
			break
		}
	}

	if p.optionalReserved(sql.WHERE) {
		stmt.Where = p.parseExpr()
	}
	return &stmt
}

/*
<expr>:
      <literal>
    | - <expr>
    | NOT <expr>
    | ( <expr> )
    | ( <select> )
    | <expr> <binary op> <expr>
    | <expr> IS [NOT] NULL
    | <expr> [NOT] BETWEEN <expr> AND <expr>
    | <expr> [NOT] IN ( <expr> [, ...] | <select> )
    | <ref> [. <ref> ...]
    | <func> ( [<expr> [, ...]] )
<binary op>:
      + - * / %
    | = == != <> < <= > >=
    | << >> & |
    | AND | OR | ||
*/

var binaryOps = map[rune]ast.Op{
	token.Ampersand:      ast.BinaryAndOp,
	token.Bar:            ast.BinaryOrOp,
	token.BarBar:         ast.ConcatOp,
	token.Equal:          ast.EqualOp,
	token.EqualEqual:     ast.EqualOp,
	token.BangEqual:      ast.NotEqualOp,
	token.Greater:        ast.GreaterThanOp,
	token.GreaterEqual:   ast.GreaterEqualOp,
	token.GreaterGreater: ast.RShiftOp,
	token.Less:           ast.LessThanOp,
	token.LessEqual:      ast.LessEqualOp,
	token.LessGreater:    ast.NotEqualOp,
	token.LessLess:       ast.LShiftOp,
	token.Minus:          ast.SubtractOp,
	token.Percent:        ast.ModuloOp,
	token.Plus:           ast.AddOp,
	token.Slash:          ast.DivideOp,
	token.Star:           ast.MultiplyOp,
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseSubExpr(false)
}

// parseSubExpr parses an expression; with noAnd set it stops at a bare AND,
// which separates the bounds of a BETWEEN.
func (p *parser) parseSubExpr(noAnd bool) ast.Expr {
	var e ast.Expr
	r := p.scan()
	if r == token.Reserved {
		if p.sctx.Identifier == sql.TRUE {
			e = &ast.Literal{Value: sql.BoolValue(true)}
		} else if p.sctx.Identifier == sql.FALSE {
			e = &ast.Literal{Value: sql.BoolValue(false)}
		} else if p.sctx.Identifier == sql.NULL {
			e = &ast.Literal{}
		} else if p.sctx.Identifier == sql.NOT {
			e = p.parseUnaryExpr(ast.NotOp, noAnd)
		} else {
			p.error(fmt.Sprintf("unexpected identifier %s", p.sctx.Identifier))
		}
	} else if r == token.String {
		e = &ast.Literal{Value: sql.StringValue(p.sctx.String)}
	} else if r == token.Integer {
		e = &ast.Literal{Value: sql.Int64Value(p.sctx.Integer)}
	} else if r == token.Float {
		e = &ast.Literal{Value: sql.Float64Value(p.sctx.Float)}
	} else if r == token.Identifier {
		// The lookahead below overwrites the scan context.
		id := p.sctx.Identifier
		if p.maybeToken(token.LParen) {
			// <func> ( [<expr> [, ...]] )
			c := &ast.Call{Name: id}
			if !p.maybeToken(token.RParen) {
				for {
					c.Args = append(c.Args, p.parseExpr())
					if p.maybeToken(token.RParen) {
						break
					}
					p.expectTokens(token.Comma)
				}
			}
			e = c
		} else {
			// <ref> [. <ref> ...]
			ref := ast.Ref{id}
			for p.maybeToken(token.Dot) {
				ref = append(ref, p.expectIdentifier("expected a reference"))
			}
			e = ref
		}
	} else if r == token.Minus {
		// - <expr>
		e = p.parseUnaryExpr(ast.NegateOp, noAnd)
	} else if r == token.LParen {
		if p.optionalReserved(sql.SELECT) {
			// ( <select> )
			e = &ast.ScalarSelect{Select: p.parseSelect()}
		} else {
			// ( <expr> )
			e = &ast.Unary{Op: ast.NoOp, Expr: p.parseExpr()}
		}
		if p.scan() != token.RParen {
			p.error(fmt.Sprintf("expected closing parenthesis got %s", p.got()))
		}
	} else {
		p.error(fmt.Sprintf("expected an expression got %s", p.got()))
	}

	for {
		if p.optionalReserved(sql.IS) {
			// <expr> IS [NOT] NULL
			not := p.optionalReserved(sql.NOT)
			p.expectReserved(sql.NULL)
			e = &ast.IsNull{Expr: e, Not: not}
		} else if p.optionalReserved(sql.BETWEEN) {
			e = p.parseBetween(e, false)
		} else if p.optionalReserved(sql.IN) {
			e = p.parseIn(e, false)
		} else if p.optionalReserved(sql.NOT) {
			notCtx := p.sctx
			if p.optionalReserved(sql.BETWEEN) {
				e = p.parseBetween(e, true)
			} else if p.optionalReserved(sql.IN) {
				e = p.parseIn(e, true)
			} else {
				// The NOT belongs to whatever follows the expression,
				// e.g. NOT NULL after a column DEFAULT.
				p.sctx = notCtx
				p.unscan()
				break
			}
		} else {
			break
		}
	}

	var op ast.Op
	r = p.scan()
	op, ok := binaryOps[r]
	if !ok {
		if r == token.Reserved && p.sctx.Identifier == sql.AND && !noAnd {
			op = ast.AndOp
		} else if r == token.Reserved && p.sctx.Identifier == sql.OR {
			op = ast.OrOp
		} else {
			p.unscan()
			return e
		}
	}

	e2 := p.parseSubExpr(noAnd)
	if b2, ok := e2.(*ast.Binary); ok && b2.Op.Precedence() <= op.Precedence() {
		// Reassociate on equal precedence too, so chains like 10 - 5 - 2
		// group to the left.
		b := b2
		for {
			if bl, ok := b.Left.(*ast.Binary); ok && bl.Op.Precedence() <= op.Precedence() {
				b = bl
			} else {
				break
			}
		}
		b.Left = &ast.Binary{Op: op, Left: e, Right: b.Left}
		e = b2
	} else {
		e = &ast.Binary{Op: op, Left: e, Right: e2}
	}
	return e
}

func (p *parser) parseUnaryExpr(op ast.Op, noAnd bool) ast.Expr {
	e := p.parseSubExpr(noAnd)
	if b, ok := e.(*ast.Binary); ok && b.Op.Precedence() < op.Precedence() {
		for {
			if bl, ok := b.Left.(*ast.Binary); ok && bl.Op.Precedence() < op.Precedence() {
				b = bl
			} else {
				break
			}
		}

		b.Left = &ast.Unary{Op: op, Expr: b.Left}
		return e
	}

	return &ast.Unary{Op: op, Expr: e}
}

// parseBetween parses the bounds of <expr> [NOT] BETWEEN; the AND between the
// bounds terminates each bound expression.
func (p *parser) parseBetween(e ast.Expr, not bool) ast.Expr {
	low := p.parseSubExpr(true)
	p.expectReserved(sql.AND)
	high := p.parseSubExpr(true)
	return &ast.Between{Expr: e, Not: not, Low: low, High: high}
}

func (p *parser) parseIn(e ast.Expr, not bool) ast.Expr {
	p.expectTokens(token.LParen)

	if p.optionalReserved(sql.SELECT) {
		sel := p.parseSelect()
		p.expectTokens(token.RParen)
		return &ast.InSelect{Expr: e, Not: not, Select: sel}
	}

	var list []ast.Expr
	for {
		list = append(list, p.parseExpr())
		if p.expectTokens(token.Comma, token.RParen) == token.RParen {
			break
		}
	}
	return &ast.InList{Expr: e, Not: not, List: list}
}
