package scanner_test

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/kivisql/kivi/parser/scanner"
	"github.com/kivisql/kivi/parser/token"
	"github.com/kivisql/kivi/sql"
)

func TestScan(t *testing.T) {
	cases := []struct {
		s string
		r rune
	}{
		{"", token.EOF},
		{";", token.EndOfStatement},
		{"abc", token.Identifier},
		{"create", token.Reserved},
		{"'create'", token.String},
		{"`create`", token.Identifier},
		{"[create]", token.Identifier},
		{"\"create\"", token.Identifier},
		{"12345", token.Integer},
		{"1234.5678", token.Float},
		{", ", token.Comma},
		{".id", token.Dot},
		{"(123", token.LParen},
		{")+", token.RParen},
		{"-abc", token.Minus},
		{"+abc", token.Plus},
		{"*(abc)", token.Star},
		{"/12", token.Slash},
		{"%", token.Percent},
		{"=123", token.Equal},
		{"<123", token.Less},
		{">123", token.Greater},
		{"&123", token.Ampersand},
		{"|123", token.Bar},
		{"||", token.BarBar},
		{"<<", token.LessLess},
		{"<=", token.LessEqual},
		{"<>", token.LessGreater},
		{">>", token.GreaterGreater},
		{">=", token.GreaterEqual},
		{"==", token.EqualEqual},
		{"!=", token.BangEqual},
		{"!*", token.Error},
		{"**", token.Error},
		{">%", token.Error},
		{">-123", token.Greater},
		{"=>", token.Error},
		{"-- comment\nabc", token.Identifier},
		{"/* comment */ 123", token.Integer},
	}

	for i, c := range cases {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("cases[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != c.r {
			t.Errorf("Scan(%q) got %d want %d", c.s, sctx.Token, c.r)
		}
	}

	stringCases := []struct {
		s   string
		ret string
	}{
		{"'abc'", "abc"},
		{"'abc' 123", "abc"},
		{"'abc' 'def'", "abc"},
		{"'abc'\n'def'", "abcdef"},
		{"'abc'\r'def'", "abcdef"},
		{"'abc'\n 'def'", "abcdef"},
		{"'abc' \r\n  \r  \n 'def'", "abcdef"},
		{"'abc' \r\n  \r  \n 123", "abc"},
		{"'abc' \r\n  \r  \n", "abc"},
		{"'abc''def' 123", "abc'def"},
		{"e'abc'\n 'def'", "abcdef"},
		{"E'abc'\n 'def'", "abcdef"},
		{`e'\000abc'`, "\000abc"},
		{`e'\000\141bc'`, "\000abc"},
		{`e'\141\x62c\U00000064e'`, "abcde"},
	}

	for i, c := range stringCases {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("strings[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != token.String {
			t.Errorf("Scan(%q) got %d want String", c.s, sctx.Token)
		}
		if sctx.String != c.ret {
			t.Errorf("Scan(%q).String got %s want %s", c.s, sctx.String, c.ret)
		}
	}

	identifierCases := []struct {
		s   string
		ret sql.Identifier
	}{
		{"abc", sql.ID("abc")},
		{"ABC", sql.ID("abc")},
		{"\"ABC\"", sql.QuotedID("ABC")},
		{"`AbC`", sql.QuotedID("AbC")},
		{"[abC]", sql.QuotedID("abC")},
		{"create", sql.CREATE},
		{"int", sql.INT},
	}

	for i, c := range identifierCases {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("identifiers[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != token.Identifier && sctx.Token != token.Reserved {
			t.Errorf("Scan(%q) got %d want Identifier or Reserved", c.s, sctx.Token)
		}
		if sctx.Identifier != c.ret {
			t.Errorf("Scan(%q).Identifier got %s want %s", c.s, sctx.Identifier, c.ret)
		}
	}

	numberCases := []struct {
		s   string
		r   rune
		i   int64
		f   float64
		fin rune
	}{
		{"123", token.Integer, 123, 0, token.EOF},
		{"123 456", token.Integer, 123, 0, token.Integer},
		{"123.456", token.Float, 0, 123.456, token.EOF},
		{"0.1", token.Float, 0, 0.1, token.EOF},
	}

	for i, c := range numberCases {
		var s Scanner
		s.Init(strings.NewReader(c.s), fmt.Sprintf("numbers[%d]", i))
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != c.r {
			t.Errorf("Scan(%q) got %d want %d", c.s, sctx.Token, c.r)
		} else if c.r == token.Integer && sctx.Integer != c.i {
			t.Errorf("Scan(%q).Integer got %d want %d", c.s, sctx.Integer, c.i)
		} else if c.r == token.Float && sctx.Float != c.f {
			t.Errorf("Scan(%q).Float got %f want %f", c.s, sctx.Float, c.f)
		}

		s.Scan(&sctx)
		if sctx.Token != c.fin {
			t.Errorf("Scan(%q) got %d want %d", c.s, sctx.Token, c.fin)
		}
	}

	comments := `
create -- reserved
"create" /* quoted
identifier */ 'create'
abcd -- identifier
`
	expected := []struct {
		ret rune
		id  sql.Identifier
		s   string
	}{
		{ret: token.Reserved, id: sql.CREATE},
		{ret: token.Identifier, s: "create"},
		{ret: token.String, s: "create"},
		{ret: token.Identifier, s: "abcd"},
		{ret: token.EOF},
	}

	var s Scanner
	s.Init(strings.NewReader(comments), "comments")
	for i, e := range expected {
		var sctx ScanCtx
		s.Scan(&sctx)
		if sctx.Token != e.ret {
			t.Errorf("Scan(%q)[%d] got %d want %d", comments, i, sctx.Token, e.ret)
		}
		switch e.ret {
		case token.Identifier:
			if sctx.Identifier != sql.QuotedID(e.s) {
				t.Errorf("%d Scan(%q) != sql.QuotedID(%q)", i, comments, e.s)
			}
		case token.Reserved:
			if sctx.Identifier != e.id {
				t.Errorf("%d Scan(%q).Identifier != %d", i, comments, e.id)
			}
		case token.String:
			if sctx.String != e.s {
				t.Errorf("%d Scan(%q).String != %q", i, comments, e.s)
			}
		}
	}
}
