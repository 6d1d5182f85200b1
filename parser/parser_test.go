package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kivisql/kivi/parser"
)

func TestParseFailed(t *testing.T) {
	failed := []string{
		"create temp table t (c int)",
		"create index i on t (c)",
		"create table (c int)",
		"create table t",
		"create table t ()",
		"create table t (c)",
		"create table t (c notatype)",
		"create table t (c int, c bool)",
		"create table t (c varchar)",
		"create table t (c int not null not null)",
		"create table t (c int default 1 default 2)",
		"create table t (c int,)",
		"delete t",
		"delete from t where",
		"drop t",
		"drop view v",
		"drop table",
		"drop table if t",
		"insert t values (1)",
		"insert into t",
		"insert into t values",
		"insert into t values (1",
		"insert into t (c, c) values (1, 2)",
		"insert into t (c values (1)",
		"select",
		"select * from",
		"select c, from t",
		"select * from t where",
		"select * from t limit",
		"update t",
		"update t set",
		"update t set c",
		"update t set c = ",
		"update t set where c = 1",
		"begin transaction",
		"vacuum t",
	}

	for i, f := range failed {
		p := parser.NewParser(strings.NewReader(f), fmt.Sprintf("failed[%d]", i))
		stmt, err := p.Parse()
		if stmt != nil || err == nil {
			t.Errorf("Parse(%q) did not fail", f)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		s string
		r string
	}{
		{"begin", "BEGIN"},
		{"BEGIN;", "BEGIN"},
		{"commit", "COMMIT"},
		{"rollback", "ROLLBACK"},
		{"create table t (c int)", "CREATE TABLE t (c INT)"},
		{"create table t (c integer not null)", "CREATE TABLE t (c INT NOT NULL)"},
		{"create table t (c smallint, d bigint)", "CREATE TABLE t (c INT, d INT)"},
		{"create table t (b bool, b2 boolean)", "CREATE TABLE t (b BOOL, b2 BOOL)"},
		{"create table t (f float, d double)", "CREATE TABLE t (f DOUBLE, d DOUBLE)"},
		{"create table t (s text, v varchar(16), c char(3))",
			"CREATE TABLE t (s TEXT, v VARCHAR(16), c CHAR(3))"},
		{"create table t (b bytea, b2 blob)", "CREATE TABLE t (b BYTEA, b2 BYTEA)"},
		{"create table t (c int default 0 not null)",
			"CREATE TABLE t (c INT NOT NULL DEFAULT 0)"},
		{"create table t (c int default 1 + 2)", "CREATE TABLE t (c INT DEFAULT (1 + 2))"},
		{"delete from t", "DELETE FROM t"},
		{"delete from t where c = 1", "DELETE FROM t WHERE (c == 1)"},
		{"drop table t", "DROP TABLE t"},
		{"drop table t1, t2", "DROP TABLE t1, t2"},
		{"drop table if exists t", "DROP TABLE IF EXISTS t"},
		{"drop index i", "DROP INDEX i"},
		{"insert into t values (1)", "INSERT INTO t VALUES (1)"},
		{"insert into t values (1, 'two', 3.5, true, null)",
			"INSERT INTO t VALUES (1, 'two', 3.5, true, NULL)"},
		{"insert into t (c1, c2) values (1, 2)", "INSERT INTO t (c1, c2) VALUES (1, 2)"},
		{"insert into t values (1, default)", "INSERT INTO t VALUES (1, DEFAULT)"},
		{"insert into t values (1, 2), (3, 4)", "INSERT INTO t VALUES (1, 2), (3, 4)"},
		{"insert into t values (-1)", "INSERT INTO t VALUES ((- 1))"},
		{"select * from t", "SELECT * FROM t"},
		{"select c from t", "SELECT c FROM t"},
		{"select c1, c2 from t", "SELECT c1, c2 FROM t"},
		{"select c as x from t", "SELECT c AS x FROM t"},
		{"select c x from t", "SELECT c AS x FROM t"},
		{"select c + 1 from t", "SELECT (c + 1) FROM t"},
		{"select t.c from t", "SELECT t.c FROM t"},
		{"select * from t as a", "SELECT * FROM t AS a"},
		{"select * from t a", "SELECT * FROM t AS a"},
		{"select * from t where c = 1", "SELECT * FROM t WHERE (c == 1)"},
		{"select * from t limit 10", "SELECT * FROM t LIMIT 10"},
		{"select * from t limit 10 offset 5", "SELECT * FROM t LIMIT 10 OFFSET 5"},
		{"select * from t where c is null", "SELECT * FROM t WHERE (c IS NULL)"},
		{"select * from t where c is not null", "SELECT * FROM t WHERE (c IS NOT NULL)"},
		{"select * from t where c between 1 and 10",
			"SELECT * FROM t WHERE (c BETWEEN 1 AND 10)"},
		{"select * from t where c not between 1 and 10",
			"SELECT * FROM t WHERE (c NOT BETWEEN 1 AND 10)"},
		{"select * from t where c between 1 and 10 and d = 2",
			"SELECT * FROM t WHERE ((c BETWEEN 1 AND 10) AND (d == 2))"},
		{"select * from t where c in (1, 2, 3)", "SELECT * FROM t WHERE (c IN (1, 2, 3))"},
		{"select * from t where c not in (1, 2)", "SELECT * FROM t WHERE (c NOT IN (1, 2))"},
		{"select * from t where c in (select c from u)",
			"SELECT * FROM t WHERE (c IN (SELECT c FROM u))"},
		{"select * from t where c = (select m from u)",
			"SELECT * FROM t WHERE (c == ((SELECT m FROM u)))"},
		{"select 1", "SELECT 1"},
		{"select 1 + 2, 'x'", "SELECT (1 + 2), 'x'"},
		{"select version()", "SELECT version()"},
		{"select 1 where 1 = 2", "SELECT 1 WHERE (1 == 2)"},
		{"update t set c = 1", "UPDATE t SET c = 1"},
		{"update t set c = 1, d = 2", "UPDATE t SET c = 1, d = 2"},
		{"update t set c = c + 1 where c > 0", "UPDATE t SET c = (c + 1) WHERE (c > 0)"},
	}

	for i, c := range cases {
		p := parser.NewParser(strings.NewReader(c.s), fmt.Sprintf("cases[%d]", i))
		stmt, err := p.Parse()
		if err != nil {
			t.Errorf("Parse(%q) failed with %s", c.s, err)
		} else if stmt.String() != c.r {
			t.Errorf("Parse(%q) got %q want %q", c.s, stmt.String(), c.r)
		}
	}
}

func TestParseExpr(t *testing.T) {
	cases := []struct {
		s string
		r string
	}{
		{"1 + 2", "(1 + 2)"},
		{"1 + 2 + 3", "((1 + 2) + 3)"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"10 - 5 - 2", "((10 - 5) - 2)"},
		{"100 / 10 / 5", "((100 / 10) / 5)"},
		{"a - b + c", "((a - b) + c)"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"(1 + 2) * 3", "(((1 + 2)) * 3)"},
		{"- 1 + 2", "((- 1) + 2)"},
		{"not a and b", "((NOT a) AND b)"},
		{"not (a and b)", "(NOT ((a AND b)))"},
		{"a and b or c", "((a AND b) OR c)"},
		{"a or b and c", "(a OR (b AND c))"},
		{"a = 1 and b != 2", "((a == 1) AND (b != 2))"},
		{"a <> 1", "(a != 1)"},
		{"a << 2 | b >> 3", "((a << 2) | (b >> 3))"},
		{"a % 3 = 0", "((a % 3) == 0)"},
		{"'a' || 'b'", "('a' || 'b')"},
		{"abs(a - b)", "abs((a - b))"},
		{"concat('a', 'b', 'c')", "concat('a', 'b', 'c')"},
		{"t.c = 1", "(t.c == 1)"},
	}

	for i, c := range cases {
		p := parser.NewParser(strings.NewReader(c.s), fmt.Sprintf("cases[%d]", i))
		e, err := p.ParseExpr()
		if err != nil {
			t.Errorf("ParseExpr(%q) failed with %s", c.s, err)
		} else if e.String() != c.r {
			t.Errorf("ParseExpr(%q) got %q want %q", c.s, e.String(), c.r)
		}
	}
}

func TestParseMultiple(t *testing.T) {
	src := "create table t (c int); insert into t values (1); ; select * from t;"
	want := []string{
		"CREATE TABLE t (c INT)",
		"INSERT INTO t VALUES (1)",
		"SELECT * FROM t",
	}

	p := parser.NewParser(strings.NewReader(src), "multiple")
	for _, w := range want {
		stmt, err := p.Parse()
		if err != nil {
			t.Fatalf("Parse(%q) failed with %s", src, err)
		}
		if stmt.String() != w {
			t.Errorf("Parse(%q) got %q want %q", src, stmt.String(), w)
		}
	}
	if stmt, err := p.Parse(); stmt != nil || err == nil {
		t.Errorf("Parse(%q) did not return io.EOF at the end", src)
	}
}
