package sql

import (
	"strings"
	"testing"
)

func TestID(t *testing.T) {
	equal := []struct{ s1, s2 string }{
		{"abc", "abc"},
		{"Abc", "abc"},
		{"abC", "abc"},
		{"ABC", "abc"},
	}

	for _, c := range equal {
		if ID(c.s1) != ID(c.s2) {
			t.Errorf("ID: %q != %q", c.s1, c.s2)
		}
	}

	notEqual := []struct{ s1, s2 string }{
		{"abc", "abcd"},
		{"abcd", "abc"},
		{"abc", "ABCD"},
		{"ABCD", "abc"},
	}

	for _, c := range notEqual {
		if ID(c.s1) == ID(c.s2) {
			t.Errorf("ID: %q == %q", c.s1, c.s2)
		}
	}
}

func TestUnquotedID(t *testing.T) {
	if UnquotedID("select") != SELECT {
		t.Errorf("UnquotedID(select) got %d want SELECT", UnquotedID("select"))
	}
	if UnquotedID("SELECT") != SELECT {
		t.Errorf("UnquotedID(SELECT) got %d want SELECT", UnquotedID("SELECT"))
	}
	if UnquotedID("int") != INT {
		t.Errorf("UnquotedID(int) got %d want INT", UnquotedID("int"))
	}
	if UnquotedID("abc") != ID("abc") {
		t.Errorf("UnquotedID(abc) got %d want %d", UnquotedID("abc"), ID("abc"))
	}
}

func TestQuotedID(t *testing.T) {
	// A quoted identifier is case sensitive and is never a keyword.
	if QuotedID("abc") != ID("abc") {
		t.Errorf("QuotedID(abc) got %d want %d", QuotedID("abc"), ID("abc"))
	}
	if QuotedID("Abc") == ID("abc") {
		t.Errorf("QuotedID(Abc) == ID(abc)")
	}
	if QuotedID("SELECT") == SELECT {
		t.Errorf("QuotedID(SELECT) == SELECT")
	}
	if QuotedID("SELECT").IsReserved() {
		t.Errorf("QuotedID(SELECT) is reserved")
	}
}

func TestIDString(t *testing.T) {
	id := ID("abc")
	for _, s := range []string{"defg", "hijk", "lmnop", "qrstuv"} {
		ID(s)
	}
	if id.String() != "abc" {
		t.Errorf("ID(abc).String() got %q want abc", id.String())
	}
	if SELECT.String() != "SELECT" {
		t.Errorf("SELECT.String() got %q want SELECT", SELECT.String())
	}
}

func TestIsReserved(t *testing.T) {
	for _, s := range []string{"abc", "defg", "int", "INT", "varchar"} {
		if UnquotedID(s).IsReserved() {
			t.Errorf("IsReserved(%q) got true want false", s)
		}
	}

	for _, s := range []string{"create", "CREATE", "update", "select", "SELECT"} {
		if !UnquotedID(s).IsReserved() {
			t.Errorf("IsReserved(%q) got false want true", s)
		}
	}
}

func TestKeywords(t *testing.T) {
	for s, n := range knownKeywords {
		if s != strings.ToUpper(s) {
			t.Errorf("keyword %q must be upper case", s)
		}
		if UnquotedID(s) != n.id {
			t.Errorf("UnquotedID(%q) got %d want %d", s, UnquotedID(s), n.id)
		}
		if n.id.IsReserved() != n.reserved {
			t.Errorf("IsReserved(%q) got %t want %t", s, n.id.IsReserved(), n.reserved)
		}
	}
}
