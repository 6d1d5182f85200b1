package sql_test

import (
	"testing"

	"github.com/kivisql/kivi/sql"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		v1, v2 sql.Value
		cmp    int
		fail   bool
	}{
		{v1: sql.BoolValue(true), v2: sql.BoolValue(true), cmp: 0},
		{v1: sql.BoolValue(false), v2: sql.BoolValue(false), cmp: 0},
		{v1: sql.BoolValue(false), v2: sql.BoolValue(true), cmp: -1},
		{v1: sql.BoolValue(true), v2: sql.BoolValue(false), cmp: 1},
		{v1: sql.BoolValue(true), v2: sql.Int64Value(1), fail: true},

		{v1: sql.Int64Value(123), v2: sql.Int64Value(234), cmp: -1},
		{v1: sql.Int64Value(123), v2: sql.Int64Value(123), cmp: 0},
		{v1: sql.Int64Value(123), v2: sql.Int64Value(12), cmp: 1},
		{v1: sql.Int64Value(123), v2: sql.Float64Value(123.5), cmp: -1},
		{v1: sql.Int64Value(123), v2: sql.Float64Value(123), cmp: 0},
		{v1: sql.Int64Value(123), v2: sql.StringValue("abc"), fail: true},

		{v1: sql.Float64Value(1.23), v2: sql.Float64Value(2.34), cmp: -1},
		{v1: sql.Float64Value(1.23), v2: sql.Float64Value(1.23), cmp: 0},
		{v1: sql.Float64Value(1.23), v2: sql.Float64Value(0.12), cmp: 1},
		{v1: sql.Float64Value(1.23), v2: sql.Int64Value(1), cmp: 1},
		{v1: sql.Float64Value(1.23), v2: sql.BoolValue(true), fail: true},

		{v1: sql.StringValue("def"), v2: sql.StringValue("ghi"), cmp: -1},
		{v1: sql.StringValue("def"), v2: sql.StringValue("def"), cmp: 0},
		{v1: sql.StringValue("def"), v2: sql.StringValue("abc"), cmp: 1},
		{v1: sql.StringValue("def"), v2: sql.Int64Value(123), fail: true},

		{v1: sql.BytesValue([]byte{1, 2}), v2: sql.BytesValue([]byte{1, 3}), cmp: -1},
		{v1: sql.BytesValue([]byte{1, 2}), v2: sql.BytesValue([]byte{1, 2}), cmp: 0},
		{v1: sql.BytesValue([]byte{1, 2}), v2: sql.BytesValue([]byte{1}), cmp: 1},
		{v1: sql.BytesValue([]byte{1, 2}), v2: sql.StringValue("ab"), fail: true},
	}

	for _, c := range cases {
		cmp, err := c.v1.Compare(c.v2)
		if c.fail {
			if err == nil {
				t.Errorf("Compare(%v, %v) did not fail", c.v1, c.v2)
			}
		} else if err != nil {
			t.Errorf("Compare(%v, %v) failed with %s", c.v1, c.v2, err)
		} else if cmp != c.cmp {
			t.Errorf("Compare(%v, %v) got %d want %d", c.v1, c.v2, cmp, c.cmp)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		v sql.Value
		s string
	}{
		{nil, "NULL"},
		{sql.BoolValue(true), "true"},
		{sql.BoolValue(false), "false"},
		{sql.Int64Value(123), "123"},
		{sql.Int64Value(-123), "-123"},
		{sql.Float64Value(1.25), "1.25"},
		{sql.StringValue("abc"), "'abc'"},
		{sql.BytesValue([]byte{0xab, 0x1}), `'\xab01'`},
	}

	for _, c := range cases {
		if s := sql.Format(c.v); s != c.s {
			t.Errorf("Format(%v) got %s want %s", c.v, s, c.s)
		}
	}
}

func TestConvertValue(t *testing.T) {
	cases := []struct {
		dt   sql.DataType
		v    sql.Value
		r    sql.Value
		fail bool
	}{
		{dt: sql.BooleanType, v: sql.BoolValue(true), r: sql.BoolValue(true)},
		{dt: sql.BooleanType, v: sql.StringValue(" true "), r: sql.BoolValue(true)},
		{dt: sql.BooleanType, v: sql.StringValue("no"), r: sql.BoolValue(false)},
		{dt: sql.BooleanType, v: sql.StringValue("maybe"), fail: true},
		{dt: sql.BooleanType, v: sql.Int64Value(1), fail: true},

		{dt: sql.StringType, v: sql.StringValue("abc"), r: sql.StringValue("abc")},
		{dt: sql.StringType, v: sql.Int64Value(123), r: sql.StringValue("123")},
		{dt: sql.StringType, v: sql.Float64Value(1.5), r: sql.StringValue("1.5")},
		{dt: sql.StringType, v: sql.BytesValue([]byte("abc")), r: sql.StringValue("abc")},
		{dt: sql.StringType, v: sql.BytesValue([]byte{0xff, 0xfe}), fail: true},
		{dt: sql.StringType, v: sql.BoolValue(true), fail: true},

		{dt: sql.BytesType, v: sql.BytesValue([]byte{1, 2}), r: sql.BytesValue([]byte{1, 2})},
		{dt: sql.BytesType, v: sql.StringValue("ab"), r: sql.BytesValue([]byte("ab"))},
		{dt: sql.BytesType, v: sql.Int64Value(123), fail: true},

		{dt: sql.FloatType, v: sql.Float64Value(1.5), r: sql.Float64Value(1.5)},
		{dt: sql.FloatType, v: sql.Int64Value(123), r: sql.Float64Value(123)},
		{dt: sql.FloatType, v: sql.StringValue(" 1.5 "), r: sql.Float64Value(1.5)},
		{dt: sql.FloatType, v: sql.StringValue("abc"), fail: true},
		{dt: sql.FloatType, v: sql.BoolValue(true), fail: true},

		{dt: sql.IntegerType, v: sql.Int64Value(123), r: sql.Int64Value(123)},
		{dt: sql.IntegerType, v: sql.Float64Value(123.5), r: sql.Int64Value(123)},
		{dt: sql.IntegerType, v: sql.StringValue(" 123 "), r: sql.Int64Value(123)},
		{dt: sql.IntegerType, v: sql.StringValue("1.5"), fail: true},
		{dt: sql.IntegerType, v: sql.BoolValue(true), fail: true},
	}

	for _, c := range cases {
		r, err := sql.ConvertValue(c.dt, c.v)
		if c.fail {
			if err == nil {
				t.Errorf("ConvertValue(%v, %v) did not fail", c.dt, c.v)
			}
		} else if err != nil {
			t.Errorf("ConvertValue(%v, %v) failed with %s", c.dt, c.v, err)
		} else if cmp, cerr := r.Compare(c.r); cerr != nil || cmp != 0 {
			t.Errorf("ConvertValue(%v, %v) got %v want %v", c.dt, c.v, r, c.r)
		}
	}
}
