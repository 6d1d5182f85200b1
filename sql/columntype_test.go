package sql_test

import (
	"testing"

	"github.com/kivisql/kivi/sql"
)

func TestDataType(t *testing.T) {
	cases := []struct {
		ct sql.ColumnType
		dt string
	}{
		{
			sql.ColumnType{Type: sql.BooleanType, Size: 1},
			"BOOL",
		},
		{
			sql.ColumnType{Type: sql.StringType, Size: 123},
			"VARCHAR(123)",
		},
		{
			sql.ColumnType{Type: sql.StringType, Fixed: true, Size: 123},
			"CHAR(123)",
		},
		{
			sql.ColumnType{Type: sql.StringType, Size: sql.MaxColumnSize},
			"TEXT",
		},
		{
			sql.ColumnType{Type: sql.BytesType, Size: sql.MaxColumnSize},
			"BYTEA",
		},
		{
			sql.ColumnType{Type: sql.FloatType, Size: 8},
			"DOUBLE",
		},
		{
			sql.ColumnType{Type: sql.IntegerType, Size: 2},
			"INT",
		},
		{
			sql.ColumnType{Type: sql.IntegerType, Size: 4},
			"INT",
		},
		{
			sql.ColumnType{Type: sql.IntegerType, Size: 8},
			"INT",
		},
	}

	for _, c := range cases {
		if c.ct.DataType() != c.dt {
			t.Errorf("ColumnType{%v}.DataType() got %s want %s", c.ct, c.ct.DataType(), c.dt)
		}
	}
}

func TestColumnConvertValue(t *testing.T) {
	col := sql.ID("c")

	cases := []struct {
		ct   sql.ColumnType
		v    sql.Value
		r    sql.Value
		fail bool
	}{
		{ct: sql.ColumnType{Type: sql.IntegerType, Size: 4}, v: nil, r: nil},
		{ct: sql.ColumnType{Type: sql.IntegerType, Size: 4, NotNull: true}, v: nil,
			fail: true},
		{ct: sql.ColumnType{Type: sql.IntegerType, Size: 4}, v: sql.StringValue("123"),
			r: sql.Int64Value(123)},
		{ct: sql.ColumnType{Type: sql.IntegerType, Size: 4}, v: sql.BoolValue(true),
			fail: true},
		{ct: sql.ColumnType{Type: sql.StringType, Size: 3}, v: sql.StringValue("abc"),
			r: sql.StringValue("abc")},
		{ct: sql.ColumnType{Type: sql.StringType, Size: 3}, v: sql.StringValue("abcd"),
			fail: true},
		{ct: sql.ColumnType{Type: sql.StringType, Size: 3}, v: sql.Int64Value(123),
			r: sql.StringValue("123")},
		{ct: sql.ColumnType{Type: sql.StringType, Size: 2}, v: sql.Int64Value(123),
			fail: true},
		{ct: sql.ColumnType{Type: sql.BooleanType, Size: 1}, v: sql.StringValue("on"),
			r: sql.BoolValue(true)},
	}

	for _, c := range cases {
		r, err := c.ct.ConvertValue(col, c.v)
		if c.fail {
			if err == nil {
				t.Errorf("ConvertValue(%s, %v) did not fail", c.ct.DataType(), c.v)
			}
			continue
		}
		if err != nil {
			t.Errorf("ConvertValue(%s, %v) failed with %s", c.ct.DataType(), c.v, err)
		} else if c.r == nil {
			if r != nil {
				t.Errorf("ConvertValue(%s, %v) got %v want NULL", c.ct.DataType(), c.v, r)
			}
		} else if cmp, cerr := r.Compare(c.r); cerr != nil || cmp != 0 {
			t.Errorf("ConvertValue(%s, %v) got %v want %v", c.ct.DataType(), c.v, r, c.r)
		}
	}
}
