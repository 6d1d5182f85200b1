package encode_test

import (
	"math"
	"testing"

	"github.com/golang/protobuf/proto"

	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/storage/encode"
	"github.com/kivisql/kivi/testutil"
)

func TestEncodeVarint(t *testing.T) {
	numbers := []uint64{
		0,
		1,
		125,
		126,
		127,
		0xFF,
		0x100,
		0xFFF,
		0x1000,
		0x7F7F,
		1234567890,
		math.MaxUint32,
		math.MaxUint64,
	}

	for _, n := range numbers {
		buf := encode.EncodeVarint(nil, n)
		pbuf := proto.EncodeVarint(n)
		if !testutil.DeepEqual(buf, pbuf) {
			t.Errorf("EncodeVarint(%d): got %v want %v", n, buf, pbuf)
		}
		ret, r, ok := encode.DecodeVarint(buf)
		if !ok {
			t.Errorf("DecodeVarint(%v) failed", buf)
		} else if len(ret) != 0 {
			t.Errorf("DecodeVarint(%v): got %v want []", buf, ret)
		} else if n != r {
			t.Errorf("DecodeVarint(%v): got %d want %d", buf, r, n)
		}
	}
}

func TestEncodeZigzag64(t *testing.T) {
	numbers := []int64{
		0,
		1,
		125,
		126,
		127,
		128,
		129,
		0xFF,
		0x100,
		0xFFF,
		0x1000,
		0x7F7F,
		1234567890,
		10000000000,
		math.MaxInt32,
		math.MaxInt64,
		math.MinInt32,
		math.MinInt64,
		-987654321,
		-1000000000,
		-125,
		-126,
		-127,
		-128,
		-129,
		-0xFF,
	}

	for _, n := range numbers {
		buf := encode.EncodeZigzag64(nil, n)
		enc := proto.NewBuffer(nil)
		err := enc.EncodeZigzag64(uint64(n))
		if err != nil {
			t.Errorf("proto.EncodeZigzag64(%d) failed with %s", n, err)
		} else {
			pbuf := enc.Bytes()
			if !testutil.DeepEqual(buf, pbuf) {
				t.Errorf("EncodeZigzag64(%d): got %v want %v", n, buf, pbuf)
			}
		}
		ret, r, ok := encode.DecodeZigzag64(buf)
		if !ok {
			t.Errorf("DecodeZigzag64(%v) failed", buf)
		} else if len(ret) != 0 {
			t.Errorf("DecodeZigzag64(%v): got %v want []", buf, ret)
		} else if n != r {
			t.Errorf("DecodeZigzag64(%v): got %d want %d", buf, r, n)
		}
	}
}

func TestEncodeRowValue(t *testing.T) {
	wide := make(sql.Row, 40)
	wide[0] = sql.Int64Value(0)
	wide[14] = sql.Int64Value(14)
	wide[15] = sql.Int64Value(15)
	wide[16] = sql.Int64Value(16)
	wide[39] = sql.StringValue("last")

	rows := []sql.Row{
		{sql.Int64Value(1)},
		{nil},
		{nil, nil, nil},
		{sql.BoolValue(true), sql.BoolValue(false)},
		{sql.Int64Value(math.MaxInt64), sql.Int64Value(math.MinInt64)},
		{sql.Float64Value(1.5), sql.Float64Value(-123.456), sql.Float64Value(0)},
		{sql.StringValue(""), sql.StringValue("abcdef"), sql.StringValue("ABC")},
		{sql.BytesValue([]byte{0, 1, 2, 0xFF}), sql.BytesValue([]byte{9})},
		{sql.Int64Value(123), nil, sql.StringValue("abc"), nil, sql.BoolValue(false)},
		wide,
	}

	for _, row := range rows {
		buf := encode.EncodeRowValue(row)
		ret := encode.DecodeRowValue(buf)
		if ret == nil {
			t.Errorf("DecodeRowValue(EncodeRowValue(%v)) failed", row)
		} else if !testutil.DeepEqual(ret, row) {
			t.Errorf("DecodeRowValue(EncodeRowValue(%v)) got %v", row, ret)
		}
	}

	bad := [][]byte{
		{},
		{2, 0x06, 1},
		{1, boolTag},
		{1, stringTag, 5, 'a'},
		{1, floatTag, 1, 2, 3},
		{2, 0x21, 1},
	}
	for _, buf := range bad {
		if row := encode.DecodeRowValue(buf); row != nil {
			t.Errorf("DecodeRowValue(%v) got %v want nil", buf, row)
		}
	}
}

const (
	boolTag   = 1
	floatTag  = 3
	stringTag = 4
)

func TestEncodeSchemaValue(t *testing.T) {
	schemas := []struct {
		tid uint32
		sc  sql.Schema
	}{
		{
			tid: 1,
			sc: sql.Schema{
				Table: sql.ID("t"),
				Columns: []sql.ColumnDef{
					{Name: sql.ID("c"), Type: sql.ColumnType{Type: sql.IntegerType, Size: 4}},
				},
			},
		},
		{
			tid: 12345,
			sc: sql.Schema{
				Table: sql.ID("things"),
				Columns: []sql.ColumnDef{
					{Name: sql.ID("id"),
						Type: sql.ColumnType{Type: sql.IntegerType, Size: 8, NotNull: true}},
					{Name: sql.ID("name"),
						Type: sql.ColumnType{Type: sql.StringType, Size: 128}},
					{Name: sql.ID("fixed"),
						Type: sql.ColumnType{Type: sql.StringType, Size: 3, Fixed: true}},
					{Name: sql.ID("flag"),
						Type: sql.ColumnType{Type: sql.BooleanType, Size: 1,
							Default: sql.BoolValue(true), HasDefault: true}},
					{Name: sql.ID("blob"),
						Type: sql.ColumnType{Type: sql.BytesType, Size: sql.MaxColumnSize}},
					{Name: sql.ID("ratio"),
						Type: sql.ColumnType{Type: sql.FloatType, Size: 8,
							Default: nil, HasDefault: true}},
				},
			},
		},
	}

	for _, c := range schemas {
		buf := encode.EncodeSchemaValue(c.tid, &c.sc)
		tid, sc, ok := encode.DecodeSchemaValue(buf)
		if !ok {
			t.Errorf("DecodeSchemaValue(EncodeSchemaValue(%d, %s)) failed", c.tid, c.sc.Table)
		} else if tid != c.tid {
			t.Errorf("DecodeSchemaValue(%s): got tid %d want %d", c.sc.Table, tid, c.tid)
		} else if !testutil.DeepEqual(sc, &c.sc) {
			t.Errorf("DecodeSchemaValue(%s): got %v want %v", c.sc.Table, sc, &c.sc)
		}
	}

	if _, _, ok := encode.DecodeSchemaValue(nil); ok {
		t.Error("DecodeSchemaValue(nil) did not fail")
	}
	if _, _, ok := encode.DecodeSchemaValue([]byte{1, 1, 't', 2}); ok {
		t.Error("DecodeSchemaValue of a truncated buffer did not fail")
	}
}
