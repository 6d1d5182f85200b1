package encode_test

import (
	"bytes"
	"testing"

	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/storage/encode"
)

func TestMakeRowKey(t *testing.T) {
	keys := []uint64{
		0,
		1,
		0xFFFFFFFF,
		uint64(1) << 32,
		uint64(1)<<32 | 1,
		uint64(7)<<32 | 123456,
		uint64(0xFFFFFFFF)<<32 | 0xFFFFFFFF,
	}

	var prev []byte
	for _, key := range keys {
		buf := encode.MakeRowKey(key)
		ret, ok := encode.ParseRowKey(buf)
		if !ok {
			t.Errorf("ParseRowKey(MakeRowKey(%d)) failed", key)
		} else if ret != key {
			t.Errorf("ParseRowKey(MakeRowKey(%d)) got %d", key, ret)
		}

		if prev != nil && bytes.Compare(prev, buf) >= 0 {
			t.Errorf("MakeRowKey(%d) does not sort after the previous key", key)
		}
		prev = buf
	}

	if _, ok := encode.ParseRowKey([]byte{'r', 1, 2, 3}); ok {
		t.Error("ParseRowKey of a short buffer did not fail")
	}
	if _, ok := encode.ParseRowKey(encode.MakeSchemaKey(sql.ID("t"))); ok {
		t.Error("ParseRowKey of a schema key did not fail")
	}
}

func TestMakeRowKeyRange(t *testing.T) {
	for _, tid := range []uint32{0, 1, 7, 0xFFFFFFFF} {
		minKey, maxKey := encode.MakeRowKeyRange(tid)

		first := encode.MakeRowKey(uint64(tid) << 32)
		last := encode.MakeRowKey(uint64(tid)<<32 | 0xFFFFFFFF)
		if !bytes.Equal(minKey, first) {
			t.Errorf("MakeRowKeyRange(%d): got min %v want %v", tid, minKey, first)
		}
		if !bytes.Equal(maxKey, last) {
			t.Errorf("MakeRowKeyRange(%d): got max %v want %v", tid, maxKey, last)
		}

		if tid > 0 {
			before := encode.MakeRowKey(uint64(tid-1)<<32 | 0xFFFFFFFF)
			if bytes.Compare(before, minKey) >= 0 {
				t.Errorf("MakeRowKeyRange(%d): previous table overlaps the range", tid)
			}
		}
	}
}

func TestKeySpaces(t *testing.T) {
	// Schema, sequence, and row keys must never collide.
	keys := [][]byte{
		encode.MakeSchemaKey(sql.ID("q")),
		encode.MakeSchemaKey(sql.ID("r")),
		encode.MakeSequenceKey(0),
		encode.MakeSequenceKey(0xFFFFFFFF),
		encode.MakeRowKey(0),
		encode.MakeRowKey(uint64(0xFFFFFFFF) << 32),
	}

	for i, k1 := range keys {
		for j, k2 := range keys {
			if i != j && bytes.Equal(k1, k2) {
				t.Errorf("keys %d and %d collide: %v", i, j, k1)
			}
		}
	}
}
