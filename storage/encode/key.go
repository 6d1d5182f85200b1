package encode

import (
	"github.com/kivisql/kivi/sql"
)

// Keys are laid out so that all of the rows of a table are contiguous:
//
//	's' <table name>            -> table id and schema
//	'q' <table id>              -> last row number for the table
//	'r' <table id> <row number> -> encoded row
//
// Table ids and row numbers are big endian so that keys sort correctly.
const (
	schemaKeyTag   = 's'
	sequenceKeyTag = 'q'
	rowKeyTag      = 'r'
)

func MakeSchemaKey(tn sql.Identifier) []byte {
	nam := tn.String()
	buf := make([]byte, 0, len(nam)+1)
	buf = append(buf, schemaKeyTag)
	return append(buf, nam...)
}

func MakeSequenceKey(tid uint32) []byte {
	return EncodeUint32([]byte{sequenceKeyTag}, tid)
}

// MakeRowKey encodes a row key: the table id in the high 32 bits and the row
// number in the low 32 bits.
func MakeRowKey(key uint64) []byte {
	return EncodeUint64([]byte{rowKeyTag}, key)
}

// MakeRowKeyRange returns the inclusive range of row keys for a table.
func MakeRowKeyRange(tid uint32) ([]byte, []byte) {
	minKey := EncodeUint64([]byte{rowKeyTag}, uint64(tid)<<32)
	maxKey := EncodeUint64([]byte{rowKeyTag}, uint64(tid)<<32|0xFFFFFFFF)
	return minKey, maxKey
}

func ParseRowKey(buf []byte) (uint64, bool) {
	if len(buf) != 9 || buf[0] != rowKeyTag {
		return 0, false
	}
	return DecodeUint64(buf[1:]), true
}
