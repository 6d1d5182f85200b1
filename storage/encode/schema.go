package encode

import (
	"github.com/kivisql/kivi/sql"
)

const (
	fixedFlag      = 1
	notNullFlag    = 2
	hasDefaultFlag = 4
)

func encodeName(buf []byte, id sql.Identifier) []byte {
	nam := id.String()
	buf = EncodeVarint(buf, uint64(len(nam)))
	return append(buf, nam...)
}

func decodeName(buf []byte) ([]byte, sql.Identifier, bool) {
	buf, u, ok := DecodeVarint(buf)
	if !ok || uint64(len(buf)) < u {
		return nil, 0, false
	}
	return buf[u:], sql.QuotedID(string(buf[:u])), true
}

// EncodeSchemaValue encodes a table id and schema as the value stored under
// the table's schema key.
func EncodeSchemaValue(tid uint32, sc *sql.Schema) []byte {
	buf := EncodeVarint(nil, uint64(tid))
	buf = encodeName(buf, sc.Table)
	buf = EncodeVarint(buf, uint64(len(sc.Columns)))
	for _, cd := range sc.Columns {
		buf = encodeName(buf, cd.Name)
		buf = append(buf, byte(cd.Type.Type))
		buf = EncodeVarint(buf, uint64(cd.Type.Size))

		var flags byte
		if cd.Type.Fixed {
			flags |= fixedFlag
		}
		if cd.Type.NotNull {
			flags |= notNullFlag
		}
		if cd.Type.HasDefault {
			flags |= hasDefaultFlag
		}
		buf = append(buf, flags)

		if cd.Type.HasDefault {
			val := EncodeRowValue(sql.Row{cd.Type.Default})
			buf = EncodeVarint(buf, uint64(len(val)))
			buf = append(buf, val...)
		}
	}
	return buf
}

// DecodeSchemaValue decodes a value encoded by EncodeSchemaValue; ok is false
// if the buffer is not a valid schema.
func DecodeSchemaValue(buf []byte) (uint32, *sql.Schema, bool) {
	buf, u, ok := DecodeVarint(buf)
	if !ok {
		return 0, nil, false
	}
	tid := uint32(u)

	var sc sql.Schema
	buf, sc.Table, ok = decodeName(buf)
	if !ok {
		return 0, nil, false
	}

	buf, u, ok = DecodeVarint(buf)
	if !ok {
		return 0, nil, false
	}
	sc.Columns = make([]sql.ColumnDef, 0, u)

	for len(sc.Columns) < cap(sc.Columns) {
		var cd sql.ColumnDef
		buf, cd.Name, ok = decodeName(buf)
		if !ok {
			return 0, nil, false
		}

		if len(buf) < 1 {
			return 0, nil, false
		}
		cd.Type.Type = sql.DataType(buf[0])
		buf = buf[1:]
		if cd.Type.Type < sql.BooleanType || cd.Type.Type > sql.StringType {
			return 0, nil, false
		}

		buf, u, ok = DecodeVarint(buf)
		if !ok {
			return 0, nil, false
		}
		cd.Type.Size = uint32(u)

		if len(buf) < 1 {
			return 0, nil, false
		}
		flags := buf[0]
		buf = buf[1:]
		cd.Type.Fixed = flags&fixedFlag != 0
		cd.Type.NotNull = flags&notNullFlag != 0

		if flags&hasDefaultFlag != 0 {
			buf, u, ok = DecodeVarint(buf)
			if !ok || uint64(len(buf)) < u {
				return 0, nil, false
			}
			row := DecodeRowValue(buf[:u])
			if len(row) != 1 {
				return 0, nil, false
			}
			cd.Type.Default = row[0]
			cd.Type.HasDefault = true
			buf = buf[u:]
		}

		sc.Columns = append(sc.Columns, cd)
	}

	if len(buf) != 0 {
		return 0, nil, false
	}
	return tid, &sc, true
}
