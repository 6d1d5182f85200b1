package sql

type DataType int

const (
	BooleanType DataType = iota + 1
	BytesType
	FloatType
	IntegerType
	StringType
)

func (dt DataType) String() string {
	switch dt {
	case BooleanType:
		return "BOOL"
	case BytesType:
		return "BYTEA"
	case FloatType:
		return "DOUBLE"
	case IntegerType:
		return "INT"
	case StringType:
		return "TEXT"
	}

	return ""
}
