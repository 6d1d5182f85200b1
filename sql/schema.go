package sql

type ColumnDef struct {
	Name Identifier
	Type ColumnType
}

type Schema struct {
	Table   Identifier
	Columns []ColumnDef
}

func (sc *Schema) ColumnNames() []Identifier {
	cols := make([]Identifier, 0, len(sc.Columns))
	for _, cd := range sc.Columns {
		cols = append(cols, cd.Name)
	}
	return cols
}

// FindColumn returns the index of col in the schema or -1.
func (sc *Schema) FindColumn(col Identifier) int {
	for i, cd := range sc.Columns {
		if cd.Name == col {
			return i
		}
	}
	return -1
}
