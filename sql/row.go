package sql

import (
	"fmt"
)

type Row []Value

// NewRow builds a row in schema order from the values of an insert. With no
// column list the values are positional; otherwise each value goes to its
// named column. Unmentioned columns get their default or NULL; every value
// is converted to the column's type.
func NewRow(colDefs []ColumnDef, columns []Identifier, values []Value) (Row, error) {
	positions := make(map[Identifier]int)
	if len(columns) == 0 {
		if len(values) > len(colDefs) {
			return nil, fmt.Errorf("engine: want %d values got %d", len(colDefs), len(values))
		}
		for i := range values {
			positions[colDefs[i].Name] = i
		}
	} else {
		if len(values) != len(columns) {
			return nil, fmt.Errorf("engine: want %d values got %d", len(columns), len(values))
		}
		for i, col := range columns {
			if _, found := positions[col]; found {
				return nil, fmt.Errorf("engine: column %s specified more than once", col)
			}
			found := false
			for _, cd := range colDefs {
				if cd.Name == col {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("engine: column %s not found", col)
			}
			positions[col] = i
		}
	}

	row := make(Row, len(colDefs))
	for i, cd := range colDefs {
		var v Value
		if idx, found := positions[cd.Name]; found {
			v = values[idx]
		} else if cd.Type.HasDefault {
			v = cd.Type.Default
		}

		cv, err := cd.Type.ConvertValue(cd.Name, v)
		if err != nil {
			return nil, err
		}
		row[i] = cv
	}
	return row, nil
}
