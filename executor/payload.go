package executor

import (
	"github.com/kivisql/kivi/sql"
)

// Payload is the result of executing a statement.
type Payload interface {
	payload()
}

type Created struct{}

type Inserted struct {
	Row sql.Row
}

type Selected struct {
	Columns []sql.Identifier
	Rows    []sql.Row
}

type Updated struct {
	Count int
}

type Deleted struct {
	Count int
}

type Dropped struct{}

func (Created) payload()  {}
func (Inserted) payload() {}
func (Selected) payload() {}
func (Updated) payload()  {}
func (Deleted) payload()  {}
func (Dropped) payload()  {}
