// Package basic is an in memory store; it is the default when no data
// directory is configured and is what most of the engine tests run against.
package basic

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

type table struct {
	schema *sql.Schema
	rows   map[int]sql.Row
}

type basicStore struct {
	mutex   sync.Mutex
	lastKey int
	tables  map[sql.Identifier]*table
	keys    map[int]sql.Identifier
}

func NewStore() store.Store[int] {
	return &basicStore{
		tables: map[sql.Identifier]*table{},
		keys:   map[int]sql.Identifier{},
	}
}

func copyRow(row sql.Row) sql.Row {
	return append(make(sql.Row, 0, len(row)), row...)
}

func (bst *basicStore) SetSchema(ctx context.Context, sc *sql.Schema) error {
	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	if tbl, ok := bst.tables[sc.Table]; ok {
		for key := range tbl.rows {
			delete(bst.keys, key)
		}
	}
	bst.tables[sc.Table] = &table{
		schema: sc,
		rows:   map[int]sql.Row{},
	}
	return nil
}

func (bst *basicStore) GetSchema(ctx context.Context, tn sql.Identifier) (*sql.Schema, error) {
	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	tbl, ok := bst.tables[tn]
	if !ok {
		return nil, fmt.Errorf("basic: table %s not found", tn)
	}
	return tbl.schema, nil
}

func (bst *basicStore) DelSchema(ctx context.Context, tn sql.Identifier) error {
	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	tbl, ok := bst.tables[tn]
	if !ok {
		return fmt.Errorf("basic: table %s not found", tn)
	}
	for key := range tbl.rows {
		delete(bst.keys, key)
	}
	delete(bst.tables, tn)
	return nil
}

func (bst *basicStore) GenID(ctx context.Context, tn sql.Identifier) (int, error) {
	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	if _, ok := bst.tables[tn]; !ok {
		return 0, fmt.Errorf("basic: table %s not found", tn)
	}
	bst.lastKey += 1
	bst.keys[bst.lastKey] = tn
	return bst.lastKey, nil
}

func (bst *basicStore) SetData(ctx context.Context, key int, row sql.Row) (sql.Row, error) {
	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	tn, ok := bst.keys[key]
	if !ok {
		return nil, fmt.Errorf("basic: key %d not found", key)
	}
	tbl := bst.tables[tn]
	row = copyRow(row)
	tbl.rows[key] = row
	return row, nil
}

func (bst *basicStore) DelData(ctx context.Context, key int) error {
	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	tn, ok := bst.keys[key]
	if !ok {
		return fmt.Errorf("basic: key %d not found", key)
	}
	delete(bst.tables[tn].rows, key)
	return nil
}

type rowIter struct {
	keys []int
	rows []sql.Row
	idx  int
}

func (bst *basicStore) ScanData(ctx context.Context, tn sql.Identifier) (store.RowIter[int],
	error) {

	bst.mutex.Lock()
	defer bst.mutex.Unlock()

	tbl, ok := bst.tables[tn]
	if !ok {
		return nil, fmt.Errorf("basic: table %s not found", tn)
	}

	// Snapshot the table so that mutating it does not disturb the scan.
	ri := rowIter{
		keys: make([]int, 0, len(tbl.rows)),
		rows: make([]sql.Row, 0, len(tbl.rows)),
	}
	for key := range tbl.rows {
		ri.keys = append(ri.keys, key)
	}
	sort.Ints(ri.keys)
	for _, key := range ri.keys {
		ri.rows = append(ri.rows, copyRow(tbl.rows[key]))
	}
	return &ri, nil
}

func (ri *rowIter) Next(ctx context.Context) (int, sql.Row, error) {
	if ri.idx == len(ri.keys) {
		return 0, nil, io.EOF
	}
	key, row := ri.keys[ri.idx], ri.rows[ri.idx]
	ri.idx += 1
	return key, row, nil
}

func (ri *rowIter) Close() error {
	return nil
}
