// Package test checks a store implementation against the contract that the
// engine depends upon; every store should pass these tests.
package test

import (
	"context"
	"io"
	"testing"

	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
	"github.com/kivisql/kivi/testutil"
)

func testSchema(tn sql.Identifier) *sql.Schema {
	return &sql.Schema{
		Table: tn,
		Columns: []sql.ColumnDef{
			{Name: sql.ID("id"),
				Type: sql.ColumnType{Type: sql.IntegerType, Size: 8, NotNull: true}},
			{Name: sql.ID("name"), Type: sql.ColumnType{Type: sql.StringType, Size: 128}},
			{Name: sql.ID("flag"),
				Type: sql.ColumnType{Type: sql.BooleanType, Size: 1,
					Default: sql.BoolValue(false), HasDefault: true}},
		},
	}
}

func insertRow[K comparable](t *testing.T, st store.Store[K], tn sql.Identifier,
	row sql.Row) K {

	t.Helper()

	ctx := context.Background()
	key, err := st.GenID(ctx, tn)
	if err != nil {
		t.Fatalf("GenID(%s) failed with %s", tn, err)
	}
	_, err = st.SetData(ctx, key, row)
	if err != nil {
		t.Fatalf("SetData(%s) failed with %s", tn, err)
	}
	return key
}

func scanAll[K comparable](t *testing.T, st store.Store[K],
	tn sql.Identifier) map[K]sql.Row {

	t.Helper()

	ctx := context.Background()
	it, err := st.ScanData(ctx, tn)
	if err != nil {
		t.Fatalf("ScanData(%s) failed with %s", tn, err)
	}
	defer it.Close()

	rows := map[K]sql.Row{}
	for {
		key, row, err := it.Next(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next(%s) failed with %s", tn, err)
		}
		if _, ok := rows[key]; ok {
			t.Errorf("Next(%s) returned key %v twice", tn, key)
		}
		rows[key] = row
	}
	return rows
}

// RunSchemaTest checks creating, looking up, replacing, and dropping table
// schemas.
func RunSchemaTest[K comparable](t *testing.T, st store.Store[K]) {
	t.Helper()

	ctx := context.Background()
	tn := sql.ID("schema_test")

	if _, err := st.GetSchema(ctx, tn); err == nil {
		t.Errorf("GetSchema(%s) did not fail", tn)
	}
	if err := st.DelSchema(ctx, tn); err == nil {
		t.Errorf("DelSchema(%s) did not fail", tn)
	}
	if _, err := st.GenID(ctx, tn); err == nil {
		t.Errorf("GenID(%s) did not fail", tn)
	}

	sc := testSchema(tn)
	if err := st.SetSchema(ctx, sc); err != nil {
		t.Fatalf("SetSchema(%s) failed with %s", tn, err)
	}
	ret, err := st.GetSchema(ctx, tn)
	if err != nil {
		t.Fatalf("GetSchema(%s) failed with %s", tn, err)
	}
	if !testutil.DeepEqual(ret, sc) {
		t.Errorf("GetSchema(%s) got %v want %v", tn, ret, sc)
	}

	// Replacing the schema empties the table.
	insertRow(t, st, tn, sql.Row{sql.Int64Value(1), sql.StringValue("one"), nil})
	nsc := &sql.Schema{
		Table: tn,
		Columns: []sql.ColumnDef{
			{Name: sql.ID("n"), Type: sql.ColumnType{Type: sql.IntegerType, Size: 4}},
		},
	}
	if err := st.SetSchema(ctx, nsc); err != nil {
		t.Fatalf("SetSchema(%s) failed with %s", tn, err)
	}
	ret, err = st.GetSchema(ctx, tn)
	if err != nil {
		t.Fatalf("GetSchema(%s) failed with %s", tn, err)
	}
	if !testutil.DeepEqual(ret, nsc) {
		t.Errorf("GetSchema(%s) got %v want %v", tn, ret, nsc)
	}
	if rows := scanAll(t, st, tn); len(rows) != 0 {
		t.Errorf("ScanData(%s) got %d rows want 0", tn, len(rows))
	}

	if err := st.DelSchema(ctx, tn); err != nil {
		t.Fatalf("DelSchema(%s) failed with %s", tn, err)
	}
	if _, err := st.GetSchema(ctx, tn); err == nil {
		t.Errorf("GetSchema(%s) did not fail after DelSchema", tn)
	}
	if _, err := st.ScanData(ctx, tn); err == nil {
		t.Errorf("ScanData(%s) did not fail after DelSchema", tn)
	}
}

// RunRowsTest checks inserting, updating, deleting, and scanning rows, and
// that generated keys are never reused.
func RunRowsTest[K comparable](t *testing.T, st store.Store[K]) {
	t.Helper()

	ctx := context.Background()
	tn := sql.ID("rows_test")

	if err := st.SetSchema(ctx, testSchema(tn)); err != nil {
		t.Fatalf("SetSchema(%s) failed with %s", tn, err)
	}

	want := map[K]sql.Row{}
	for n := int64(1); n <= 8; n += 1 {
		row := sql.Row{sql.Int64Value(n), sql.StringValue("row"), sql.BoolValue(n%2 == 0)}
		key := insertRow(t, st, tn, row)
		if _, ok := want[key]; ok {
			t.Fatalf("GenID(%s) returned key %v twice", tn, key)
		}
		want[key] = row
	}

	if rows := scanAll(t, st, tn); !testutil.DeepEqual(rows, want) {
		t.Errorf("ScanData(%s) got %v want %v", tn, rows, want)
	}

	// Update a row in place.
	for key := range want {
		nrow := sql.Row{sql.Int64Value(100), sql.StringValue("updated"), nil}
		ret, err := st.SetData(ctx, key, nrow)
		if err != nil {
			t.Fatalf("SetData(%s) failed with %s", tn, err)
		}
		if !testutil.DeepEqual(ret, nrow) {
			t.Errorf("SetData(%s) got %v want %v", tn, ret, nrow)
		}
		want[key] = nrow
		break
	}
	if rows := scanAll(t, st, tn); !testutil.DeepEqual(rows, want) {
		t.Errorf("ScanData(%s) got %v want %v", tn, rows, want)
	}

	// Delete rows one at a time.
	for key := range want {
		if err := st.DelData(ctx, key); err != nil {
			t.Fatalf("DelData(%s) failed with %s", tn, err)
		}
		delete(want, key)
		if rows := scanAll(t, st, tn); !testutil.DeepEqual(rows, want) {
			t.Errorf("ScanData(%s) got %v want %v", tn, rows, want)
		}
	}

	// Keys must stay unique after rows are deleted.
	seen := map[K]bool{}
	for n := 0; n < 4; n += 1 {
		key := insertRow(t, st, tn, sql.Row{sql.Int64Value(int64(n)), nil, nil})
		if seen[key] {
			t.Fatalf("GenID(%s) returned key %v twice", tn, key)
		}
		seen[key] = true
		if err := st.DelData(ctx, key); err != nil {
			t.Fatalf("DelData(%s) failed with %s", tn, err)
		}
	}

	if err := st.DelSchema(ctx, tn); err != nil {
		t.Fatalf("DelSchema(%s) failed with %s", tn, err)
	}
}

// RunScanTest checks that mutating a table does not disturb an open scan.
func RunScanTest[K comparable](t *testing.T, st store.Store[K]) {
	t.Helper()

	ctx := context.Background()
	tn := sql.ID("scan_test")

	if err := st.SetSchema(ctx, testSchema(tn)); err != nil {
		t.Fatalf("SetSchema(%s) failed with %s", tn, err)
	}

	want := map[K]sql.Row{}
	keys := []K{}
	for n := int64(1); n <= 6; n += 1 {
		row := sql.Row{sql.Int64Value(n), sql.StringValue("scan"), nil}
		key := insertRow(t, st, tn, row)
		want[key] = row
		keys = append(keys, key)
	}

	it, err := st.ScanData(ctx, tn)
	if err != nil {
		t.Fatalf("ScanData(%s) failed with %s", tn, err)
	}
	defer it.Close()

	// Mutate the table while the scan is open.
	if err := st.DelData(ctx, keys[0]); err != nil {
		t.Fatalf("DelData(%s) failed with %s", tn, err)
	}
	if _, err := st.SetData(ctx, keys[1],
		sql.Row{sql.Int64Value(-1), sql.StringValue("mutated"), nil}); err != nil {
		t.Fatalf("SetData(%s) failed with %s", tn, err)
	}
	insertRow(t, st, tn, sql.Row{sql.Int64Value(7), sql.StringValue("added"), nil})

	rows := map[K]sql.Row{}
	for {
		key, row, err := it.Next(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next(%s) failed with %s", tn, err)
		}
		if _, ok := rows[key]; ok {
			t.Errorf("Next(%s) returned key %v twice", tn, key)
		}
		rows[key] = row
	}

	if !testutil.DeepEqual(rows, want) {
		t.Errorf("ScanData(%s) got %v want %v", tn, rows, want)
	}

	if err := st.DelSchema(ctx, tn); err != nil {
		t.Fatalf("DelSchema(%s) failed with %s", tn, err)
	}
}

// RunStoreTests runs all of the store contract tests.
func RunStoreTests[K comparable](t *testing.T, st store.Store[K]) {
	t.Helper()

	RunSchemaTest(t, st)
	RunRowsTest(t, st)
	RunScanTest(t, st)
}
