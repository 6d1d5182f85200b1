package repl

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/kivisql/kivi/executor"
	"github.com/kivisql/kivi/parser"
	"github.com/kivisql/kivi/sql"
	"github.com/kivisql/kivi/store"
)

// SQL parses and executes statements from p until the input is exhausted,
// writing results and errors to w.
func SQL[K any](st store.Store[K], p parser.Parser, w io.Writer) {
	for {
		stmt, err := p.Parse()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}

		pay, err := executor.Execute(context.Background(), st, stmt)
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}

		switch pay := pay.(type) {
		case executor.Created, executor.Dropped:
			// No output.
		case executor.Inserted:
			fmt.Fprintln(w, "1 rows updated")
		case executor.Updated:
			fmt.Fprintf(w, "%d rows updated\n", pay.Count)
		case executor.Deleted:
			fmt.Fprintf(w, "%d rows updated\n", pay.Count)
		case executor.Selected:
			writeRows(w, pay)
		default:
			panic(fmt.Sprintf("unexpected payload: %#v", pay))
		}
	}
}

func writeRows(w io.Writer, sel executor.Selected) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)

	hdr := make([]string, len(sel.Columns))
	for cdx, col := range sel.Columns {
		hdr[cdx] = col.String()
	}
	tw.SetHeader(hdr)

	row := make([]string, len(sel.Columns))
	for _, r := range sel.Rows {
		for cdx, v := range r {
			if s, ok := v.(sql.StringValue); ok {
				row[cdx] = string(s)
			} else {
				row[cdx] = sql.Format(v)
			}
		}
		tw.Append(row)
	}
	tw.Render()
	fmt.Fprintf(w, "(%d rows)\n", tw.NumLines())
}
