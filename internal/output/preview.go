package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/ibeslink/internal/frame"
)

// Preview renders the first n rows of t as a box table followed by the
// total row count.
func Preview(w io.Writer, t *frame.Table, n int) {
	if t.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for i, r := range t.Rows {
		if i >= n {
			break
		}
		row := make(table.Row, len(r))
		for j, v := range r {
			row[j] = frame.Format(v)
		}
		tw.AppendRow(row)
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", t.Len())
}
