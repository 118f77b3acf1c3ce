package frame

import (
	"slices"

	"github.com/rotisserie/eris"
)

// InnerJoin joins left and right where left[leftOn] equals right[rightOn].
// Output columns are the left columns followed by the right columns; output
// rows follow left row order, then right row order within a key. Rows with a
// nil key on either side never match.
func InnerJoin(left, right *Table, leftOn, rightOn string) (*Table, error) {
	li := left.Index(leftOn)
	if li < 0 {
		return nil, eris.Errorf("frame: join: left table has no column %q", leftOn)
	}
	ri := right.Index(rightOn)
	if ri < 0 {
		return nil, eris.Errorf("frame: join: right table has no column %q", rightOn)
	}
	for _, c := range right.Columns {
		if slices.Contains(left.Columns, c) {
			return nil, eris.Errorf("frame: join: column %q exists on both sides", c)
		}
	}

	buckets := make(map[string][]int, len(right.Rows))
	for i, r := range right.Rows {
		if r[ri] == nil {
			continue
		}
		k := valueKey(r[ri])
		buckets[k] = append(buckets[k], i)
	}

	out := &Table{Columns: append(slices.Clone(left.Columns), right.Columns...)}
	for _, l := range left.Rows {
		if l[li] == nil {
			continue
		}
		for _, j := range buckets[valueKey(l[li])] {
			row := make([]any, 0, len(out.Columns))
			row = append(row, l...)
			row = append(row, right.Rows[j]...)
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
