// Package frame holds the small in-memory table type the linker joins on.
package frame

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rotisserie/eris"
)

// Table is a flat set of rows with named columns. Operations return new
// tables and never modify the receiver's rows.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates a table. Values are normalized so equal ids compare equal
// regardless of the driver's numeric type.
func New(columns []string, rows [][]any) *Table {
	out := make([][]any, len(rows))
	for i, r := range rows {
		nr := make([]any, len(r))
		for j, v := range r {
			nr[j] = Normalize(v)
		}
		out[i] = nr
	}
	return &Table{Columns: slices.Clone(columns), Rows: out}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	return slices.Index(t.Columns, col)
}

// Value returns the value of col in row i, or nil if the column is unknown.
func (t *Table) Value(i int, col string) any {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	return t.Rows[i][idx]
}

// Row is a read-only view of one row used by Filter predicates.
type Row struct {
	t   *Table
	idx int
}

// Get returns the value of col.
func (r Row) Get(col string) any { return r.t.Value(r.idx, col) }

// String returns the value of col as text ("" for nil).
func (r Row) String(col string) string { return Format(r.Get(col)) }

// Distinct drops rows equal to an earlier row in every column. The first
// occurrence wins, so order is stable and the operation is idempotent.
func (t *Table) Distinct() *Table {
	seen := make(map[string]struct{}, len(t.Rows))
	out := &Table{Columns: slices.Clone(t.Columns)}
	for _, r := range t.Rows {
		k := rowKey(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Filter keeps the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Columns: slices.Clone(t.Columns)}
	for i, r := range t.Rows {
		if keep(Row{t: t, idx: i}) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// In keeps rows whose col value, as text, is one of allowed.
func (t *Table) In(col string, allowed ...string) (*Table, error) {
	if t.Index(col) < 0 {
		return nil, eris.Errorf("frame: unknown column %q", col)
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return t.Filter(func(r Row) bool {
		if r.Get(col) == nil {
			return false
		}
		_, ok := set[r.String(col)]
		return ok
	}), nil
}

// Select projects the table onto cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			return nil, eris.Errorf("frame: unknown column %q", c)
		}
	}
	out := &Table{Columns: slices.Clone(cols), Rows: make([][]any, len(t.Rows))}
	for i, r := range t.Rows {
		nr := make([]any, len(idx))
		for j, k := range idx {
			nr[j] = r[k]
		}
		out.Rows[i] = nr
	}
	return out, nil
}

// Drop removes cols. Unknown columns are an error.
func (t *Table) Drop(cols ...string) (*Table, error) {
	for _, c := range cols {
		if t.Index(c) < 0 {
			return nil, eris.Errorf("frame: unknown column %q", c)
		}
	}
	var keep []string
	for _, c := range t.Columns {
		if !slices.Contains(cols, c) {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}

// Normalize maps driver values onto a small set of comparable types:
// int64, float64, string, bool, time.Time and nil. Integral floats become
// int64 because CRSP stores permno/permco as double precision.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	case pgtype.Numeric:
		if !x.Valid || x.NaN {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return normalizeFloat(f.Float64)
	case []byte:
		return string(x)
	case string, bool, time.Time:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

// Format renders a normalized value as CSV text.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

// valueKey encodes a value with its type so the string "1" and the id 1
// never collide.
func valueKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "n:"
	case string:
		return "s:" + x
	case int64:
		return "i:" + strconv.FormatInt(x, 10)
	case float64:
		return "f:" + Format(x)
	default:
		return fmt.Sprintf("%T:%s", v, Format(v))
	}
}

func rowKey(r []any) string {
	var b strings.Builder
	for i, v := range r {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		k := valueKey(v)
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}
