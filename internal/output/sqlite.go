package output

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/ibeslink/internal/frame"
)

// SQLiteTable is the table WriteSQLite replaces.
const SQLiteTable = "link"

// WriteSQLite replaces the link table in the SQLite database at path with
// the contents of t. Columns are declared without a type so ids keep their
// numeric storage class.
func WriteSQLite(ctx context.Context, path string, t *frame.Table) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return eris.Wrap(err, "output: sqlite open")
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "output: sqlite begin")
	}
	if err := writeSQLiteTx(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	return eris.Wrap(tx.Commit(), "output: sqlite commit")
}

func writeSQLiteTx(ctx context.Context, tx *sql.Tx, t *frame.Table) error {
	name := quoteIdent(SQLiteTable)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return eris.Wrap(err, "output: sqlite drop table")
	}

	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+name+" ("+strings.Join(cols, ", ")+")"); err != nil {
		return eris.Wrap(err, "output: sqlite create table")
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+name+" ("+strings.Join(cols, ", ")+") VALUES ("+strings.Join(marks, ", ")+")")
	if err != nil {
		return eris.Wrap(err, "output: sqlite prepare insert")
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		args := make([]any, len(r))
		for i, v := range r {
			args[i] = sqliteValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return eris.Wrap(err, "output: sqlite insert")
		}
	}
	return nil
}

func sqliteValue(v any) any {
	switch v.(type) {
	case nil, int64, float64, string, bool:
		return v
	default:
		return frame.Format(v)
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
