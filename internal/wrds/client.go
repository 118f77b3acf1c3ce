// Package wrds fetches reference tables from the WRDS PostgreSQL service.
package wrds

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ibeslink/internal/db"
	"github.com/sells-group/ibeslink/internal/frame"
)

// Source fetches a column subset of a library table.
type Source interface {
	Fetch(ctx context.Context, library, table string, columns []string) (*frame.Table, error)
}

// Client implements Source over a PostgreSQL pool. WRDS exposes each
// library (ibes, crsp, comp, ...) as a schema.
type Client struct {
	pool db.Pool
}

// NewClient creates a Client backed by pool.
func NewClient(pool db.Pool) *Client {
	return &Client{pool: pool}
}

// Fetch runs SELECT <columns> FROM <library>.<table> and returns every row.
func (c *Client) Fetch(ctx context.Context, library, table string, columns []string) (*frame.Table, error) {
	name := library + "." + table
	if len(columns) == 0 {
		return nil, eris.Errorf("wrds: fetch %s: no columns requested", name)
	}

	sql := SelectSQL(library, table, columns)
	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrapf(err, "wrds: fetch %s", name)
	}
	defer rows.Close()

	var data [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrapf(err, "wrds: fetch %s: scan row", name)
		}
		data = append(data, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "wrds: fetch %s: iterate rows", name)
	}

	zap.L().Debug("wrds: fetched table",
		zap.String("table", name),
		zap.Strings("columns", columns),
		zap.Int("rows", len(data)),
	)

	return frame.New(columns, data), nil
}

// SelectSQL builds the projection query with every identifier quoted.
func SelectSQL(library, table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return "SELECT " + strings.Join(quoted, ", ") + " FROM " + pgx.Identifier{library, table}.Sanitize()
}
