package output

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ibeslink/internal/db"
	"github.com/sells-group/ibeslink/internal/frame"
)

// Publisher replaces a PostgreSQL table with a link table.
type Publisher struct {
	pool db.Pool
}

// NewPublisher creates a Publisher writing through pool.
func NewPublisher(pool db.Pool) *Publisher {
	return &Publisher{pool: pool}
}

// Publish creates target ("schema.table") if needed, truncates it and
// copies t in, all in one transaction. Every column is stored as TEXT.
func (p *Publisher) Publish(ctx context.Context, target string, t *frame.Table) (int64, error) {
	schema, table, err := db.SplitTable(target)
	if err != nil {
		return 0, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "publish: begin tx")
	}

	n, err := publishTx(ctx, tx, schema, table, t)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "publish: commit tx")
	}

	zap.L().Info("publish: link table loaded",
		zap.String("table", schema+"."+table),
		zap.Int64("rows", n),
	)
	return n, nil
}

func publishTx(ctx context.Context, tx pgx.Tx, schema, table string, t *frame.Table) (int64, error) {
	if _, err := tx.Exec(ctx, CreateSchemaSQL(schema)); err != nil {
		return 0, eris.Wrapf(err, "publish: create schema %s", schema)
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(schema, table, t.Columns)); err != nil {
		return 0, eris.Wrapf(err, "publish: create table %s.%s", schema, table)
	}
	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{schema, table}.Sanitize()); err != nil {
		return 0, eris.Wrapf(err, "publish: truncate %s.%s", schema, table)
	}

	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]any, len(r))
		for j, v := range r {
			if v != nil {
				vals[j] = frame.Format(v)
			}
		}
		rows[i] = vals
	}
	return db.CopyFromSchema(ctx, tx, schema, table, t.Columns, rows)
}

// CreateSchemaSQL returns the idempotent schema DDL.
func CreateSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()
}

// CreateTableSQL returns the idempotent table DDL with TEXT columns.
func CreateTableSQL(schema, table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pgx.Identifier{c}.Sanitize() + " TEXT"
	}
	return "CREATE TABLE IF NOT EXISTS " + pgx.Identifier{schema, table}.Sanitize() +
		" (" + strings.Join(defs, ", ") + ")"
}
