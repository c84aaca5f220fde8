package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// querier is the part of *pgxpool.Pool and pgx.Tx the repositories use.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables this package needs. It is idempotent.
func EnsureSchema(ctx context.Context, q querier) error {
	_, err := q.Exec(ctx, schema)
	return err
}
