package repository

import (
	"context"
	"database/sql"
)

// DBTX is the executor surface shared by *sql.DB and *sql.Tx, so every query
// can run standalone or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
