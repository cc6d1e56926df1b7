package db

import (
	"context"
	"database/sql"
)

// DBTX is the handle the task store queries through, satisfied by both
// *sql.DB and *sql.Tx. Single-row reads and sync-engine writes run against
// the plain connection; the facade's multi-row mutations hand the store a
// transaction instead, without the store noticing the difference.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Compile-time verification that *sql.DB and *sql.Tx satisfy DBTX.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
