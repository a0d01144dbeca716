// Package postgres implements the catalog storage contract on PostgreSQL
// using pgx. All writes run through explicit transactions; nested Begin maps
// to savepoints, which is what gives batches per-submission isolation.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stringauthority/registry/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same query code
// serves both pooled reads and transactional writes.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a connection pool and implements catalog.TxBeginner plus the
// read-side queries the HTTP API serves outside of ingestion transactions.
type DB struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// EnsureSchema applies the embedded schema. Every statement is idempotent,
// so running it at startup is safe.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Begin opens the outer transaction for a batch.
func (db *DB) Begin(ctx context.Context) (catalog.Tx, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &txStore{queries: queries{db: tx}, tx: tx}, nil
}

// txStore is one transaction scope over the store queries.
type txStore struct {
	queries
	tx pgx.Tx
}

// Begin opens a nested transaction. pgx implements this as a savepoint.
func (t *txStore) Begin(ctx context.Context) (catalog.Tx, error) {
	nested, err := t.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin nested transaction: %w", err)
	}
	return &txStore{queries: queries{db: nested}, tx: nested}, nil
}

func (t *txStore) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txStore) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}
