// Package sqlite is the embedded implementation of the store repositories, used for
// local development and as the engine behind the repository test-suite.
//
// The pool is limited to one connection, so transactions are fully serialized. That
// single-writer model is what stands in for the row locks the postgres store takes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"store-service/internal/apperr"
	"store-service/internal/catalog"
	"store-service/internal/cart"
	"store-service/internal/checkout"
	"store-service/internal/customers"
	"store-service/internal/orders"
	"store-service/internal/stores/migrations"
)

var (
	_ catalog.Repository   = (*Store)(nil)
	_ cart.Repository      = (*Store)(nil)
	_ orders.Repository    = (*Store)(nil)
	_ customers.Repository = (*Store)(nil)
	_ checkout.Repository  = (*Store)(nil)
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path. Call Migrate before use.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Up(ctx, s.db, migrations.SQLite)
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Transaction(op, err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return apperr.Transaction(op, errors.Join(err, er))
		}
		return classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Transaction(op, err)
	}
	return nil
}

// classify turns a busy or locked database into a retryable TransactionError.
func classify(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return apperr.Transaction(op, err)
		}
	}
	return err
}

const (
	sqliteConstraintUnique     = sqlite3.SQLITE_CONSTRAINT_UNIQUE
	sqliteConstraintForeignKey = sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
)

func isConstraint(err error, code int) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == code
}
