// Package postgres is the production implementation of the store repositories.
//
// Cart mutations take a shared lock on the cart row and checkout takes an exclusive
// one, so a checkout waits for in-flight line edits and edits arriving later see
// the cart gone. Locks are per cart; unrelated carts never wait on each other.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

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

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

// OpenDB connects through the pgx database/sql driver and verifies the connection.
func OpenDB(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Up(ctx, s.db, migrations.Postgres)
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

// classify turns serialization failures and deadlocks into retryable TransactionErrors.
func classify(op string, err error) error {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return apperr.Transaction(op, err)
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
