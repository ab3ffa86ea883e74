package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
	"store-service/internal/stores/storetest"
)

// The suite needs a disposable database; every subtest truncates all tables.
func TestStore(t *testing.T) {
	dsn := os.Getenv("STORE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("STORE_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	s, err := OpenDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	storetest.Run(t, func(t *testing.T) storetest.Store {
		_, err := s.DB().ExecContext(ctx, `
			TRUNCATE order_items, orders, cart_items, carts, addresses, customers, products
			RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		return s
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code        string
		transaction bool
	}{
		{codeSerializationFailure, true},
		{codeDeadlockDetected, true},
		{codeUniqueViolation, false},
		{codeForeignKeyViolation, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: tt.code})
			assert.Equal(t, tt.transaction, apperr.IsTransaction(classify("checkout", err)))
		})
	}
	assert.False(t, apperr.IsTransaction(classify("checkout", errors.New("plain"))))
}
