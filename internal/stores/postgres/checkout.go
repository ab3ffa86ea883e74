package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"store-service/internal/apperr"
	"store-service/internal/cart"
	"store-service/internal/checkout"
	"store-service/internal/orders"
)

type checkoutTx struct {
	tx *sql.Tx
}

func (s *Store) WithTransaction(ctx context.Context, fn func(checkout.Tx) error) error {
	return s.withTx(ctx, "checkout", func(tx *sql.Tx) error {
		return fn(checkoutTx{tx: tx})
	})
}

// LockCart takes the cart row FOR UPDATE. A concurrent checkout of the same cart blocks
// here and, once the winner commits its delete, finds no row.
func (t checkoutTx) LockCart(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error) {
	var id uuid.UUID
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("cart", cartID)
		}
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	return cartLines(ctx, t.tx, cartID)
}

func (t checkoutTx) InsertOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	return insertOrder(ctx, t.tx, o)
}

func (t checkoutTx) DeleteCart(ctx context.Context, cartID uuid.UUID) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	return n == 1, nil
}
