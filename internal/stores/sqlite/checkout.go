package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"store-service/internal/cart"
	"store-service/internal/checkout"
	"store-service/internal/orders"
)

type checkoutTx struct {
	tx *sql.Tx
}

// WithTransaction runs a checkout. The single pooled connection means no other
// transaction can touch the cart until this one ends.
func (s *Store) WithTransaction(ctx context.Context, fn func(checkout.Tx) error) error {
	return s.withTx(ctx, "checkout", func(tx *sql.Tx) error {
		return fn(checkoutTx{tx: tx})
	})
}

func (t checkoutTx) LockCart(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error) {
	if err := cartExists(ctx, t.tx, cartID); err != nil {
		return nil, err
	}
	return cartLines(ctx, t.tx, cartID)
}

func (t checkoutTx) InsertOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	return insertOrder(ctx, t.tx, o)
}

func (t checkoutTx) DeleteCart(ctx context.Context, cartID uuid.UUID) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, cartID.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete cart: %w", err)
	}
	return n == 1, nil
}
