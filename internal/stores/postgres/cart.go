package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"store-service/internal/apperr"
	"store-service/internal/cart"
)

func (s *Store) InsertCart(ctx context.Context, c cart.Cart) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO carts (id, created_at) VALUES ($1, $2)`, c.ID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	return nil
}

func (s *Store) GetCart(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	c := cart.Cart{ID: id}
	err := s.withTx(ctx, "get cart", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT created_at FROM carts WHERE id = $1`, id).Scan(&c.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("cart", id)
			}
			return fmt.Errorf("failed to query cart: %w", err)
		}
		c.Items, err = cartLines(ctx, tx, id)
		return err
	})
	if err != nil {
		return cart.Cart{}, err
	}
	return c, nil
}

// cartLines returns the cart's lines joined with current product prices.
func cartLines(ctx context.Context, q querier, id uuid.UUID) ([]cart.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []cart.Item{}
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return items, nil
}

// shareLockCart holds the cart row against a concurrent checkout until commit.
func shareLockCart(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM carts WHERE id = $1 FOR SHARE`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("cart", id)
		}
		return fmt.Errorf("failed to lock cart: %w", err)
	}
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("cart", id)
	}
	return nil
}

func (s *Store) AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (cart.Item, error) {
	item := cart.Item{ProductID: productID}
	err := s.withTx(ctx, "add cart item", func(tx *sql.Tx) error {
		if err := shareLockCart(ctx, tx, cartID); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `SELECT unit_price FROM products WHERE id = $1 FOR SHARE`, productID).
			Scan(&item.UnitPrice)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.Invalid("product_id", fmt.Sprintf("no product with id %d", productID))
			}
			return fmt.Errorf("failed to query product: %w", err)
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			WHERE cart_items.quantity::bigint + EXCLUDED.quantity <= $4
			RETURNING quantity`, cartID, productID, quantity, cart.MaxQuantity).Scan(&item.Quantity)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Invalid("quantity", fmt.Sprintf("merged line would exceed %d", cart.MaxQuantity))
		}
		if err != nil {
			return fmt.Errorf("failed to add product to cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return cart.Item{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (cart.Item, error) {
	item := cart.Item{ProductID: productID}
	err := s.withTx(ctx, "update cart item", func(tx *sql.Tx) error {
		if err := shareLockCart(ctx, tx, cartID); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `
			UPDATE cart_items ci
			SET quantity = $3
			FROM products p
			WHERE ci.cart_id = $1 AND ci.product_id = $2 AND p.id = ci.product_id
			RETURNING ci.quantity, p.unit_price`, cartID, productID, quantity).Scan(&item.Quantity, &item.UnitPrice)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("cart item", fmt.Sprintf("%s/%d", cartID, productID))
			}
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return cart.Item{}, err
	}
	return item, nil
}

func (s *Store) RemoveItem(ctx context.Context, cartID uuid.UUID, productID int64) error {
	return s.withTx(ctx, "remove cart item", func(tx *sql.Tx) error {
		if err := shareLockCart(ctx, tx, cartID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
		if err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteCartsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired carts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired carts: %w", err)
	}
	return n, nil
}
