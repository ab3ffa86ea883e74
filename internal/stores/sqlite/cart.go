package sqlite

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
	_, err := s.db.ExecContext(ctx, `INSERT INTO carts (id, created_at) VALUES (?, ?)`,
		c.ID.String(), formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	return nil
}

func (s *Store) GetCart(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	var c cart.Cart
	err := s.withTx(ctx, "get cart", func(tx *sql.Tx) error {
		var createdAt string
		err := tx.QueryRowContext(ctx, `SELECT created_at FROM carts WHERE id = ?`, id.String()).Scan(&createdAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("cart", id)
			}
			return fmt.Errorf("failed to query cart: %w", err)
		}
		t, err := parseRFC3339(createdAt)
		if err != nil {
			return err
		}
		items, err := cartLines(ctx, tx, id)
		if err != nil {
			return err
		}
		c = cart.Cart{ID: id, CreatedAt: t, Items: items}
		return nil
	})
	return c, err
}

// cartLines returns the cart's lines joined with current product prices.
func cartLines(ctx context.Context, q querier, id uuid.UUID) ([]cart.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.product_id`, id.String())
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

func cartExists(ctx context.Context, q querier, id uuid.UUID) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM carts WHERE id = ?`, id.String()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("cart", id)
		}
		return fmt.Errorf("failed to query cart: %w", err)
	}
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id.String())
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
	var item cart.Item
	err := s.withTx(ctx, "add cart item", func(tx *sql.Tx) error {
		if err := cartExists(ctx, tx, cartID); err != nil {
			return err
		}
		p, err := getProduct(ctx, tx, productID)
		if err != nil {
			if apperr.IsNotFound(err) {
				return apperr.Invalid("product_id", fmt.Sprintf("no product with id %d", productID))
			}
			return err
		}
		var total int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES (?, ?, ?)
			ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + excluded.quantity
			WHERE cart_items.quantity + excluded.quantity <= ?
			RETURNING quantity`, cartID.String(), productID, quantity, cart.MaxQuantity).Scan(&total)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Invalid("quantity", fmt.Sprintf("merged line would exceed %d", cart.MaxQuantity))
		}
		if err != nil {
			return fmt.Errorf("failed to add product to cart: %w", err)
		}
		item = cart.Item{ProductID: productID, Quantity: total, UnitPrice: p.UnitPrice}
		return nil
	})
	return item, err
}

func (s *Store) UpdateItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (cart.Item, error) {
	var item cart.Item
	err := s.withTx(ctx, "update cart item", func(tx *sql.Tx) error {
		if err := cartExists(ctx, tx, cartID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_id = ?`,
			quantity, cartID.String(), productID)
		if err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("cart item", fmt.Sprintf("%s/%d", cartID, productID))
		}
		p, err := getProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		item = cart.Item{ProductID: productID, Quantity: quantity, UnitPrice: p.UnitPrice}
		return nil
	})
	return item, err
}

func (s *Store) RemoveItem(ctx context.Context, cartID uuid.UUID, productID int64) error {
	return s.withTx(ctx, "remove cart item", func(tx *sql.Tx) error {
		if err := cartExists(ctx, tx, cartID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`,
			cartID.String(), productID)
		if err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteCartsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired carts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired carts: %w", err)
	}
	return n, nil
}
