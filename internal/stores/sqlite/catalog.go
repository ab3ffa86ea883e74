package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"store-service/internal/apperr"
	"store-service/internal/catalog"
	"store-service/internal/money"
)

const productColumns = `id, title, description, unit_price, inventory, created_at`

func scanProduct(row interface{ Scan(...any) error }) (catalog.Product, error) {
	var (
		p         catalog.Product
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.UnitPrice, &p.Inventory, &createdAt); err != nil {
		return catalog.Product{}, err
	}
	t, err := parseRFC3339(createdAt)
	if err != nil {
		return catalog.Product{}, err
	}
	p.CreatedAt = t
	return p, nil
}

func getProduct(ctx context.Context, q querier, id int64) (catalog.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, apperr.NotFound("product", id)
		}
		return catalog.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	return getProduct(ctx, s.db, id)
}

func (s *Store) InsertProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	now := formatTime(time.Now())
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (title, description, unit_price, inventory, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+productColumns,
		np.Title, np.Description, money.Format(np.UnitPrice), np.Inventory, now, now)
	p, err := scanProduct(row)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, u catalog.ProductUpdate) (catalog.Product, error) {
	var p catalog.Product
	err := s.withTx(ctx, "update product", func(tx *sql.Tx) error {
		current, err := getProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.Title != nil {
			current.Title = *u.Title
		}
		if u.Description != nil {
			current.Description = *u.Description
		}
		if u.UnitPrice != nil {
			current.UnitPrice = *u.UnitPrice
		}
		if u.Inventory != nil {
			current.Inventory = *u.Inventory
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET title = ?, description = ?, unit_price = ?, inventory = ?, updated_at = ?
			WHERE id = ?`,
			current.Title, current.Description, money.Format(current.UnitPrice), current.Inventory,
			formatTime(time.Now()), id)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		p = current
		return nil
	})
	return p, err
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.withTx(ctx, "delete product", func(tx *sql.Tx) error {
		var referenced int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE product_id = ?`, id).Scan(&referenced)
		if err != nil {
			return fmt.Errorf("failed to count order items: %w", err)
		}
		if referenced > 0 {
			return apperr.Conflict("product", id, catalog.ReferencedBy(referenced))
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("product", id)
		}
		return nil
	})
}
