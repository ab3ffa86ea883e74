package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"store-service/internal/apperr"
	"store-service/internal/catalog"
)

const productColumns = `id, title, description, unit_price, inventory, created_at`

func scanProduct(row interface{ Scan(...any) error }) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.UnitPrice, &p.Inventory, &p.CreatedAt)
	return p, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, apperr.NotFound("product", id)
		}
		return catalog.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (s *Store) InsertProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (title, description, unit_price, inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+productColumns,
		np.Title, np.Description, np.UnitPrice, np.Inventory)
	p, err := scanProduct(row)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, u catalog.ProductUpdate) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE products
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    unit_price  = COALESCE($4, unit_price),
		    inventory   = COALESCE($5, inventory),
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id, u.Title, u.Description, u.UnitPrice, u.Inventory)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, apperr.NotFound("product", id)
		}
		return catalog.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.withTx(ctx, "delete product", func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&found)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("product", id)
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}
		var referenced int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE product_id = $1`, id).Scan(&referenced)
		if err != nil {
			return fmt.Errorf("failed to count order items: %w", err)
		}
		if referenced > 0 {
			return apperr.Conflict("product", id, catalog.ReferencedBy(referenced))
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			if pgCode(err) == codeForeignKeyViolation {
				return apperr.Conflict("product", id, "order items reference this product")
			}
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}
