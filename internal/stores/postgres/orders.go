package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"store-service/internal/apperr"
	"store-service/internal/orders"
)

func getOrder(ctx context.Context, q querier, id int64, lock bool) (orders.Order, error) {
	query := `SELECT id, customer_id, status, created_at FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var (
		o      orders.Order
		status string
	)
	err := q.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.CustomerID, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, apperr.NotFound("order", id)
		}
		return orders.Order{}, fmt.Errorf("failed to query order: %w", err)
	}
	o.Status = orders.Status(status)

	rows, err := q.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, id)
	if err != nil {
		return orders.Order{}, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	o.Items = []orders.Item{}
	for rows.Next() {
		var item orders.Item
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return orders.Order{}, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return orders.Order{}, fmt.Errorf("error iterating order items: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	return getOrder(ctx, s.db, id, false)
}

func (s *Store) ListOrders(ctx context.Context, scope orders.Scope) ([]orders.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.customer_id, o.status, o.created_at, oi.product_id, oi.quantity, oi.unit_price
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE $1 OR o.customer_id = $2
		ORDER BY o.id, oi.id`, scope.All, scope.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	list := []orders.Order{}
	for rows.Next() {
		var (
			o         orders.Order
			status    string
			productID sql.NullInt64
			quantity  sql.NullInt64
			unitPrice sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &status, &o.CreatedAt, &productID, &quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if n := len(list); n == 0 || list[n-1].ID != o.ID {
			o.Status = orders.Status(status)
			o.Items = []orders.Item{}
			list = append(list, o)
		}
		if !productID.Valid {
			continue
		}
		item := orders.Item{ProductID: productID.Int64, Quantity: int(quantity.Int64)}
		if err := item.UnitPrice.Scan(unitPrice.String); err != nil {
			return nil, fmt.Errorf("failed to scan order item price: %w", err)
		}
		last := &list[len(list)-1]
		last.Items = append(last.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return list, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, next orders.Status, check func(from, to orders.Status) error) (orders.Order, error) {
	var o orders.Order
	err := s.withTx(ctx, "update order status", func(tx *sql.Tx) error {
		current, err := getOrder(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := check(current.Status, next); err != nil {
			return err
		}
		if current.Status != next {
			_, err = tx.ExecContext(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(next))
			if err != nil {
				return fmt.Errorf("failed to update order status: %w", err)
			}
			current.Status = next
		}
		o = current
		return nil
	})
	return o, err
}

func insertOrder(ctx context.Context, tx *sql.Tx, o orders.Order) (orders.Order, error) {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id`, o.CustomerID, string(o.Status), o.CreatedAt).Scan(&o.ID)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return orders.Order{}, apperr.NotFound("customer", o.CustomerID)
		}
		return orders.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	for _, item := range o.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`, o.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return orders.Order{}, fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return o, nil
}
