package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"store-service/internal/apperr"
	"store-service/internal/money"
	"store-service/internal/orders"
)

func getOrder(ctx context.Context, q querier, id int64) (orders.Order, error) {
	var (
		o         orders.Order
		status    string
		createdAt string
	)
	err := q.QueryRowContext(ctx, `SELECT id, customer_id, status, created_at FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.CustomerID, &status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, apperr.NotFound("order", id)
		}
		return orders.Order{}, fmt.Errorf("failed to query order: %w", err)
	}
	o.Status = orders.Status(status)
	if o.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return orders.Order{}, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ?
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
	var o orders.Order
	err := s.withTx(ctx, "get order", func(tx *sql.Tx) error {
		var err error
		o, err = getOrder(ctx, tx, id)
		return err
	})
	return o, err
}

func (s *Store) ListOrders(ctx context.Context, scope orders.Scope) ([]orders.Order, error) {
	list := []orders.Order{}
	err := s.withTx(ctx, "list orders", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, customer_id, status, created_at
			FROM orders
			WHERE ? OR customer_id = ?
			ORDER BY id`, scope.All, scope.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to query orders: %w", err)
		}
		index := map[int64]int{}
		for rows.Next() {
			var (
				o         orders.Order
				status    string
				createdAt string
			)
			if err := rows.Scan(&o.ID, &o.CustomerID, &status, &createdAt); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order: %w", err)
			}
			o.Status = orders.Status(status)
			if o.CreatedAt, err = parseRFC3339(createdAt); err != nil {
				rows.Close()
				return err
			}
			o.Items = []orders.Item{}
			index[o.ID] = len(list)
			list = append(list, o)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating orders: %w", err)
		}
		rows.Close()

		items, err := tx.QueryContext(ctx, `
			SELECT oi.order_id, oi.product_id, oi.quantity, oi.unit_price
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE ? OR o.customer_id = ?
			ORDER BY oi.order_id, oi.id`, scope.All, scope.CustomerID)
		if err != nil {
			return fmt.Errorf("failed to query order items: %w", err)
		}
		defer items.Close()
		for items.Next() {
			var (
				orderID int64
				item    orders.Item
			)
			if err := items.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
				return fmt.Errorf("failed to scan order item: %w", err)
			}
			if i, ok := index[orderID]; ok {
				list[i].Items = append(list[i].Items, item)
			}
		}
		return items.Err()
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, next orders.Status, check func(from, to orders.Status) error) (orders.Order, error) {
	var o orders.Order
	err := s.withTx(ctx, "update order status", func(tx *sql.Tx) error {
		current, err := getOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(current.Status, next); err != nil {
			return err
		}
		if current.Status != next {
			_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
				string(next), formatTime(time.Now()), id)
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

// insertOrder writes the order row and its items inside the checkout transaction.
func insertOrder(ctx context.Context, tx *sql.Tx, o orders.Order) (orders.Order, error) {
	created := formatTime(o.CreatedAt)
	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`, o.CustomerID, string(o.Status), created, created).Scan(&o.ID)
	if err != nil {
		if isConstraint(err, sqliteConstraintForeignKey) {
			return orders.Order{}, apperr.NotFound("customer", o.CustomerID)
		}
		return orders.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	for _, item := range o.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)`, o.ID, item.ProductID, item.Quantity, money.Format(item.UnitPrice))
		if err != nil {
			return orders.Order{}, fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return o, nil
}
