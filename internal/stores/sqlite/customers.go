package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"store-service/internal/apperr"
	"store-service/internal/customers"
)

func (s *Store) InsertCustomer(ctx context.Context, nc customers.NewCustomer) (customers.Customer, error) {
	var birth sql.NullString
	if nc.BirthDate != nil {
		birth = sql.NullString{String: nc.BirthDate.Format(dateLayout), Valid: true}
	}
	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (user_id, phone_number, birth_date, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`, nc.UserID, nc.PhoneNumber, birth, formatTime(now)).Scan(&id)
	if err != nil {
		if isConstraint(err, sqliteConstraintUnique) {
			return customers.Customer{}, apperr.Conflict("customer", nc.UserID, "user already has a customer profile")
		}
		return customers.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	return customers.Customer{
		ID:          id,
		UserID:      nc.UserID,
		PhoneNumber: nc.PhoneNumber,
		BirthDate:   nc.BirthDate,
		CreatedAt:   now,
	}, nil
}

func (s *Store) CustomerByUser(ctx context.Context, userID string) (customers.Customer, error) {
	var (
		c         customers.Customer
		birth     sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, phone_number, birth_date, created_at
		FROM customers
		WHERE user_id = ?`, userID).Scan(&c.ID, &c.UserID, &c.PhoneNumber, &birth, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customers.Customer{}, apperr.NotFound("customer", userID)
		}
		return customers.Customer{}, fmt.Errorf("failed to query customer: %w", err)
	}
	if birth.Valid {
		d, err := time.Parse(dateLayout, birth.String)
		if err != nil {
			return customers.Customer{}, fmt.Errorf("sqlite: parse date %q: %w", birth.String, err)
		}
		c.BirthDate = &d
	}
	if c.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return customers.Customer{}, err
	}
	return c, nil
}

func (s *Store) UpsertAddress(ctx context.Context, a customers.Address) (customers.Address, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO addresses (customer_id, province, city, street)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (customer_id) DO UPDATE
		SET province = excluded.province, city = excluded.city, street = excluded.street`,
		a.CustomerID, a.Province, a.City, a.Street)
	if err != nil {
		if isConstraint(err, sqliteConstraintForeignKey) {
			return customers.Address{}, apperr.NotFound("customer", a.CustomerID)
		}
		return customers.Address{}, fmt.Errorf("failed to upsert address: %w", err)
	}
	return a, nil
}

func (s *Store) AddressOf(ctx context.Context, customerID int64) (customers.Address, error) {
	a := customers.Address{CustomerID: customerID}
	err := s.db.QueryRowContext(ctx, `
		SELECT province, city, street FROM addresses WHERE customer_id = ?`, customerID).
		Scan(&a.Province, &a.City, &a.Street)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customers.Address{}, apperr.NotFound("address", customerID)
		}
		return customers.Address{}, fmt.Errorf("failed to query address: %w", err)
	}
	return a, nil
}
