package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"store-service/internal/apperr"
	"store-service/internal/customers"
)

func (s *Store) InsertCustomer(ctx context.Context, nc customers.NewCustomer) (customers.Customer, error) {
	c := customers.Customer{UserID: nc.UserID, PhoneNumber: nc.PhoneNumber, BirthDate: nc.BirthDate}
	var birth sql.NullTime
	if nc.BirthDate != nil {
		birth = sql.NullTime{Time: *nc.BirthDate, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (user_id, phone_number, birth_date, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`, nc.UserID, nc.PhoneNumber, birth).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return customers.Customer{}, apperr.Conflict("customer", nc.UserID, "user already has a customer profile")
		}
		return customers.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	return c, nil
}

func (s *Store) CustomerByUser(ctx context.Context, userID string) (customers.Customer, error) {
	var (
		c     customers.Customer
		birth sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, phone_number, birth_date, created_at
		FROM customers
		WHERE user_id = $1`, userID).Scan(&c.ID, &c.UserID, &c.PhoneNumber, &birth, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customers.Customer{}, apperr.NotFound("customer", userID)
		}
		return customers.Customer{}, fmt.Errorf("failed to query customer: %w", err)
	}
	if birth.Valid {
		c.BirthDate = &birth.Time
	}
	return c, nil
}

func (s *Store) UpsertAddress(ctx context.Context, a customers.Address) (customers.Address, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO addresses (customer_id, province, city, street)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id) DO UPDATE
		SET province = EXCLUDED.province, city = EXCLUDED.city, street = EXCLUDED.street`,
		a.CustomerID, a.Province, a.City, a.Street)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return customers.Address{}, apperr.NotFound("customer", a.CustomerID)
		}
		return customers.Address{}, fmt.Errorf("failed to upsert address: %w", err)
	}
	return a, nil
}

func (s *Store) AddressOf(ctx context.Context, customerID int64) (customers.Address, error) {
	a := customers.Address{CustomerID: customerID}
	err := s.db.QueryRowContext(ctx, `
		SELECT province, city, street FROM addresses WHERE customer_id = $1`, customerID).
		Scan(&a.Province, &a.City, &a.Street)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customers.Address{}, apperr.NotFound("address", customerID)
		}
		return customers.Address{}, fmt.Errorf("failed to query address: %w", err)
	}
	return a, nil
}
