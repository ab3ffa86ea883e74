// Package customers resolves authenticated callers to customers and keeps their profile.
package customers

import (
	"context"
	"fmt"
	"strings"

	"store-service/internal/apperr"
)

// Repository persists customers. InsertCustomer returns a ConflictError when the user
// already has a customer; CustomerByUser and AddressOf return NotFoundError when absent.
type Repository interface {
	InsertCustomer(ctx context.Context, nc NewCustomer) (Customer, error)
	CustomerByUser(ctx context.Context, userID string) (Customer, error)
	UpsertAddress(ctx context.Context, a Address) (Address, error)
	AddressOf(ctx context.Context, customerID int64) (Address, error)
}

type Conf struct {
	repo Repository
}

func NewConf(repo Repository) (Conf, error) {
	if repo == nil {
		return Conf{}, fmt.Errorf("customers repository is nil")
	}
	return Conf{repo: repo}, nil
}

// Register creates the customer for an authenticated user.
func (c *Conf) Register(ctx context.Context, nc NewCustomer) (Customer, error) {
	nc.UserID = strings.TrimSpace(nc.UserID)
	if nc.UserID == "" {
		return Customer{}, apperr.Invalid("user_id", "must not be empty")
	}
	nc.PhoneNumber = strings.TrimSpace(nc.PhoneNumber)
	return c.repo.InsertCustomer(ctx, nc)
}

// Resolve maps the caller's user id to its customer.
func (c *Conf) Resolve(ctx context.Context, userID string) (Customer, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Customer{}, apperr.NotFound("customer", nil)
	}
	return c.repo.CustomerByUser(ctx, userID)
}

// SetAddress replaces the caller's address. Province, city and street are required.
func (c *Conf) SetAddress(ctx context.Context, userID string, a Address) (Address, error) {
	a.Province = strings.TrimSpace(a.Province)
	a.City = strings.TrimSpace(a.City)
	a.Street = strings.TrimSpace(a.Street)
	for _, f := range []struct{ name, value string }{
		{"province", a.Province},
		{"city", a.City},
		{"street", a.Street},
	} {
		if f.value == "" {
			return Address{}, apperr.Invalid(f.name, "must not be empty")
		}
	}
	cust, err := c.Resolve(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	a.CustomerID = cust.ID
	return c.repo.UpsertAddress(ctx, a)
}

// AddressOf returns the caller's address.
func (c *Conf) AddressOf(ctx context.Context, userID string) (Address, error) {
	cust, err := c.Resolve(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	return c.repo.AddressOf(ctx, cust.ID)
}
