// Package catalog is the read path for products plus a narrow set of admin writes
// (price, inventory, title and protected deletion).
package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"store-service/internal/apperr"
	"store-service/internal/money"
)

const minTitleLength = 5

// Repository is implemented by the SQL stores.
//
// DeleteProduct must refuse with a ConflictError while any order item references the product.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	InsertProduct(ctx context.Context, np NewProduct) (Product, error)
	UpdateProduct(ctx context.Context, id int64, u ProductUpdate) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type Conf struct {
	repo Repository
}

func NewConf(repo Repository) (Conf, error) {
	if repo == nil {
		return Conf{}, fmt.Errorf("catalog repository is nil")
	}
	return Conf{repo: repo}, nil
}

// GetProduct returns the latest committed product row.
func (c *Conf) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, apperr.Invalid("product_id", "must be a positive integer")
	}
	return c.repo.GetProduct(ctx, id)
}

func (c *Conf) CreateProduct(ctx context.Context, np NewProduct) (Product, error) {
	np.Title = strings.TrimSpace(np.Title)
	if err := validateTitle(np.Title); err != nil {
		return Product{}, err
	}
	if err := money.Check(np.UnitPrice); err != nil {
		return Product{}, apperr.Invalid("unit_price", err.Error())
	}
	if np.Inventory < 0 {
		return Product{}, apperr.Invalid("inventory", "must not be negative")
	}
	return c.repo.InsertProduct(ctx, np)
}

func (c *Conf) UpdateProduct(ctx context.Context, id int64, u ProductUpdate) (Product, error) {
	if id <= 0 {
		return Product{}, apperr.Invalid("product_id", "must be a positive integer")
	}
	if u.Empty() {
		return Product{}, apperr.Invalid("", "nothing to update")
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if err := validateTitle(title); err != nil {
			return Product{}, err
		}
		u.Title = &title
	}
	if u.UnitPrice != nil {
		if err := money.Check(*u.UnitPrice); err != nil {
			return Product{}, apperr.Invalid("unit_price", err.Error())
		}
	}
	if u.Inventory != nil && *u.Inventory < 0 {
		return Product{}, apperr.Invalid("inventory", "must not be negative")
	}
	return c.repo.UpdateProduct(ctx, id, u)
}

// DeleteProduct removes a product no order item references.
func (c *Conf) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Invalid("product_id", "must be a positive integer")
	}
	return c.repo.DeleteProduct(ctx, id)
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < minTitleLength {
		return apperr.Invalid("title", fmt.Sprintf("must be at least %d characters", minTitleLength))
	}
	return nil
}

// ReferencedBy is the conflict message for a product still held by order items.
func ReferencedBy(count int) string {
	return fmt.Sprintf("there are %d order items referencing this product", count)
}
