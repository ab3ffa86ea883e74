// Package cart implements the anonymous shopping cart: create, line mutations,
// live-priced reads, deletion and expiry.
package cart

import (
	"math"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"store-service/internal/apperr"
)

// Repository persists carts and their lines.
//
// AddItem increments an existing (cart, product) line rather than inserting a second one,
// and returns a ValidationError when the product does not exist. UpdateItem returns a
// NotFoundError when the line is absent. RemoveItem treats an absent line as success.
// Every method returns a NotFoundError when the cart itself is absent.
type Repository interface {
	InsertCart(ctx context.Context, c Cart) error
	GetCart(ctx context.Context, id uuid.UUID) (Cart, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (Item, error)
	UpdateItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (Item, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID int64) error
	DeleteCartsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaxQuantity bounds a single cart line, before and after merging.
const MaxQuantity = math.MaxInt32

type Conf struct {
	repo Repository
	now  func() time.Time
}

func NewConf(repo Repository) (Conf, error) {
	if repo == nil {
		return Conf{}, fmt.Errorf("cart repository is nil")
	}
	return Conf{repo: repo, now: time.Now}, nil
}

// ParseID validates a client-supplied cart identifier.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Invalid("cart_id", "must be a valid uuid")
	}
	return id, nil
}

// Create allocates an empty cart under a fresh random identifier.
func (c *Conf) Create(ctx context.Context) (Cart, error) {
	cart := Cart{
		ID:        uuid.New(),
		CreatedAt: c.now().UTC(),
		Items:     []Item{},
	}
	if err := c.repo.InsertCart(ctx, cart); err != nil {
		return Cart{}, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// Get returns the cart with its lines priced against the current catalog.
func (c *Conf) Get(ctx context.Context, cartID string) (Cart, error) {
	id, err := ParseID(cartID)
	if err != nil {
		return Cart{}, err
	}
	return c.repo.GetCart(ctx, id)
}

func (c *Conf) Delete(ctx context.Context, cartID string) error {
	id, err := ParseID(cartID)
	if err != nil {
		return err
	}
	return c.repo.DeleteCart(ctx, id)
}

// AddItem adds quantity units of a product, merging with an existing line.
func (c *Conf) AddItem(ctx context.Context, cartID string, productID int64, quantity int) (Item, error) {
	id, err := c.validateLine(cartID, productID, quantity)
	if err != nil {
		return Item{}, err
	}
	return c.repo.AddItem(ctx, id, productID, quantity)
}

// UpdateItem overwrites the quantity of an existing line.
func (c *Conf) UpdateItem(ctx context.Context, cartID string, productID int64, quantity int) (Item, error) {
	id, err := c.validateLine(cartID, productID, quantity)
	if err != nil {
		return Item{}, err
	}
	return c.repo.UpdateItem(ctx, id, productID, quantity)
}

func (c *Conf) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	id, err := ParseID(cartID)
	if err != nil {
		return err
	}
	if productID <= 0 {
		return apperr.Invalid("product_id", "must be a positive integer")
	}
	return c.repo.RemoveItem(ctx, id, productID)
}

// SweepExpired deletes carts created more than ttl ago and reports how many went.
func (c *Conf) SweepExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, apperr.Invalid("ttl", "must be positive")
	}
	n, err := c.repo.DeleteCartsBefore(ctx, c.now().UTC().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired carts: %w", err)
	}
	return n, nil
}

func (c *Conf) validateLine(cartID string, productID int64, quantity int) (uuid.UUID, error) {
	id, err := ParseID(cartID)
	if err != nil {
		return uuid.Nil, err
	}
	if productID <= 0 {
		return uuid.Nil, apperr.Invalid("product_id", "must be a positive integer")
	}
	if quantity < 1 {
		return uuid.Nil, apperr.Invalid("quantity", "must be at least 1")
	}
	if quantity > MaxQuantity {
		return uuid.Nil, apperr.Invalid("quantity", fmt.Sprintf("must be at most %d", MaxQuantity))
	}
	return id, nil
}
