// Package orders implements the order aggregate: scoped reads and status changes.
package orders

import (
	"context"
	"fmt"

	"store-service/internal/apperr"
)

// Repository persists orders. Items are written once, by the checkout transaction.
//
// UpdateOrderStatus must read the current status and write the new one atomically,
// calling check with both before writing.
type Repository interface {
	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, scope Scope) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, next Status, check func(from, to Status) error) (Order, error)
}

// TransitionPolicy decides whether an order may move between two statuses.
type TransitionPolicy func(from, to Status) error

// Unrestricted allows every transition.
func Unrestricted(from, to Status) error { return nil }

// Strict allows Unpaid->Paid, Unpaid->Canceled and Paid->Canceled. Canceled is terminal.
// Setting the current status again is allowed and changes nothing.
func Strict(from, to Status) error {
	if from == to {
		return nil
	}
	switch {
	case from == StatusUnpaid && (to == StatusPaid || to == StatusCanceled):
		return nil
	case from == StatusPaid && to == StatusCanceled:
		return nil
	}
	return fmt.Errorf("cannot move from %s to %s", from.Label(), to.Label())
}

type Conf struct {
	repo   Repository
	policy TransitionPolicy
}

func NewConf(repo Repository, policy TransitionPolicy) (*Conf, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is nil")
	}
	if policy == nil {
		policy = Unrestricted
	}
	return &Conf{repo: repo, policy: policy}, nil
}

// Get returns the order if caller may see it. Orders of other customers are
// reported as not found to non-privileged callers.
func (c *Conf) Get(ctx context.Context, caller Caller, id int64) (Order, error) {
	if id <= 0 {
		return Order{}, apperr.Invalid("order_id", "must be a positive integer")
	}
	o, err := c.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !caller.Privileged && o.CustomerID != caller.CustomerID {
		return Order{}, apperr.NotFound("order", id)
	}
	return o, nil
}

// List returns every order for a privileged caller and only the caller's own otherwise.
func (c *Conf) List(ctx context.Context, caller Caller) ([]Order, error) {
	scope := Scope{CustomerID: caller.CustomerID, All: caller.Privileged}
	list, err := c.repo.ListOrders(ctx, scope)
	if err != nil {
		return nil, err
	}
	if scope.All {
		return list, nil
	}
	own := list[:0]
	for _, o := range list {
		if o.CustomerID == caller.CustomerID {
			own = append(own, o)
		}
	}
	return own, nil
}

// UpdateStatus moves an order to next. Items are never touched.
func (c *Conf) UpdateStatus(ctx context.Context, id int64, next Status) (Order, error) {
	if id <= 0 {
		return Order{}, apperr.Invalid("order_id", "must be a positive integer")
	}
	if !next.Valid() {
		return Order{}, apperr.Invalid("status", "must be one of unpaid, paid, canceled")
	}
	return c.repo.UpdateOrderStatus(ctx, id, next, func(from, to Status) error {
		if err := c.policy(from, to); err != nil {
			return apperr.Conflict("order", id, err.Error())
		}
		return nil
	})
}
