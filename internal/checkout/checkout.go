// Package checkout turns a cart into an order in one transaction.
//
// The cart row is locked, its lines are priced against the catalog, the order and its
// items are written with those prices copied in, and the cart is deleted. Only after
// commit is an OrderCreated event handed to the notifier. Two checkouts of the same
// cart serialize on the cart lock; the loser finds the cart gone.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"store-service/internal/apperr"
	"store-service/internal/cart"
	"store-service/internal/notify"
	"store-service/internal/orders"
	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

const tracerName = "store-service/checkout"

// Tx is the set of writes a checkout performs inside one transaction.
type Tx interface {
	// LockCart locks the cart row until commit and returns its lines joined with the
	// products' current unit prices. NotFoundError if the cart does not exist.
	LockCart(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error)
	// InsertOrder writes the order and its items and returns it with ids assigned.
	InsertOrder(ctx context.Context, o orders.Order) (orders.Order, error)
	// DeleteCart deletes the cart and its lines, reporting whether a row was removed.
	DeleteCart(ctx context.Context, cartID uuid.UUID) (bool, error)
}

// Repository runs fn in a transaction: committed if fn returns nil, rolled back otherwise.
// Begin and commit failures are reported as TransactionError.
type Repository interface {
	WithTransaction(ctx context.Context, fn func(Tx) error) error
}

type Notifier interface {
	Publish(ctx context.Context, e notify.Event)
}

// Recorder observes checkout outcomes.
type Recorder interface {
	ObserveCheckout(result string, elapsed time.Duration)
}

type Option func(*Workflow)

func WithRecorder(r Recorder) Option {
	return func(w *Workflow) { w.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

type Workflow struct {
	repo     Repository
	notifier Notifier
	recorder Recorder
	now      func() time.Time
}

func NewWorkflow(repo Repository, notifier Notifier, opts ...Option) (*Workflow, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("checkout notifier is nil")
	}
	w := &Workflow{repo: repo, notifier: notifier, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Checkout consumes cartID and creates an Unpaid order for customerID.
func (w *Workflow) Checkout(ctx context.Context, cartID string, customerID int64) (order orders.Order, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "checkout")
	defer func() {
		result := resultOf(err)
		if w.recorder != nil {
			w.recorder.ObserveCheckout(result, time.Since(start))
		}
		span.SetAttributes(attribute.String("checkout.result", result))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		} else {
			span.SetAttributes(attribute.Int64("order.id", order.ID))
		}
		span.End()
	}()

	id, err := cart.ParseID(cartID)
	if err != nil {
		return orders.Order{}, err
	}
	if customerID <= 0 {
		return orders.Order{}, apperr.Invalid("customer_id", "must be a positive integer")
	}
	span.SetAttributes(attribute.String("cart.id", id.String()))

	err = w.repo.WithTransaction(ctx, func(tx Tx) error {
		lines, err := tx.LockCart(ctx, id)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.Invalid("cart_id", "cart is empty")
		}

		draft := orders.Order{
			CustomerID: customerID,
			Status:     orders.StatusUnpaid,
			CreatedAt:  w.now().UTC(),
			Items:      make([]orders.Item, 0, len(lines)),
		}
		for _, line := range lines {
			draft.Items = append(draft.Items, orders.Item{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
		}
		order, err = tx.InsertOrder(ctx, draft)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		deleted, err := tx.DeleteCart(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		if !deleted {
			return apperr.Conflict("cart", id, "already checked out")
		}
		return nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	slog.InfoContext(ctx, "cart checked out",
		slog.String(logkey.TraceID, ctxmanage.GetTraceId(ctx)),
		slog.String(logkey.CartID, id.String()),
		slog.String(logkey.OrderID, strconv.FormatInt(order.ID, 10)),
		slog.String(logkey.CustomerID, strconv.FormatInt(customerID, 10)))

	w.notifier.Publish(context.WithoutCancel(ctx), notify.OrderCreated(order.ID, customerID, order.CreatedAt))
	return order, nil
}

func resultOf(err error) string {
	var (
		notFound    *apperr.NotFoundError
		validation  *apperr.ValidationError
		conflict    *apperr.ConflictError
		transaction *apperr.TransactionError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &transaction):
		return "transaction_error"
	}
	return "error"
}
