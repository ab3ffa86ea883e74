package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"store-service/internal/apperr"
	"store-service/internal/money"
)

// Status is stored as its single-character code.
type Status string

const (
	StatusUnpaid   Status = "U"
	StatusPaid     Status = "P"
	StatusCanceled Status = "C"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusUnpaid:
		return "unpaid"
	case StatusPaid:
		return "paid"
	case StatusCanceled:
		return "canceled"
	}
	return string(s)
}

// ParseStatus accepts either the stored code or the label, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "u", "unpaid":
		return StatusUnpaid, nil
	case "p", "paid":
		return StatusPaid, nil
	case "c", "canceled", "cancelled":
		return StatusCanceled, nil
	}
	return "", apperr.Invalid("status", "must be one of unpaid, paid, canceled")
}

// Order owns its items; after creation only Status changes.
type Order struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	Items      []Item    `json:"items"`
}

// Item carries the unit price copied from the catalog at checkout time.
type Item struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (i Item) Total() decimal.Decimal {
	return money.LineTotal(i.Quantity, i.UnitPrice)
}

// Total is computed over the snapshotted unit prices, never over live catalog prices.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// Caller is the identity an order read is scoped to.
type Caller struct {
	CustomerID int64
	Privileged bool
}

// Scope narrows a listing to one customer unless All is set.
type Scope struct {
	CustomerID int64
	All        bool
}
