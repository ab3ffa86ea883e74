package orders

import (
	"time"

	"store-service/internal/money"
)

type ItemView struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// CustomerView is what an order's owner sees.
type CustomerView struct {
	ID        int64      `json:"id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []ItemView `json:"items"`
	Total     string     `json:"total"`
}

// AdminView adds the owning customer.
type AdminView struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customer_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []ItemView `json:"items"`
	Total      string     `json:"total"`
}

func NewCustomerView(o Order) CustomerView {
	return CustomerView{
		ID:        o.ID,
		Status:    o.Status.Label(),
		CreatedAt: o.CreatedAt,
		Items:     itemViews(o.Items),
		Total:     money.Format(o.Total()),
	}
}

func NewAdminView(o Order) AdminView {
	return AdminView{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status.Label(),
		CreatedAt:  o.CreatedAt,
		Items:      itemViews(o.Items),
		Total:      money.Format(o.Total()),
	}
}

// Project picks the view for the caller's role.
func Project(caller Caller, o Order) any {
	if caller.Privileged {
		return NewAdminView(o)
	}
	return NewCustomerView(o)
}

// ProjectAll applies Project to each order, keeping order.
func ProjectAll(caller Caller, list []Order) []any {
	out := make([]any, 0, len(list))
	for _, o := range list {
		out = append(out, Project(caller, o))
	}
	return out
}

func itemViews(items []Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: money.Format(item.UnitPrice),
			Total:     money.Format(item.Total()),
		})
	}
	return out
}
