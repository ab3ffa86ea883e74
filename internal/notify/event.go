package notify

import "time"

const TypeOrderCreated = "order.created"

// Event is raised after a checkout commits. Delivery is at most once.
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}
