package customers

import "time"

// Customer is linked one-to-one to an identity-provider subject.
type Customer struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	PhoneNumber string     `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type NewCustomer struct {
	UserID      string
	PhoneNumber string
	BirthDate   *time.Time
}

// Address is the single shipping address of a customer.
type Address struct {
	CustomerID int64  `json:"customer_id"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Street     string `json:"street"`
}
