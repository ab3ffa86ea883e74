package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"store-service/internal/money"
)

// Product is the catalog record read by the cart and checkout paths.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Inventory   int             `json:"inventory"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UnitPriceAfterTax is the unit price with TaxRate applied, rounded to cents.
func (p Product) UnitPriceAfterTax() decimal.Decimal {
	return money.AfterTax(p.UnitPrice)
}

type NewProduct struct {
	Title       string
	Description string
	UnitPrice   decimal.Decimal
	Inventory   int
}

// ProductUpdate carries only the fields being changed.
type ProductUpdate struct {
	Title       *string
	Description *string
	UnitPrice   *decimal.Decimal
	Inventory   *int
}

func (u ProductUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.UnitPrice == nil && u.Inventory == nil
}
