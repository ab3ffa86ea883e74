package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"store-service/internal/money"
)

type Cart struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Items     []Item    `json:"items"`
}

// Item is one cart line joined with its product's current unit price.
type Item struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Total is quantity * unit price at the time the line was read.
func (i Item) Total() decimal.Decimal {
	return money.LineTotal(i.Quantity, i.UnitPrice)
}

// TotalPrice sums the line totals. It is informational and never stored.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total())
	}
	return total
}

type ItemResponse struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	ItemTotal string `json:"item_total"`
}

type CartResponse struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Items      []ItemResponse `json:"items"`
	TotalPrice string         `json:"total_price"`
}

func NewItemResponse(i Item) ItemResponse {
	return ItemResponse{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: money.Format(i.UnitPrice),
		ItemTotal: money.Format(i.Total()),
	}
}

func NewCartResponse(c Cart) CartResponse {
	items := make([]ItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, NewItemResponse(item))
	}
	return CartResponse{
		ID:         c.ID.String(),
		CreatedAt:  c.CreatedAt,
		Items:      items,
		TotalPrice: money.Format(c.TotalPrice()),
	}
}
