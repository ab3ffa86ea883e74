package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
)

// stubRepo records what reaches storage.
type stubRepo struct {
	inserted []Cart
	cutoff   time.Time
}

func (s *stubRepo) InsertCart(_ context.Context, c Cart) error {
	s.inserted = append(s.inserted, c)
	return nil
}
func (s *stubRepo) GetCart(context.Context, uuid.UUID) (Cart, error) { return Cart{}, nil }
func (s *stubRepo) DeleteCart(context.Context, uuid.UUID) error { return nil }
func (s *stubRepo) AddItem(_ context.Context, _ uuid.UUID, productID int64, quantity int) (Item, error) {
	return Item{ProductID: productID, Quantity: quantity}, nil
}
func (s *stubRepo) UpdateItem(_ context.Context, _ uuid.UUID, productID int64, quantity int) (Item, error) {
	return Item{ProductID: productID, Quantity: quantity}, nil
}
func (s *stubRepo) RemoveItem(context.Context, uuid.UUID, int64) error { return nil }
func (s *stubRepo) DeleteCartsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return 3, nil
}

func newTestConf(t *testing.T) (Conf, *stubRepo) {
	repo := &stubRepo{}
	c, err := NewConf(repo)
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return c, repo
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	c, repo := newTestConf(t)
	a, err := c.Create(context.Background())
	require.NoError(t, err)
	b, err := c.Create(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, uuid.Version(4), a.ID.Version())
	assert.Empty(t, a.Items)
	assert.Len(t, repo.inserted, 2)
}

func TestLineValidation(t *testing.T) {
	c, _ := newTestConf(t)
	ctx := context.Background()
	id := uuid.NewString()

	tests := []struct {
		name      string
		cartID    string
		productID int64
		quantity  int
		field     string
	}{
		{"bad cart id", "C1", 1, 1, "cart_id"},
		{"zero product", id, 0, 1, "product_id"},
		{"zero quantity", id, 1, 0, "quantity"},
		{"negative quantity", id, 1, -3, "quantity"},
		{"quantity above cap", id, 1, MaxQuantity + 1, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, op := range []func() error{
				func() error { _, err := c.AddItem(ctx, tt.cartID, tt.productID, tt.quantity); return err },
				func() error { _, err := c.UpdateItem(ctx, tt.cartID, tt.productID, tt.quantity); return err },
			} {
				err := op()
				var verr *apperr.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}

	item, err := c.AddItem(ctx, id, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestSweepExpiredCutoff(t *testing.T) {
	c, repo := newTestConf(t)
	n, err := c.SweepExpired(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), repo.cutoff)

	_, err = c.SweepExpired(context.Background(), 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestCartResponse(t *testing.T) {
	cart := Cart{
		ID: uuid.New(),
		Items: []Item{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10")},
			{ProductID: 2, Quantity: 3, UnitPrice: decimal.RequireFromString("0.33")},
		},
	}
	resp := NewCartResponse(cart)
	assert.Equal(t, "20.99", resp.TotalPrice)
	assert.Equal(t, "20.00", resp.Items[0].ItemTotal)
	assert.Equal(t, "0.99", resp.Items[1].ItemTotal)
	assert.Equal(t, "0.33", resp.Items[1].UnitPrice)
}
