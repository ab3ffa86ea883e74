package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
	"store-service/internal/cart"
)

func testCart(t *testing.T, s Store) {
	ctx := context.Background()
	f := newFixture(t, s, nil)
	p1 := f.product("10.00")
	p2 := f.product("5.00")

	t.Run("new cart is empty", func(t *testing.T) {
		c, err := f.carts.Create(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, c.ID)

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		assert.Empty(t, got.Items)
		assert.Equal(t, "0.00", cart.NewCartResponse(got).TotalPrice)
	})

	t.Run("cart ids are unique", func(t *testing.T) {
		a, err := f.carts.Create(ctx)
		require.NoError(t, err)
		b, err := f.carts.Create(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("adding the same product twice merges the line", func(t *testing.T) {
		c := f.cart()
		_, err := f.carts.AddItem(ctx, c.ID.String(), p1.ID, 2)
		require.NoError(t, err)
		item, err := f.carts.AddItem(ctx, c.ID.String(), p1.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 5, got.Items[0].Quantity)
	})

	t.Run("add rejects bad input", func(t *testing.T) {
		c := f.cart()
		_, err := f.carts.AddItem(ctx, c.ID.String(), p1.ID, 0)
		assert.True(t, apperr.IsValidation(err))
		_, err = f.carts.AddItem(ctx, c.ID.String(), p1.ID, -2)
		assert.True(t, apperr.IsValidation(err))
		_, err = f.carts.AddItem(ctx, c.ID.String(), 999999, 1)
		assert.True(t, apperr.IsValidation(err), "got %v", err)
		_, err = f.carts.AddItem(ctx, "not-a-uuid", p1.ID, 1)
		assert.True(t, apperr.IsValidation(err))
		_, err = f.carts.AddItem(ctx, uuid.NewString(), p1.ID, 1)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("quantity is capped on add and on merge", func(t *testing.T) {
		c := f.cart()
		_, err := f.carts.AddItem(ctx, c.ID.String(), p1.ID, cart.MaxQuantity+1)
		assert.True(t, apperr.IsValidation(err), "got %v", err)

		item, err := f.carts.AddItem(ctx, c.ID.String(), p1.ID, cart.MaxQuantity)
		require.NoError(t, err)
		assert.Equal(t, cart.MaxQuantity, item.Quantity)

		_, err = f.carts.AddItem(ctx, c.ID.String(), p1.ID, 1)
		assert.True(t, apperr.IsValidation(err), "got %v", err)

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, cart.MaxQuantity, got.Items[0].Quantity, "rejected merge leaves the line alone")
	})

	t.Run("update overwrites quantity", func(t *testing.T) {
		c := f.cart(line{p1.ID, 4})
		item, err := f.carts.UpdateItem(ctx, c.ID.String(), p1.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)
		price(t, item.UnitPrice, "10.00")

		_, err = f.carts.UpdateItem(ctx, c.ID.String(), p2.ID, 1)
		assert.True(t, apperr.IsNotFound(err))
		_, err = f.carts.UpdateItem(ctx, c.ID.String(), p1.ID, 0)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		c := f.cart(line{p1.ID, 1}, line{p2.ID, 1})
		require.NoError(t, f.carts.RemoveItem(ctx, c.ID.String(), p1.ID))
		require.NoError(t, f.carts.RemoveItem(ctx, c.ID.String(), p1.ID))

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, p2.ID, got.Items[0].ProductID)
	})

	t.Run("total follows live prices", func(t *testing.T) {
		p := f.product("2.50")
		c := f.cart(line{p.ID, 2}, line{p2.ID, 1})

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		resp := cart.NewCartResponse(got)
		assert.Equal(t, "10.00", resp.TotalPrice)

		f.setPrice(p.ID, "3.00")
		got, err = f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		resp = cart.NewCartResponse(got)
		assert.Equal(t, "11.00", resp.TotalPrice)
		for _, item := range resp.Items {
			if item.ProductID == p.ID {
				assert.Equal(t, "6.00", item.ItemTotal)
			}
		}
	})

	t.Run("delete cascades and is final", func(t *testing.T) {
		c := f.cart(line{p1.ID, 1})
		require.NoError(t, f.carts.Delete(ctx, c.ID.String()))
		_, err := f.carts.Get(ctx, c.ID.String())
		assert.True(t, apperr.IsNotFound(err))
		assert.True(t, apperr.IsNotFound(f.carts.Delete(ctx, c.ID.String())))
		assert.True(t, apperr.IsNotFound(f.carts.RemoveItem(ctx, c.ID.String(), p1.ID)))
	})

	t.Run("sweep removes only expired carts", func(t *testing.T) {
		old := f.cart(line{p1.ID, 1})
		time.Sleep(20 * time.Millisecond)
		fresh := f.cart()

		n, err := f.carts.SweepExpired(ctx, 10*time.Millisecond)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		_, err = f.carts.Get(ctx, old.ID.String())
		assert.True(t, apperr.IsNotFound(err))
		_, err = f.carts.Get(ctx, fresh.ID.String())
		assert.NoError(t, err)
	})
}
