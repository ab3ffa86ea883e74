package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
	"store-service/internal/notify"
	"store-service/internal/orders"
)

func testCheckout(t *testing.T, s Store) {
	ctx := context.Background()
	f := newFixture(t, s, nil)
	u1 := f.customer("u1")

	t.Run("cart becomes an unpaid order and disappears", func(t *testing.T) {
		p1 := f.product("10.00")
		p2 := f.product("5.00")
		c1 := f.cart(line{p1.ID, 2}, line{p2.ID, 1})

		o1, err := f.checkout.Checkout(ctx, c1.ID.String(), u1.ID)
		require.NoError(t, err)
		assert.Positive(t, o1.ID)
		assert.Equal(t, orders.StatusUnpaid, o1.Status)
		assert.Equal(t, u1.ID, o1.CustomerID)

		stored, err := f.orders.Get(ctx, orders.Caller{CustomerID: u1.ID}, o1.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 2)
		byProduct := map[int64]orders.Item{}
		for _, item := range stored.Items {
			byProduct[item.ProductID] = item
		}
		assert.Equal(t, 2, byProduct[p1.ID].Quantity)
		price(t, byProduct[p1.ID].UnitPrice, "10.00")
		assert.Equal(t, 1, byProduct[p2.ID].Quantity)
		price(t, byProduct[p2.ID].UnitPrice, "5.00")
		price(t, stored.Total(), "25.00")

		_, err = f.carts.Get(ctx, c1.ID.String())
		assert.True(t, apperr.IsNotFound(err))

		_, err = f.checkout.Checkout(ctx, c1.ID.String(), u1.ID)
		assert.True(t, apperr.IsNotFound(err), "got %v", err)

		var created []int64
		for _, e := range f.events.all() {
			assert.Equal(t, notify.TypeOrderCreated, e.Type)
			created = append(created, e.OrderID)
		}
		assert.Contains(t, created, o1.ID)
	})

	t.Run("order keeps the price it was placed at", func(t *testing.T) {
		p := f.product("10.00")
		c := f.cart(line{p.ID, 3})
		o, err := f.checkout.Checkout(ctx, c.ID.String(), u1.ID)
		require.NoError(t, err)

		f.setPrice(p.ID, "99.99")

		got, err := f.orders.Get(ctx, orders.Caller{CustomerID: u1.ID}, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		price(t, got.Items[0].UnitPrice, "10.00")
		price(t, got.Total(), "30.00")
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		c := f.cart()
		before, err := f.orders.List(ctx, orders.Caller{Privileged: true})
		require.NoError(t, err)

		_, err = f.checkout.Checkout(ctx, c.ID.String(), u1.ID)
		require.True(t, apperr.IsValidation(err), "got %v", err)
		assert.Contains(t, err.Error(), "cart is empty")

		after, err := f.orders.List(ctx, orders.Caller{Privileged: true})
		require.NoError(t, err)
		assert.Len(t, after, len(before))
		_, err = f.carts.Get(ctx, c.ID.String())
		assert.NoError(t, err)
	})

	t.Run("unknown and malformed carts", func(t *testing.T) {
		_, err := f.checkout.Checkout(ctx, uuid.NewString(), u1.ID)
		assert.True(t, apperr.IsNotFound(err))
		_, err = f.checkout.Checkout(ctx, "C1", u1.ID)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("failed checkout leaves the cart intact", func(t *testing.T) {
		p := f.product("1.00")
		c := f.cart(line{p.ID, 1})
		events := len(f.events.all())

		_, err := f.checkout.Checkout(ctx, c.ID.String(), 999999)
		require.Error(t, err)

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		assert.Len(t, got.Items, 1)
		assert.Len(t, f.events.all(), events)
	})

	t.Run("concurrent checkouts consume the cart once", func(t *testing.T) {
		p1 := f.product("4.00")
		p2 := f.product("6.00")
		c := f.cart(line{p1.ID, 2}, line{p2.ID, 5})
		before, err := f.orders.List(ctx, orders.Caller{CustomerID: u1.ID})
		require.NoError(t, err)

		const n = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			placed   []orders.Order
			failures []error
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				o, err := f.checkout.Checkout(ctx, c.ID.String(), u1.ID)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, err)
					return
				}
				placed = append(placed, o)
			}()
		}
		wg.Wait()

		require.Len(t, placed, 1)
		require.Len(t, failures, n-1)
		for _, err := range failures {
			assert.True(t, apperr.IsNotFound(err) || apperr.IsConflict(err), "got %v", err)
		}

		after, err := f.orders.List(ctx, orders.Caller{CustomerID: u1.ID})
		require.NoError(t, err)
		assert.Len(t, after, len(before)+1)

		got, err := f.orders.Get(ctx, orders.Caller{CustomerID: u1.ID}, placed[0].ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
		price(t, got.Total(), "38.00")

		_, err = f.carts.Get(ctx, c.ID.String())
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("checkouts of different carts both succeed", func(t *testing.T) {
		p := f.product("2.00")
		a := f.cart(line{p.ID, 1})
		b := f.cart(line{p.ID, 2})

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, id := range []string{a.ID.String(), b.ID.String()} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.checkout.Checkout(ctx, id, u1.ID)
			}()
		}
		wg.Wait()
		assert.NoError(t, errs[0])
		assert.NoError(t, errs[1])
	})
}
