package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
	"store-service/internal/orders"
)

func testOrders(t *testing.T, s Store) {
	ctx := context.Background()
	f := newFixture(t, s, nil)
	p := f.product("7.00")
	alice := f.customer("alice")
	bob := f.customer("bob")

	place := func(t *testing.T, customerID int64, qty int) orders.Order {
		t.Helper()
		c := f.cart(line{p.ID, qty})
		o, err := f.checkout.Checkout(ctx, c.ID.String(), customerID)
		require.NoError(t, err)
		return o
	}
	a1 := place(t, alice.ID, 1)
	a2 := place(t, alice.ID, 2)
	b1 := place(t, bob.ID, 3)

	t.Run("non-privileged list is scoped to the caller", func(t *testing.T) {
		list, err := f.orders.List(ctx, orders.Caller{CustomerID: alice.ID})
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, o := range list {
			assert.Equal(t, alice.ID, o.CustomerID)
		}
		assert.Equal(t, []int64{a1.ID, a2.ID}, []int64{list[0].ID, list[1].ID})
		assert.Len(t, list[1].Items, 1)
		assert.Equal(t, 2, list[1].Items[0].Quantity)
	})

	t.Run("privileged list sees everything", func(t *testing.T) {
		list, err := f.orders.List(ctx, orders.Caller{Privileged: true})
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("get is scoped", func(t *testing.T) {
		_, err := f.orders.Get(ctx, orders.Caller{CustomerID: alice.ID}, b1.ID)
		assert.True(t, apperr.IsNotFound(err))

		got, err := f.orders.Get(ctx, orders.Caller{CustomerID: bob.ID}, b1.ID)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusUnpaid, got.Status)

		got, err = f.orders.Get(ctx, orders.Caller{Privileged: true}, b1.ID)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.CustomerID)

		_, err = f.orders.Get(ctx, orders.Caller{Privileged: true}, 999999)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("status updates never touch items", func(t *testing.T) {
		before, err := f.orders.Get(ctx, orders.Caller{Privileged: true}, a2.ID)
		require.NoError(t, err)

		for _, st := range []orders.Status{orders.StatusPaid, orders.StatusUnpaid, orders.StatusCanceled} {
			o, err := f.orders.UpdateStatus(ctx, a2.ID, st)
			require.NoError(t, err)
			assert.Equal(t, st, o.Status)
			assert.Equal(t, len(before.Items), len(o.Items))
			for i := range o.Items {
				assert.Equal(t, before.Items[i].Quantity, o.Items[i].Quantity)
				price(t, o.Items[i].UnitPrice, before.Items[i].UnitPrice.StringFixed(2))
			}
		}

		_, err = f.orders.UpdateStatus(ctx, 999999, orders.StatusPaid)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("strict policy", func(t *testing.T) {
		strict := newFixture(t, s, orders.Strict)
		o := place(t, alice.ID, 1)

		_, err := strict.orders.UpdateStatus(ctx, o.ID, orders.StatusPaid)
		require.NoError(t, err)
		_, err = strict.orders.UpdateStatus(ctx, o.ID, orders.StatusPaid)
		require.NoError(t, err)
		_, err = strict.orders.UpdateStatus(ctx, o.ID, orders.StatusUnpaid)
		assert.True(t, apperr.IsConflict(err), "got %v", err)
		_, err = strict.orders.UpdateStatus(ctx, o.ID, orders.StatusCanceled)
		require.NoError(t, err)
		_, err = strict.orders.UpdateStatus(ctx, o.ID, orders.StatusPaid)
		assert.True(t, apperr.IsConflict(err))

		got, err := strict.orders.Get(ctx, orders.Caller{Privileged: true}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusCanceled, got.Status)
	})
}
