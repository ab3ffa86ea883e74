package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
	"store-service/internal/customers"
)

func testCustomers(t *testing.T, s Store) {
	ctx := context.Background()
	f := newFixture(t, s, nil)

	t.Run("register and resolve", func(t *testing.T) {
		birth := time.Date(1991, 4, 2, 0, 0, 0, 0, time.UTC)
		c, err := f.customers.Register(ctx, customers.NewCustomer{
			UserID:      "user-1",
			PhoneNumber: "+49 30 123456",
			BirthDate:   &birth,
		})
		require.NoError(t, err)
		assert.Positive(t, c.ID)

		got, err := f.customers.Resolve(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, "+49 30 123456", got.PhoneNumber)
		require.NotNil(t, got.BirthDate)
		assert.Equal(t, "1991-04-02", got.BirthDate.Format("2006-01-02"))
	})

	t.Run("one customer per user", func(t *testing.T) {
		f.customer("user-2")
		_, err := f.customers.Register(ctx, customers.NewCustomer{UserID: "user-2"})
		assert.True(t, apperr.IsConflict(err), "got %v", err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.customers.Resolve(ctx, "nobody")
		assert.True(t, apperr.IsNotFound(err))
		_, err = f.customers.Resolve(ctx, "")
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("address is a single upserted row", func(t *testing.T) {
		f.customer("user-3")
		_, err := f.customers.AddressOf(ctx, "user-3")
		assert.True(t, apperr.IsNotFound(err))

		_, err = f.customers.SetAddress(ctx, "user-3", customers.Address{Province: "BE", City: "Berlin", Street: "Main 1"})
		require.NoError(t, err)
		_, err = f.customers.SetAddress(ctx, "user-3", customers.Address{Province: "BE", City: "Berlin", Street: "Side 2"})
		require.NoError(t, err)

		a, err := f.customers.AddressOf(ctx, "user-3")
		require.NoError(t, err)
		assert.Equal(t, "Side 2", a.Street)

		_, err = f.customers.SetAddress(ctx, "user-3", customers.Address{Province: "BE", City: "", Street: "x"})
		assert.True(t, apperr.IsValidation(err))
		_, err = f.customers.SetAddress(ctx, "nobody", customers.Address{Province: "BE", City: "Berlin", Street: "x"})
		assert.True(t, apperr.IsNotFound(err))
	})
}
