package storetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
	"store-service/internal/catalog"
)

func testCatalog(t *testing.T, s Store) {
	ctx := context.Background()
	f := newFixture(t, s, nil)

	t.Run("create and read", func(t *testing.T) {
		p, err := f.catalog.CreateProduct(ctx, catalog.NewProduct{
			Title:       "Espresso beans",
			Description: "1kg",
			UnitPrice:   decimal.RequireFromString("12.50"),
			Inventory:   3,
		})
		require.NoError(t, err)
		assert.Positive(t, p.ID)

		got, err := f.catalog.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Espresso beans", got.Title)
		assert.Equal(t, 3, got.Inventory)
		price(t, got.UnitPrice, "12.50")
		price(t, got.UnitPriceAfterTax(), "13.63")
	})

	t.Run("rejects invalid products", func(t *testing.T) {
		tests := []struct {
			name string
			np   catalog.NewProduct
		}{
			{"short title", catalog.NewProduct{Title: "Tea", UnitPrice: decimal.RequireFromString("1")}},
			{"negative price", catalog.NewProduct{Title: "Green tea", UnitPrice: decimal.RequireFromString("-1")}},
			{"sub-cent price", catalog.NewProduct{Title: "Green tea", UnitPrice: decimal.RequireFromString("1.005")}},
			{"negative inventory", catalog.NewProduct{Title: "Green tea", UnitPrice: decimal.RequireFromString("1"), Inventory: -1}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.catalog.CreateProduct(ctx, tt.np)
				assert.True(t, apperr.IsValidation(err), "got %v", err)
			})
		}
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := f.catalog.GetProduct(ctx, 999999)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("update keeps untouched fields", func(t *testing.T) {
		p := f.product("4.00")
		inv := 0
		got, err := f.catalog.UpdateProduct(ctx, p.ID, catalog.ProductUpdate{Inventory: &inv})
		require.NoError(t, err)
		assert.Equal(t, 0, got.Inventory)
		price(t, got.UnitPrice, "4.00")
		assert.Equal(t, p.Title, got.Title)

		neg := -1
		_, err = f.catalog.UpdateProduct(ctx, p.ID, catalog.ProductUpdate{Inventory: &neg})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("delete unreferenced product", func(t *testing.T) {
		p := f.product("1.00")
		require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))
		_, err := f.catalog.GetProduct(ctx, p.ID)
		assert.True(t, apperr.IsNotFound(err))
		assert.True(t, apperr.IsNotFound(f.catalog.DeleteProduct(ctx, p.ID)))
	})

	t.Run("delete is refused while order items reference the product", func(t *testing.T) {
		p := f.product("2.00")
		cust := f.customer("catalog-user")
		c := f.cart(line{p.ID, 1})
		_, err := f.checkout.Checkout(ctx, c.ID.String(), cust.ID)
		require.NoError(t, err)

		err = f.catalog.DeleteProduct(ctx, p.ID)
		require.True(t, apperr.IsConflict(err), "got %v", err)
		assert.Contains(t, err.Error(), "there are 1 order items referencing this product")

		_, err = f.catalog.GetProduct(ctx, p.ID)
		assert.NoError(t, err)
	})

	t.Run("deleting a product drops it from carts", func(t *testing.T) {
		p := f.product("3.00")
		c := f.cart(line{p.ID, 2})
		require.NoError(t, f.catalog.DeleteProduct(ctx, p.ID))

		got, err := f.carts.Get(ctx, c.ID.String())
		require.NoError(t, err)
		assert.Empty(t, got.Items)
	})
}
