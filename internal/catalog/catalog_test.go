package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
)

type countingRepo struct {
	calls int
}

func (r *countingRepo) GetProduct(_ context.Context, id int64) (Product, error) {
	r.calls++
	return Product{ID: id}, nil
}
func (r *countingRepo) InsertProduct(_ context.Context, np NewProduct) (Product, error) {
	r.calls++
	return Product{ID: 1, Title: np.Title, UnitPrice: np.UnitPrice, Inventory: np.Inventory}, nil
}
func (r *countingRepo) UpdateProduct(_ context.Context, id int64, _ ProductUpdate) (Product, error) {
	r.calls++
	return Product{ID: id}, nil
}
func (r *countingRepo) DeleteProduct(context.Context, int64) error {
	r.calls++
	return nil
}

func TestCreateProductValidation(t *testing.T) {
	repo := &countingRepo{}
	c, err := NewConf(repo)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.CreateProduct(ctx, NewProduct{Title: "  Mug ", UnitPrice: decimal.NewFromInt(3)})
	assert.True(t, apperr.IsValidation(err))
	_, err = c.CreateProduct(ctx, NewProduct{Title: "Coffee mug", UnitPrice: decimal.RequireFromString("3.999")})
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, repo.calls)

	p, err := c.CreateProduct(ctx, NewProduct{Title: "  Coffee mug  ", UnitPrice: decimal.RequireFromString("3.99")})
	require.NoError(t, err)
	assert.Equal(t, "Coffee mug", p.Title)
	assert.Equal(t, 1, repo.calls)
}

func TestUpdateProductValidation(t *testing.T) {
	repo := &countingRepo{}
	c, err := NewConf(repo)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.UpdateProduct(ctx, 1, ProductUpdate{})
	assert.True(t, apperr.IsValidation(err))

	short := "abc"
	_, err = c.UpdateProduct(ctx, 1, ProductUpdate{Title: &short})
	assert.True(t, apperr.IsValidation(err))

	neg := decimal.NewFromInt(-1)
	_, err = c.UpdateProduct(ctx, 1, ProductUpdate{UnitPrice: &neg})
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, repo.calls)

	assert.True(t, apperr.IsValidation(c.DeleteProduct(ctx, -1)))
}

func TestUnitPriceAfterTax(t *testing.T) {
	p := Product{UnitPrice: decimal.RequireFromString("100.00")}
	assert.Equal(t, "109.00", p.UnitPriceAfterTax().StringFixed(2))
}

func TestReferencedBy(t *testing.T) {
	assert.Equal(t, "there are 2 order items referencing this product", ReferencedBy(2))
}
