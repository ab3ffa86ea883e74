package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/apperr"
)

// memRepo keys customers by the exact user id it is given.
type memRepo struct {
	byUser    map[string]Customer
	addresses map[int64]Address
}

func newMemRepo() *memRepo {
	return &memRepo{byUser: map[string]Customer{}, addresses: map[int64]Address{}}
}

func (m *memRepo) InsertCustomer(_ context.Context, nc NewCustomer) (Customer, error) {
	if _, ok := m.byUser[nc.UserID]; ok {
		return Customer{}, apperr.Conflict("customer", nc.UserID, "user already has a customer profile")
	}
	c := Customer{ID: int64(len(m.byUser) + 1), UserID: nc.UserID, PhoneNumber: nc.PhoneNumber}
	m.byUser[nc.UserID] = c
	return c, nil
}

func (m *memRepo) CustomerByUser(_ context.Context, userID string) (Customer, error) {
	c, ok := m.byUser[userID]
	if !ok {
		return Customer{}, apperr.NotFound("customer", userID)
	}
	return c, nil
}

func (m *memRepo) UpsertAddress(_ context.Context, a Address) (Address, error) {
	m.addresses[a.CustomerID] = a
	return a, nil
}

func (m *memRepo) AddressOf(_ context.Context, customerID int64) (Address, error) {
	a, ok := m.addresses[customerID]
	if !ok {
		return Address{}, apperr.NotFound("address", customerID)
	}
	return a, nil
}

func TestResolveTrimsLikeRegister(t *testing.T) {
	c, err := NewConf(newMemRepo())
	require.NoError(t, err)
	ctx := context.Background()

	registered, err := c.Register(ctx, NewCustomer{UserID: "  user-7 \t", PhoneNumber: "555"})
	require.NoError(t, err)
	assert.Equal(t, "user-7", registered.UserID)

	for _, subject := range []string{"user-7", "  user-7 \t", " user-7"} {
		got, err := c.Resolve(ctx, subject)
		require.NoError(t, err, "subject %q", subject)
		assert.Equal(t, registered.ID, got.ID)
	}

	_, err = c.SetAddress(ctx, " user-7 ", Address{Province: "ON", City: "Toronto", Street: "1 King St"})
	require.NoError(t, err)
	a, err := c.AddressOf(ctx, "user-7 ")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, a.CustomerID)
}

func TestResolveBlankSubject(t *testing.T) {
	c, err := NewConf(newMemRepo())
	require.NoError(t, err)

	_, err = c.Resolve(context.Background(), "   ")
	assert.True(t, apperr.IsNotFound(err))
}

func TestRegisterRejectsBlankUser(t *testing.T) {
	c, err := NewConf(newMemRepo())
	require.NoError(t, err)

	_, err = c.Register(context.Background(), NewCustomer{UserID: " "})
	assert.True(t, apperr.IsValidation(err))
}
