// Package storetest is the behavioural test-suite every SQL store must pass.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"store-service/internal/cart"
	"store-service/internal/catalog"
	"store-service/internal/checkout"
	"store-service/internal/customers"
	"store-service/internal/notify"
	"store-service/internal/orders"
)

// Store is every repository the service needs from one database.
type Store interface {
	catalog.Repository
	cart.Repository
	orders.Repository
	customers.Repository
	checkout.Repository
}

// Factory returns an empty, migrated store owned by t.
type Factory func(t *testing.T) Store

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("catalog", func(t *testing.T) { testCatalog(t, newStore(t)) })
	t.Run("cart", func(t *testing.T) { testCart(t, newStore(t)) })
	t.Run("customers", func(t *testing.T) { testCustomers(t, newStore(t)) })
	t.Run("orders", func(t *testing.T) { testOrders(t, newStore(t)) })
	t.Run("checkout", func(t *testing.T) { testCheckout(t, newStore(t)) })
}

type fixture struct {
	t         *testing.T
	store     Store
	catalog   catalog.Conf
	carts     cart.Conf
	customers customers.Conf
	orders    *orders.Conf
	checkout  *checkout.Workflow
	events    *eventLog
}

func newFixture(t *testing.T, s Store, policy orders.TransitionPolicy) *fixture {
	t.Helper()
	cat, err := catalog.NewConf(s)
	require.NoError(t, err)
	carts, err := cart.NewConf(s)
	require.NoError(t, err)
	cust, err := customers.NewConf(s)
	require.NoError(t, err)
	ord, err := orders.NewConf(s, policy)
	require.NoError(t, err)
	events := &eventLog{}
	wf, err := checkout.NewWorkflow(s, events)
	require.NoError(t, err)
	return &fixture{
		t: t, store: s, catalog: cat, carts: carts, customers: cust,
		orders: ord, checkout: wf, events: events,
	}
}

func (f *fixture) product(price string) catalog.Product {
	f.t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalog.NewProduct{
		Title:     "Test product",
		UnitPrice: decimal.RequireFromString(price),
		Inventory: 10,
	})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) customer(userID string) customers.Customer {
	f.t.Helper()
	c, err := f.customers.Register(context.Background(), customers.NewCustomer{UserID: userID})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) cart(lines ...line) cart.Cart {
	f.t.Helper()
	ctx := context.Background()
	c, err := f.carts.Create(ctx)
	require.NoError(f.t, err)
	for _, l := range lines {
		_, err := f.carts.AddItem(ctx, c.ID.String(), l.productID, l.quantity)
		require.NoError(f.t, err)
	}
	return c
}

func (f *fixture) setPrice(productID int64, price string) {
	f.t.Helper()
	d := decimal.RequireFromString(price)
	_, err := f.catalog.UpdateProduct(context.Background(), productID, catalog.ProductUpdate{UnitPrice: &d})
	require.NoError(f.t, err)
}

type line struct {
	productID int64
	quantity  int
}

type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *eventLog) Publish(_ context.Context, e notify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []notify.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]notify.Event(nil), l.events...)
}

func price(t *testing.T, d decimal.Decimal, want string) {
	t.Helper()
	require.Truef(t, d.Equal(decimal.RequireFromString(want)), "got %s, want %s", d.StringFixed(2), want)
}
