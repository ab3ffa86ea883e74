package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"

	"store-service/internal/auth"
	"store-service/internal/orders"
)

const testWebhookSecret = "whsec_test"

func intentEvent(eventType string, orderID int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": "pi_test", "object": "payment_intent", "metadata": {"order_id": "%d"}}}
	}`, eventType, orderID))
}

func (a *testAPI) postWebhook(payload []byte, signature string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodPost, prefix+"/webhook/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	a.r.ServeHTTP(rec, req)
	return rec
}

func sign(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	}).Header
}

// placeOrder checks out a one-line cart for a fresh customer and returns the order id.
func (a *testAPI) placeOrder() int64 {
	a.t.Helper()
	admin := a.token("admin-1", auth.RoleAdmin)
	user := a.token("payer", auth.RoleUser)
	a.register(user)
	product := a.createProduct(admin, "4.00")
	cartID := a.createCart()
	rec := a.do(http.MethodPost, "/carts/"+cartID+"/items", gin.H{"product_id": product, "quantity": 1}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code)
	rec = a.do(http.MethodPost, "/carts/"+cartID+"/checkout", nil, user)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[orders.CustomerView](a.t, rec).ID
}

func (a *testAPI) orderStatus(id int64) string {
	a.t.Helper()
	rec := a.do(http.MethodGet, "/orders/"+itoa(id), nil, a.token("admin-1", auth.RoleAdmin))
	require.Equal(a.t, http.StatusOK, rec.Code)
	return decode[orders.AdminView](a.t, rec).Status
}

func TestWebhookPaymentSucceeded(t *testing.T) {
	api := newTestAPI(t, testWebhookSecret)
	id := api.placeOrder()

	payload := intentEvent("payment_intent.succeeded", id)
	rec := api.postWebhook(payload, sign(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", api.orderStatus(id))
}

func TestWebhookPaymentCanceled(t *testing.T) {
	api := newTestAPI(t, testWebhookSecret)
	id := api.placeOrder()

	payload := intentEvent("payment_intent.canceled", id)
	rec := api.postWebhook(payload, sign(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "canceled", api.orderStatus(id))
}

func TestWebhookRejects(t *testing.T) {
	api := newTestAPI(t, testWebhookSecret)
	id := api.placeOrder()

	t.Run("bad signature", func(t *testing.T) {
		payload := intentEvent("payment_intent.succeeded", id)
		rec := api.postWebhook(payload, "t=1,v1=deadbeef")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "unpaid", api.orderStatus(id))
	})

	t.Run("unknown order", func(t *testing.T) {
		payload := intentEvent("payment_intent.succeeded", 9999)
		rec := api.postWebhook(payload, sign(payload))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unhandled type", func(t *testing.T) {
		payload := intentEvent("charge.refunded", id)
		rec := api.postWebhook(payload, sign(payload))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "event type not handled")
		assert.Equal(t, "unpaid", api.orderStatus(id))
	})
}

func TestWebhookDisabledWithoutSecret(t *testing.T) {
	api := newTestAPI(t, "")
	payload := intentEvent("payment_intent.succeeded", 1)
	rec := api.postWebhook(payload, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
