package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *ServerMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveCheckout(t *testing.T) {
	m := NewServerMetrics(prometheus.NewRegistry(), "test")
	m.ObserveCheckout("success", 10*time.Millisecond)
	m.ObserveCheckout("success", 10*time.Millisecond)
	m.ObserveCheckout("not_found", time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `store_checkout_total{result="success"} 2`)
	assert.Contains(t, body, `store_checkout_total{result="not_found"} 1`)
	assert.Contains(t, body, "store_checkout_duration_seconds_count 3")
}

func TestHandlerServesOwnRegistry(t *testing.T) {
	m := NewServerMetrics(prometheus.NewRegistry(), "test")
	m.CartsSwept.Add(4)
	assert.Contains(t, scrape(t, m), "store_carts_swept_total 4")
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewServerMetrics(prometheus.NewRegistry(), "a")
		NewServerMetrics(prometheus.NewRegistry(), "a")
	})
}
