package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/notify"
)

func TestEncode(t *testing.T) {
	e := notify.OrderCreated(42, 7, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	key, value, err := Encode(e)
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(value, &got))
	assert.Equal(t, "order.created", got["type"])
	assert.Equal(t, float64(42), got["order_id"])
	assert.Equal(t, float64(7), got["customer_id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", got["created_at"])
	assert.Equal(t, e.ID, got["event_id"])
}

func TestNewConfNeedsBrokers(t *testing.T) {
	_, err := NewConf(nil, TopicOrderCreated)
	assert.Error(t, err)
}

func TestNewConfDefaultsTopic(t *testing.T) {
	k, err := NewConf([]string{"127.0.0.1:1"}, "")
	require.NoError(t, err)
	defer k.Close()
	assert.Equal(t, TopicOrderCreated, k.topic)
}
