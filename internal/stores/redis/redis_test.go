package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-service/internal/notify"
)

func TestDeliverReportsUnreachableServer(t *testing.T) {
	r := NewConf("127.0.0.1:1", "store:order-created")
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := r.Deliver(ctx, notify.OrderCreated(1, 1, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store:order-created")
	assert.ErrorIs(t, err, notify.ErrNotSent)
}
