package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c, err := FromLookup(env(map[string]string{
		"DATABASE_URL":        "postgres://localhost/store",
		"JWT_PUBLIC_KEY_PATH": "pubkey.pem",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":9090", c.GRPCAddr)
	assert.Equal(t, "/store", c.EndpointPrefix)
	assert.Equal(t, DriverPostgres, c.DBDriver)
	assert.Empty(t, c.KafkaBrokers)
	assert.Equal(t, "store-service.order-created", c.KafkaTopic)
	assert.Equal(t, 168*time.Hour, c.CartTTL)
	assert.Equal(t, time.Hour, c.CartSweepInterval)
	assert.False(t, c.OrderStatusStrict)
	assert.Equal(t, 256, c.NotifyQueueSize)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
}

func TestOverrides(t *testing.T) {
	c, err := FromLookup(env(map[string]string{
		"DATABASE_URL":        "store.db",
		"JWT_PUBLIC_KEY_PATH": "pubkey.pem",
		"DB_DRIVER":           "sqlite",
		"KAFKA_BROKERS":       "k1:9092, k2:9092,",
		"CART_TTL":            "30m",
		"CART_SWEEP_INTERVAL": "0",
		"ORDER_STATUS_STRICT": "true",
		"LOG_LEVEL":           "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, c.CartTTL)
	assert.Zero(t, c.CartSweepInterval)
	assert.True(t, c.OrderStatusStrict)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
}

func TestReportsEveryProblem(t *testing.T) {
	_, err := FromLookup(env(map[string]string{
		"DB_DRIVER":           "mysql",
		"CART_TTL":            "soon",
		"ORDER_STATUS_STRICT": "maybe",
	}))
	require.Error(t, err)
	for _, want := range []string{"DATABASE_URL", "JWT_PUBLIC_KEY_PATH", "DB_DRIVER", "CART_TTL", "ORDER_STATUS_STRICT"} {
		assert.Contains(t, err.Error(), want)
	}
}
