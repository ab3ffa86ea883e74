// Package config reads service configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"store-service/internal/telemetry"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	EndpointPrefix string
	GinMode        string

	DBDriver    string
	DatabaseURL string

	JWTPublicKeyPath string

	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string
	RedisChannel string

	ConsulAddr          string
	ServiceName         string
	StripeWebhookSecret string

	CartTTL           time.Duration
	CartSweepInterval time.Duration
	OrderStatusStrict bool
	NotifyQueueSize   int

	OTLPEndpoint string
	LogLevel     slog.Level
}

// Load reads .env (when present) and then the process environment.
// Every invalid or missing required value is reported, not just the first.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}
	c := Config{
		HTTPAddr:            r.str("HTTP_ADDR", ":8080"),
		GRPCAddr:            r.str("GRPC_ADDR", ":9090"),
		EndpointPrefix:      r.str("SERVICE_ENDPOINT_PREFIX", "/store"),
		GinMode:             r.str("GIN_MODE", "debug"),
		DBDriver:            r.str("DB_DRIVER", DriverPostgres),
		DatabaseURL:         r.required("DATABASE_URL"),
		JWTPublicKeyPath:    r.required("JWT_PUBLIC_KEY_PATH"),
		KafkaBrokers:        r.list("KAFKA_BROKERS"),
		KafkaTopic:          r.str("KAFKA_TOPIC", "store-service.order-created"),
		RedisAddr:           r.str("REDIS_ADDR", ""),
		RedisChannel:        r.str("REDIS_CHANNEL", "store:order-created"),
		ConsulAddr:          r.str("CONSUL_HTTP_ADDR", ""),
		ServiceName:         r.str("SERVICE_NAME", "store"),
		StripeWebhookSecret: r.str("STRIPE_WEBHOOK_SECRET", ""),
		CartTTL:             r.duration("CART_TTL", 168*time.Hour),
		CartSweepInterval:   r.duration("CART_SWEEP_INTERVAL", time.Hour),
		OrderStatusStrict:   r.boolean("ORDER_STATUS_STRICT", false),
		NotifyQueueSize:     r.integer("NOTIFY_QUEUE_SIZE", 256),
		OTLPEndpoint:        r.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	level, err := telemetry.ParseLevel(r.str("LOG_LEVEL", "info"))
	if err != nil {
		r.fail(err)
	}
	c.LogLevel = level

	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		r.fail(fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver))
	}
	if c.EndpointPrefix != "" && !strings.HasPrefix(c.EndpointPrefix, "/") {
		r.fail(fmt.Errorf("SERVICE_ENDPOINT_PREFIX must start with /, got %q", c.EndpointPrefix))
	}
	if c.CartTTL <= 0 {
		r.fail(errors.New("CART_TTL must be positive"))
	}
	if c.CartSweepInterval < 0 {
		r.fail(errors.New("CART_SWEEP_INTERVAL must not be negative"))
	}
	if c.NotifyQueueSize < 1 {
		r.fail(errors.New("NOTIFY_QUEUE_SIZE must be at least 1"))
	}

	if err := r.errs.ErrorOrNil(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

type reader struct {
	lookup func(string) (string, bool)
	errs   *multierror.Error
}

func (r *reader) fail(err error) {
	r.errs = multierror.Append(r.errs, err)
}

func (r *reader) str(key, fallback string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *reader) required(key string) string {
	v := r.str(key, "")
	if v == "" {
		r.fail(fmt.Errorf("%s is not set", key))
	}
	return v
}

func (r *reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (r *reader) boolean(key string, fallback bool) bool {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (r *reader) integer(key string, fallback int) int {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}
