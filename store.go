package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/urfave/cli/v2"

	"store-service/internal/cart"
	"store-service/internal/catalog"
	"store-service/internal/checkout"
	"store-service/internal/config"
	"store-service/internal/customers"
	"store-service/internal/orders"
	"store-service/internal/stores/migrations"
	"store-service/internal/stores/postgres"
	"store-service/internal/stores/sqlite"
)

// store is what either SQL backend provides.
type store interface {
	catalog.Repository
	cart.Repository
	orders.Repository
	customers.Repository
	checkout.Repository
	Migrate(ctx context.Context) error
	DB() *sql.DB
	Close() error
}

// openStore returns the backend for driver and the goose dialect of its migrations.
func openStore(ctx context.Context, driver, url string) (store, string, error) {
	switch driver {
	case config.DriverPostgres:
		s, err := postgres.OpenDB(ctx, url)
		if err != nil {
			return nil, "", err
		}
		return s, migrations.Postgres, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(url)
		if err != nil {
			return nil, "", err
		}
		return s, migrations.SQLite, nil
	}
	return nil, "", fmt.Errorf("unknown database driver %q", driver)
}

// dbFlags let the maintenance commands run without the full serve configuration.
func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "driver",
			Usage:   "database driver, postgres or sqlite",
			Value:   config.DriverPostgres,
			EnvVars: []string{"DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "DSN, or the file path for sqlite",
			EnvVars:  []string{"DATABASE_URL"},
			Required: true,
		},
	}
}

func openStoreFromFlags(c *cli.Context) (store, string, error) {
	return openStore(c.Context, c.String("driver"), c.String("database-url"))
}
