package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"store-service/internal/cart"
	"store-service/internal/rpc"
	"store-service/internal/stores/migrations"
	"store-service/pkg/ctxmanage"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back schema migrations",
		Flags: dbFlags(),
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					s, _, err := openStoreFromFlags(c)
					if err != nil {
						return err
					}
					defer s.Close()
					return s.Migrate(c.Context)
				},
			},
			{
				Name:  "down",
				Usage: "roll back the most recent migration",
				Action: func(c *cli.Context) error {
					s, dialect, err := openStoreFromFlags(c)
					if err != nil {
						return err
					}
					defer s.Close()
					return migrations.Down(c.Context, s.DB(), dialect)
				},
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: func(c *cli.Context) error {
					s, dialect, err := openStoreFromFlags(c)
					if err != nil {
						return err
					}
					defer s.Close()
					v, err := migrations.Version(c.Context, s.DB(), dialect)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, v)
					return nil
				},
			},
		},
	}
}

func sweepCartsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep-carts",
		Usage: "delete carts older than --ttl once and exit",
		Flags: append(dbFlags(), &cli.DurationFlag{
			Name:    "ttl",
			Value:   7 * 24 * time.Hour,
			EnvVars: []string{"CART_TTL"},
		}),
		Action: func(c *cli.Context) error {
			s, _, err := openStoreFromFlags(c)
			if err != nil {
				return err
			}
			defer s.Close()
			cConf, err := cart.NewConf(s)
			if err != nil {
				return err
			}
			n, err := cConf.SweepExpired(c.Context, c.Duration("ttl"))
			if err != nil {
				return err
			}
			slog.Info("expired carts swept", slog.Int64("count", n), slog.Duration("ttl", c.Duration("ttl")))
			return nil
		},
	}
}

// cartDetailsCommand queries a running instance over gRPC.
func cartDetailsCommand() *cli.Command {
	return &cli.Command{
		Name:      "cart-details",
		Usage:     "print a cart fetched through the gRPC CartItemService",
		ArgsUsage: "<cart-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "localhost:9090", EnvVars: []string{"GRPC_ADDR"}},
			&cli.DurationFlag{Name: "timeout", Value: 5 * time.Second},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one cart id is required", 2)
			}
			conn, err := rpc.Dial(c.String("addr"))
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			ctx = ctxmanage.WithTraceId(ctx, "cli-"+time.Now().UTC().Format("20060102T150405"))

			resp, err := rpc.NewCartItemServiceClient(conn).GetCartDetails(ctx, &rpc.GetCartDetailsRequest{CartID: c.Args().First()})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}
