package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "store-service",
		Usage: "carts, checkout and orders for the store",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			sweepCartsCommand(),
			cartDetailsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("store-service failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
