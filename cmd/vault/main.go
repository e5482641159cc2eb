package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "vault",
		Usage: "StellarVault token accounting service",
		Commands: []*cli.Command{
			serveCommand(),
			fetchCommand(),
			quoteCommand(),
			unlockCommand(),
			snapshotCommand(),
			exportCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("vault: %v", err)
	}
}
