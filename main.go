package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portscout/api"
	"portscout/cli"
	"portscout/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := api.Run(ctx); err != nil {
			logging.Logger().Error("portscout API server stopped", "error", err)
			stop()
			os.Exit(1)
		}
		return
	}

	code := cli.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
