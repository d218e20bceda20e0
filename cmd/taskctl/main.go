package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskmanager/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(nil)
	if err := root.ExecuteContext(ctx); err != nil {
		noColor, _ := root.PersistentFlags().GetBool("no-color")
		cli.Error(os.Stderr, err, noColor)
		stop()
		os.Exit(1)
	}
}
