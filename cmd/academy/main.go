package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"academy/internal/cli"
	"academy/internal/cli/colours"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}); err != nil {
		colours.Error.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
