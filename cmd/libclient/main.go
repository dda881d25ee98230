package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/library-maintenance/libclient/cmd/libclient/commands"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "libclient: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return commands.Execute(ctx, os.Args[1:], os.Stdout)
}
