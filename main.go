package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"search-gateway/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "search-gateway: %v\n", err)
		os.Exit(1)
	}
}
