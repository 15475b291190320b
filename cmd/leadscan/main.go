package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/FranksOps/leadscan/internal/input"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, input.ErrInputNotFound) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "leadscan: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
