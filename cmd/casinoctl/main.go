// Package main provides a CLI for running casino command scripts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtding233/casino-core/internal/config"

	casinoctl "github.com/xtding233/casino-core/internal/cmd/casinoctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := casinoctl.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
