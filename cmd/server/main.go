package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/shortlink/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	// Blocks until shutdown.
	return application.Start(ctx)
}
