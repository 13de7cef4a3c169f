// Command dbcheck connects to the configured link store and prints how many
// links it holds. It exits non-zero when the store cannot be reached.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sundayezeilo/shortlink/internal/app"
)

const checkTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, logger, err := app.Bootstrap()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer store.Close()

	n, err := store.Repository.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count links: %w", err)
	}

	fmt.Printf("database connection OK (%s): %d links\n", cfg.Database.Driver, n)
	return nil
}
