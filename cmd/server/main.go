// Command server runs the medication reminder backend: REST API plus the
// in-process reminder scanner.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/medremind/medremind-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
