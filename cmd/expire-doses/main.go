// Command expire-doses marks pending dose instances past the missed grace
// period as missed. The server's scanner does this continuously; this
// binary exists for deployments that prefer an external cron job, and as a
// recovery tool after scanner downtime.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/medremind/medremind-backend/internal/adapter/postgres"
	"github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/app"
	"github.com/medremind/medremind-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	doseRepo := dose.New(pool)

	cutoff := time.Now().UTC().Add(-cfg.Reminder.MissedGrace)

	expired, err := doseRepo.ExpirePending(ctx, cutoff)
	if err != nil {
		logger.Error("expire sweep failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		os.Exit(1)
	}

	logger.Info("expire sweep completed",
		slog.Int("expired", expired),
		slog.Time("cutoff", cutoff),
	)
}
