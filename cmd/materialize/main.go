// Command materialize tops up the dose instance horizon for every active
// schedule. The server does this hourly; this binary covers initial
// backfills and recovery after extended downtime.
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
	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	postgresschedule "github.com/medremind/medremind-backend/internal/adapter/postgres/schedule"
	"github.com/medremind/medremind-backend/internal/app"
	"github.com/medremind/medremind-backend/internal/config"
	"github.com/medremind/medremind-backend/internal/service/dose"
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

	doseSvc := dose.NewService(
		logger,
		postgresdose.New(pool),
		postgresschedule.New(pool),
		postgres.NewTxManager(pool),
		cfg.Reminder.HorizonDays,
		cfg.Reminder.SnoozeDuration,
	)

	created, err := doseSvc.MaterializeAll(ctx)
	if err != nil {
		logger.Error("materialization finished with errors",
			slog.Int("created", created),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("materialization completed", slog.Int("created", created))
}
