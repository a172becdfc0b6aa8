// Package app wires configuration, storage, services and transport into
// a runnable server process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/medremind/medremind-backend/internal/adapter/postgres"
	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	postgresschedule "github.com/medremind/medremind-backend/internal/adapter/postgres/schedule"
	"github.com/medremind/medremind-backend/internal/adapter/provider/calendar"
	"github.com/medremind/medremind-backend/internal/adapter/provider/notify"
	"github.com/medremind/medremind-backend/internal/adapter/provider/risk"
	"github.com/medremind/medremind-backend/internal/auth"
	"github.com/medremind/medremind-backend/internal/config"
	"github.com/medremind/medremind-backend/internal/service/adherence"
	"github.com/medremind/medremind-backend/internal/service/dose"
	"github.com/medremind/medremind-backend/internal/service/insight"
	"github.com/medremind/medremind-backend/internal/service/reminder"
	"github.com/medremind/medremind-backend/internal/service/schedule"
	"github.com/medremind/medremind-backend/internal/transport/middleware"
	"github.com/medremind/medremind-backend/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is cancelled,
// then shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	scheduleRepo := postgresschedule.New(pool)
	doseRepo := postgresdose.New(pool)
	txManager := postgres.NewTxManager(pool)

	var calNotifier interface {
		ScheduleChanged(ctx context.Context, ev calendar.Event) error
	} = calendar.NoopNotifier{}
	if cfg.Calendar.SyncURL != "" {
		calNotifier = calendar.NewWebhookNotifier(cfg.Calendar.SyncURL, cfg.Calendar.SyncTimeout, logger)
	}

	var dispatcher interface {
		Dispatch(ctx context.Context, n notify.Notification) error
	} = notify.NewLogDispatcher(logger)
	if cfg.Notifier.WebhookURL != "" {
		dispatcher = notify.NewWebhookDispatcher(cfg.Notifier.WebhookURL, cfg.Notifier.DispatchTimeout, logger)
	}

	scorer := risk.NewScorer(cfg.Insight.ScorerURL, cfg.Insight.RequestTimeout, logger)

	doseSvc := dose.NewService(logger, doseRepo, scheduleRepo, txManager,
		cfg.Reminder.HorizonDays, cfg.Reminder.SnoozeDuration)
	scheduleSvc := schedule.NewService(logger, scheduleRepo, doseRepo, doseSvc, calNotifier, txManager)
	adherenceSvc := adherence.NewService(logger, doseRepo)
	insightSvc := insight.NewService(logger, doseRepo, scheduleRepo, scorer,
		cfg.Insight.HistoryDays, cfg.Insight.RequestTimeout)

	scanner := reminder.NewScanner(logger, doseRepo, doseSvc, dispatcher, reminder.Config{
		ScanInterval:    cfg.Reminder.ScanInterval,
		Lookahead:       cfg.Reminder.Lookahead,
		MissedGrace:     cfg.Reminder.MissedGrace,
		TopUpInterval:   cfg.Reminder.TopUpInterval,
		ScanBatchSize:   cfg.Reminder.ScanBatchSize,
		DispatchTimeout: cfg.Notifier.DispatchTimeout,
	})

	mux := rest.NewRouter(rest.Handlers{
		Schedules: rest.NewScheduleHandler(scheduleSvc, logger),
		Doses:     rest.NewDoseHandler(doseSvc, logger),
		Stats:     rest.NewStatsHandler(adherenceSvc, logger),
		Insights:  rest.NewInsightHandler(insightSvc, logger),
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
	})

	validator := auth.NewJWTValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(validator),
		limiter.Limit(cfg.Server.RateLimitPerMinute),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	scanCtx, stopScanner := context.WithCancel(ctx)
	defer stopScanner()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner.Run(scanCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stopScanner()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}

	stopScanner()
	wg.Wait()

	logger.Info("application stopped")
	return nil
}
