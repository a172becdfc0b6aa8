// Package reminder runs the background loop that expires overdue doses,
// dispatches due reminders and tops up materialized instances.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/adapter/provider/notify"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type doseRepo interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int, error)
	ListDueWindow(ctx context.Context, from, to time.Time, limit int) ([]postgresdose.DoseWithScheduleName, error)
}

type materializer interface {
	MaterializeAll(ctx context.Context) (int, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, n notify.Notification) error
}

// ---------------------------------------------------------------------------
// Scanner
// ---------------------------------------------------------------------------

// Config holds the scanner's timing parameters.
type Config struct {
	ScanInterval    time.Duration
	Lookahead       time.Duration
	MissedGrace     time.Duration
	TopUpInterval   time.Duration
	ScanBatchSize   int
	DispatchTimeout time.Duration
}

// Scanner periodically sweeps the dose table. Each tick expires pending
// instances past the missed grace period, then dispatches a reminder for
// every pending instance due within the lookahead window. A slower second
// ticker re-materializes upcoming instances for all active schedules.
type Scanner struct {
	doses      doseRepo
	doseSvc    materializer
	dispatcher dispatcher
	cfg        Config
	log        *slog.Logger

	now func() time.Time
}

// NewScanner creates a new reminder scanner.
func NewScanner(
	log *slog.Logger,
	doses doseRepo,
	doseSvc materializer,
	d dispatcher,
	cfg Config,
) *Scanner {
	return &Scanner{
		doses:      doses,
		doseSvc:    doseSvc,
		dispatcher: d,
		cfg:        cfg,
		log:        log.With("service", "reminder"),
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled, driving the scan and top-up tickers.
func (s *Scanner) Run(ctx context.Context) {
	s.log.Info("reminder scanner started",
		"scan_interval", s.cfg.ScanInterval,
		"lookahead", s.cfg.Lookahead,
		"missed_grace", s.cfg.MissedGrace)

	scanTicker := time.NewTicker(s.cfg.ScanInterval)
	defer scanTicker.Stop()

	topUpTicker := time.NewTicker(s.cfg.TopUpInterval)
	defer topUpTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scanner stopped")
			return
		case <-scanTicker.C:
			s.Tick(ctx)
		case <-topUpTicker.C:
			s.TopUp(ctx)
		}
	}
}

// Tick performs one scan pass: expire overdue instances, then dispatch
// reminders for everything due within the lookahead window. Dispatch
// failures are logged per item and never abort the pass.
func (s *Scanner) Tick(ctx context.Context) {
	now := s.now().UTC()

	expired, err := s.doses.ExpirePending(ctx, now.Add(-s.cfg.MissedGrace))
	if err != nil {
		s.log.Error("expire sweep failed", "error", err)
	} else if expired > 0 {
		s.log.Info("expired overdue doses", "count", expired)
	}

	due, err := s.doses.ListDueWindow(ctx, now, now.Add(s.cfg.Lookahead), s.cfg.ScanBatchSize)
	if err != nil {
		s.log.Error("due window query failed", "error", err)
		return
	}

	for _, d := range due {
		if err := s.dispatch(ctx, d); err != nil {
			s.log.Error("reminder dispatch failed",
				"dose_id", d.ID, "user_id", d.UserID, "error", err)
		}
	}
}

// TopUp extends the materialized horizon for every active schedule.
func (s *Scanner) TopUp(ctx context.Context) {
	created, err := s.doseSvc.MaterializeAll(ctx)
	if err != nil {
		s.log.Error("materialization top-up finished with errors",
			"created", created, "error", err)
		return
	}
	if created > 0 {
		s.log.Info("materialization top-up complete", "created", created)
	}
}

func (s *Scanner) dispatch(ctx context.Context, d postgresdose.DoseWithScheduleName) error {
	dispatchCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()

	n := notify.Notification{
		Recipient: d.UserID,
		Title:     fmt.Sprintf("Time for %s", d.ScheduleName),
		Body:      fmt.Sprintf("%s scheduled for %s", d.Dosage, d.ScheduledFor.Format("15:04")),
		Metadata: map[string]string{
			"doseId":       d.ID.String(),
			"scheduleId":   d.ScheduleID.String(),
			"scheduledFor": d.ScheduledFor.Format(time.RFC3339),
		},
	}

	return s.dispatcher.Dispatch(dispatchCtx, n)
}
