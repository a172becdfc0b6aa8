// Package schedule implements the medication schedule CRUD surface and
// keeps the materialized dose horizon consistent with every mutation.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	postgresschedule "github.com/medremind/medremind-backend/internal/adapter/postgres/schedule"
	"github.com/medremind/medremind-backend/internal/adapter/provider/calendar"
	"github.com/medremind/medremind-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type scheduleRepo interface {
	Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error)
	GetByID(ctx context.Context, userID, scheduleID uuid.UUID) (domain.Schedule, error)
	List(ctx context.Context, userID uuid.UUID, filter postgresschedule.ListFilter) ([]domain.Schedule, error)
	Update(ctx context.Context, userID uuid.UUID, s domain.Schedule) (domain.Schedule, error)
	Delete(ctx context.Context, userID, scheduleID uuid.UUID) error
}

type doseRepo interface {
	DeleteFuturePending(ctx context.Context, scheduleID uuid.UUID, cutoff time.Time) (int, error)
}

type materializer interface {
	Materialize(ctx context.Context, schedule domain.Schedule) (int, error)
}

type calendarNotifier interface {
	ScheduleChanged(ctx context.Context, ev calendar.Event) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements schedule management.
type Service struct {
	schedules scheduleRepo
	doses     doseRepo
	doseSvc   materializer
	cal       calendarNotifier
	tx        txManager
	log       *slog.Logger

	now func() time.Time
}

// NewService creates a new schedule service.
func NewService(
	log *slog.Logger,
	schedules scheduleRepo,
	doses doseRepo,
	doseSvc materializer,
	cal calendarNotifier,
	tx txManager,
) *Service {
	return &Service{
		schedules: schedules,
		doses:     doses,
		doseSvc:   doseSvc,
		cal:       cal,
		tx:        tx,
		log:       log.With("service", "schedule"),
		now:       time.Now,
	}
}

// emitCalendarEvent delivers a mutation event to the calendar notifier.
// Sync failures are logged and swallowed; the mutation has already
// committed and must not be rolled back over a sync hiccup.
func (s *Service) emitCalendarEvent(ctx context.Context, action string, sched domain.Schedule) {
	ev := calendar.Event{
		Action:     action,
		UserID:     sched.UserID,
		ScheduleID: sched.ID,
		Name:       sched.Name,
		Times:      sched.Times,
		StartDate:  sched.StartDate,
		EndDate:    sched.EndDate,
		OccurredAt: s.now().UTC(),
	}

	if err := s.cal.ScheduleChanged(ctx, ev); err != nil {
		s.log.Warn("calendar sync failed",
			"action", action, "schedule_id", sched.ID, "error", err)
	}
}
