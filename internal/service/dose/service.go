// Package dose implements the dose instance business logic: horizon
// materialization, the status lifecycle, and owner-scoped reads.
package dose

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type doseRepo interface {
	BulkInsert(ctx context.Context, instances []domain.DoseInstance) (int, error)
	Create(ctx context.Context, inst domain.DoseInstance) (domain.DoseInstance, error)
	GetByID(ctx context.Context, userID, doseID uuid.UUID) (domain.DoseInstance, error)
	Transition(ctx context.Context, userID, doseID uuid.UUID, params domain.TransitionParams) (domain.DoseInstance, error)
	List(ctx context.Context, userID uuid.UUID, filter postgresdose.ListFilter) ([]domain.DoseInstance, error)
	ListUpcoming(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]postgresdose.DoseWithScheduleName, error)
}

type scheduleRepo interface {
	ListActive(ctx context.Context) ([]domain.Schedule, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements dose materialization and lifecycle logic.
type Service struct {
	doses     doseRepo
	schedules scheduleRepo
	tx        txManager
	log       *slog.Logger

	horizonDays    int
	snoozeDuration time.Duration

	now func() time.Time
}

// NewService creates a new dose service.
func NewService(
	log *slog.Logger,
	doses doseRepo,
	schedules scheduleRepo,
	tx txManager,
	horizonDays int,
	snoozeDuration time.Duration,
) *Service {
	return &Service{
		doses:          doses,
		schedules:      schedules,
		tx:             tx,
		log:            log.With("service", "dose"),
		horizonDays:    horizonDays,
		snoozeDuration: snoozeDuration,
		now:            time.Now,
	}
}
