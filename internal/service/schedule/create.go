package schedule

import (
	"context"
	"fmt"

	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// Create validates and persists a new schedule. Insert and initial
// materialization run in one transaction, so a schedule never exists
// without its upcoming dose instances.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Schedule, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Schedule{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Schedule{}, err
	}

	sched := input.toSchedule()
	sched.UserID = userID

	var created domain.Schedule
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.schedules.Create(ctx, sched)
		if err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}

		count, err := s.doseSvc.Materialize(ctx, created)
		if err != nil {
			return fmt.Errorf("materialize doses: %w", err)
		}

		s.log.Info("schedule created",
			"schedule_id", created.ID, "user_id", userID, "doses_materialized", count)
		return nil
	})
	if err != nil {
		return domain.Schedule{}, err
	}

	s.emitCalendarEvent(ctx, "created", created)

	return created, nil
}
