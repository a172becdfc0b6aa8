package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// Update rewrites a schedule's definition and reconciles the dose horizon:
// future pending instances are dropped and the horizon is re-materialized
// against the new times, all in one transaction. Already-actioned and past
// instances are untouched.
func (s *Service) Update(ctx context.Context, scheduleID uuid.UUID, input UpdateInput) (domain.Schedule, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Schedule{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Schedule{}, err
	}

	existing, err := s.schedules.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return domain.Schedule{}, err
	}

	next := input.apply(existing)

	var updated domain.Schedule
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.schedules.Update(ctx, userID, next)
		if err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}

		dropped, err := s.doses.DeleteFuturePending(ctx, scheduleID, s.now().UTC())
		if err != nil {
			return fmt.Errorf("drop stale pending doses: %w", err)
		}

		count, err := s.doseSvc.Materialize(ctx, updated)
		if err != nil {
			return fmt.Errorf("rematerialize doses: %w", err)
		}

		s.log.Info("schedule updated",
			"schedule_id", scheduleID, "user_id", userID,
			"doses_dropped", dropped, "doses_materialized", count)
		return nil
	})
	if err != nil {
		return domain.Schedule{}, err
	}

	s.emitCalendarEvent(ctx, "updated", updated)

	return updated, nil
}
