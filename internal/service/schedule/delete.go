package schedule

import (
	"context"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// Delete removes a schedule. Its dose instances, pending and actioned
// alike, go with it via the database cascade.
func (s *Service) Delete(ctx context.Context, scheduleID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	existing, err := s.schedules.GetByID(ctx, userID, scheduleID)
	if err != nil {
		return err
	}

	if err := s.schedules.Delete(ctx, userID, scheduleID); err != nil {
		return err
	}

	s.log.Info("schedule deleted", "schedule_id", scheduleID, "user_id", userID)

	s.emitCalendarEvent(ctx, "deleted", existing)

	return nil
}
