package schedule

import (
	"context"

	"github.com/google/uuid"

	postgresschedule "github.com/medremind/medremind-backend/internal/adapter/postgres/schedule"
	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// Get returns one of the authenticated user's schedules.
func (s *Service) Get(ctx context.Context, scheduleID uuid.UUID) (domain.Schedule, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.Schedule{}, domain.ErrUnauthorized
	}

	return s.schedules.GetByID(ctx, userID, scheduleID)
}

// ListInput holds the filters for listing schedules.
type ListInput struct {
	Active    *bool
	Frequency *domain.Frequency
}

// List returns the authenticated user's schedules matching the filter.
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.Schedule, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if input.Frequency != nil && !input.Frequency.IsValid() {
		return nil, domain.NewValidationErrors([]domain.FieldError{
			{Field: "frequency", Message: "invalid value"},
		})
	}

	return s.schedules.List(ctx, userID, postgresschedule.ListFilter{
		Active:    input.Active,
		Frequency: input.Frequency,
	})
}
