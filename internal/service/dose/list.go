package dose

import (
	"context"

	"github.com/google/uuid"

	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// Get returns a single dose instance owned by the authenticated user.
func (s *Service) Get(ctx context.Context, doseID uuid.UUID) (domain.DoseInstance, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.DoseInstance{}, domain.ErrUnauthorized
	}

	return s.doses.GetByID(ctx, userID, doseID)
}

// List returns the authenticated user's dose instances matching the filters,
// ordered by due instant ascending.
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.DoseInstance, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	return s.doses.List(ctx, userID, postgresdose.ListFilter{
		Status:     input.Status,
		ScheduleID: input.ScheduleID,
		From:       input.From,
		To:         input.To,
	})
}

// defaultUpcomingLimit bounds the upcoming listing when the caller does not
// ask for a specific count.
const defaultUpcomingLimit = 20

// Upcoming returns the authenticated user's next pending doses from now on,
// soonest first, joined with schedule display fields.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]postgresdose.DoseWithScheduleName, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if limit <= 0 {
		limit = defaultUpcomingLimit
	}

	return s.doses.ListUpcoming(ctx, userID, s.now().UTC(), limit)
}
