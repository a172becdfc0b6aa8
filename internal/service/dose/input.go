package dose

import (
	"time"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/internal/domain"
)

// TransitionInput holds the parameters for a status transition.
type TransitionInput struct {
	Status domain.DoseStatus
	Notes  *string
}

// Validate checks all fields and collects all errors.
func (i *TransitionInput) Validate() error {
	var errs []domain.FieldError

	if !i.Status.IsValid() || i.Status == domain.DoseStatusPending {
		errs = append(errs, domain.FieldError{
			Field:   "status",
			Message: "must be taken, missed, skipped, or snoozed",
		})
	}
	if i.Notes != nil && len(*i.Notes) > 2000 {
		errs = append(errs, domain.FieldError{Field: "notes", Message: "too long (max 2000)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListInput holds the filters for listing dose instances.
type ListInput struct {
	Status     *domain.DoseStatus
	ScheduleID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Validate checks all fields and collects all errors.
func (i *ListInput) Validate() error {
	var errs []domain.FieldError

	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}
	if i.From != nil && i.To != nil && i.To.Before(*i.From) {
		errs = append(errs, domain.FieldError{Field: "to", Message: "must not precede from"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
