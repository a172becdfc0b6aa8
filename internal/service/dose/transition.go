package dose

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// Transition applies a terminal status to a pending dose instance owned by
// the authenticated user. The write is a single conditional update scoped by
// (id, owner, pending), so two concurrent transitions cannot both win.
// A snooze additionally spawns a replacement pending instance at
// now + snooze duration, in the same transaction.
func (s *Service) Transition(ctx context.Context, doseID uuid.UUID, input TransitionInput) (domain.DoseInstance, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.DoseInstance{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.DoseInstance{}, err
	}

	existing, err := s.doses.GetByID(ctx, userID, doseID)
	if err != nil {
		return domain.DoseInstance{}, err
	}

	if !existing.Status.CanTransition(input.Status) {
		if existing.Status.IsTerminal() {
			return domain.DoseInstance{}, fmt.Errorf(
				"dose %s already %s: %w", doseID, existing.Status, domain.ErrConflict)
		}
		return domain.DoseInstance{}, fmt.Errorf(
			"transition %s -> %s: %w", existing.Status, input.Status, domain.ErrValidation)
	}

	// actioned_at never precedes the due instant: an early take clamps to
	// scheduled_for, matching the storage CHECK constraint.
	actionedAt := s.now().UTC()
	if actionedAt.Before(existing.ScheduledFor) {
		actionedAt = existing.ScheduledFor
	}

	params := domain.TransitionParams{
		Status:     input.Status,
		ActionedAt: &actionedAt,
		Notes:      input.Notes,
	}

	if input.Status == domain.DoseStatusSnoozed {
		return s.snooze(ctx, userID, doseID, existing, params)
	}

	updated, err := s.doses.Transition(ctx, userID, doseID, params)
	if err != nil {
		// The instance was pending moments ago: losing the conditional
		// update means a concurrent transition won.
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DoseInstance{}, fmt.Errorf("dose %s: %w", doseID, domain.ErrConflict)
		}
		return domain.DoseInstance{}, err
	}

	return updated, nil
}

// snooze closes the instance as snoozed and creates the replacement pending
// instance, atomically.
func (s *Service) snooze(ctx context.Context, userID, doseID uuid.UUID, existing domain.DoseInstance, params domain.TransitionParams) (domain.DoseInstance, error) {
	replacementAt := s.now().UTC().Add(s.snoozeDuration)

	var updated domain.DoseInstance
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.doses.Transition(txCtx, userID, doseID, params)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("dose %s: %w", doseID, domain.ErrConflict)
			}
			return err
		}

		_, err = s.doses.Create(txCtx, domain.DoseInstance{
			UserID:       userID,
			ScheduleID:   existing.ScheduleID,
			ScheduledFor: replacementAt,
			Status:       domain.DoseStatusPending,
		})
		if err != nil {
			// The slot is already occupied; the user gets that reminder anyway.
			if errors.Is(err, domain.ErrAlreadyExists) {
				s.log.Warn("snooze replacement slot already occupied",
					"dose_id", doseID, "scheduled_for", replacementAt)
				return nil
			}
			return fmt.Errorf("create snooze replacement: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return domain.DoseInstance{}, txErr
	}

	return updated, nil
}
