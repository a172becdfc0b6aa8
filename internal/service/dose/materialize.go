package dose

import (
	"context"
	"fmt"
	"time"

	"github.com/medremind/medremind-backend/internal/domain"
)

// Materialize expands the schedule into pending instances covering the
// rolling horizon and bulk-inserts them. Slots that already exist are
// skipped by the storage layer, so re-running is safe. Returns the number
// of instances actually created.
func (s *Service) Materialize(ctx context.Context, schedule domain.Schedule) (int, error) {
	staged := s.stageInstances(schedule)
	if len(staged) == 0 {
		return 0, nil
	}

	inserted, err := s.doses.BulkInsert(ctx, staged)
	if err != nil {
		return 0, fmt.Errorf("materialize schedule %s: %w", schedule.ID, err)
	}

	return inserted, nil
}

// MaterializeAll tops up the horizon for every active schedule. Per-schedule
// failures are logged and skipped so one broken schedule cannot starve the
// rest; the first error is still reported to the caller.
func (s *Service) MaterializeAll(ctx context.Context) (int, error) {
	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active schedules: %w", err)
	}

	var (
		total    int
		firstErr error
	)
	for _, schedule := range schedules {
		inserted, err := s.Materialize(ctx, schedule)
		if err != nil {
			s.log.Error("materialize schedule failed",
				"schedule_id", schedule.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += inserted
	}

	return total, firstErr
}

// stageInstances computes the candidate instants for the horizon.
// All calendar arithmetic runs on UTC midnights so the produced days do not
// depend on the caller's local time.
func (s *Service) stageInstances(schedule domain.Schedule) []domain.DoseInstance {
	today := domain.DayStartUTC(s.now())
	startDay := domain.DayStartUTC(schedule.StartDate)

	effectiveStart := startDay
	if today.After(startDay) {
		effectiveStart = today
	}

	var staged []domain.DoseInstance
	for i := 0; i < s.horizonDays; i++ {
		day := effectiveStart.AddDate(0, 0, i)
		if !schedule.ActiveOn(day) {
			continue
		}

		for _, raw := range schedule.Times {
			hour, minute, err := domain.ParseClockTime(raw)
			if err != nil {
				s.log.Warn("skipping malformed schedule time",
					"schedule_id", schedule.ID, "time", raw, "error", err)
				continue
			}

			candidate := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

			// Guards the edge where "today" rounds backward before the
			// schedule's real start.
			if candidate.Before(startDay) {
				continue
			}

			staged = append(staged, domain.DoseInstance{
				UserID:       schedule.UserID,
				ScheduleID:   schedule.ID,
				ScheduledFor: candidate,
				Status:       domain.DoseStatusPending,
			})
		}
	}

	return staged
}
