package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medremind/medremind-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedSchedule creates an active daily schedule for userID starting at
// startDate with the given times. Returns the filled domain.Schedule.
func SeedSchedule(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, startDate time.Time, times []string) domain.Schedule {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	s := domain.Schedule{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "Med " + uniqueSuffix(),
		Dosage:    "10mg",
		Frequency: domain.FrequencyDaily,
		Times:     times,
		StartDate: domain.DayStartUTC(startDate),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO schedules (id, user_id, name, dosage, frequency, times, start_date, end_date, active, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.UserID, s.Name, s.Dosage, string(s.Frequency), s.Times,
		s.StartDate, s.EndDate, s.Active, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSchedule insert: %v", err)
	}

	return s
}

// SeedDose creates a dose instance for the schedule at scheduledFor with the
// given status. actioned_at is set to scheduledFor for terminal statuses.
func SeedDose(t *testing.T, pool *pgxpool.Pool, schedule domain.Schedule, scheduledFor time.Time, status domain.DoseStatus) domain.DoseInstance {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	d := domain.DoseInstance{
		ID:           uuid.New(),
		UserID:       schedule.UserID,
		ScheduleID:   schedule.ID,
		ScheduledFor: scheduledFor.UTC().Truncate(time.Microsecond),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status.IsTerminal() && status != domain.DoseStatusMissed {
		at := d.ScheduledFor
		d.ActionedAt = &at
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO dose_instances (id, user_id, schedule_id, scheduled_for, status, actioned_at, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.UserID, d.ScheduleID, d.ScheduledFor, string(d.Status),
		d.ActionedAt, d.Notes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDose insert: %v", err)
	}

	return d
}
