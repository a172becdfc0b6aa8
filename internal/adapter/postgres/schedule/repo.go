// Package schedule implements the Schedule repository using PostgreSQL.
// Fixed-shape queries are raw SQL; the list query uses squirrel because its
// filter set is dynamic.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/medremind/medremind-backend/internal/adapter/postgres"
	"github.com/medremind/medremind-backend/internal/domain"
)

// ListFilter narrows List results. Nil fields are ignored.
type ListFilter struct {
	Active    *bool
	Frequency *domain.Frequency
}

// Repo provides schedule persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new schedule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const scheduleColumns = `id, user_id, name, dosage, frequency, times,
       start_date, end_date, active, notes, created_at, updated_at`

const createScheduleSQL = `
INSERT INTO schedules (id, user_id, name, dosage, frequency, times,
                       start_date, end_date, active, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + scheduleColumns

const getScheduleByIDSQL = `
SELECT ` + scheduleColumns + `
FROM schedules
WHERE id = $1 AND user_id = $2`

const updateScheduleSQL = `
UPDATE schedules
SET name = $3, dosage = $4, frequency = $5, times = $6,
    start_date = $7, end_date = $8, active = $9, notes = $10, updated_at = $11
WHERE id = $1 AND user_id = $2
RETURNING ` + scheduleColumns

const deleteScheduleSQL = `DELETE FROM schedules WHERE id = $1 AND user_id = $2`

const listActiveSQL = `
SELECT ` + scheduleColumns + `
FROM schedules
WHERE active
ORDER BY created_at ASC`

// Create inserts a new schedule and returns the persisted row.
func (r *Repo) Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()

	row := querier.QueryRow(ctx, createScheduleSQL,
		id, s.UserID, s.Name, s.Dosage, string(s.Frequency), s.Times,
		s.StartDate, s.EndDate, s.Active, s.Notes, now, now)

	created, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, postgres.MapError(err, "schedule", id)
	}

	return created, nil
}

// GetByID returns a schedule by primary key scoped to its owner.
// A schedule owned by a different user yields domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, userID, scheduleID uuid.UUID) (domain.Schedule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getScheduleByIDSQL, scheduleID, userID)

	s, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, postgres.MapError(err, "schedule", scheduleID)
	}

	return s, nil
}

// List returns the user's schedules matching the filter, newest first.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]domain.Schedule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query := builder.
		Select("id", "user_id", "name", "dosage", "frequency", "times",
			"start_date", "end_date", "active", "notes", "created_at", "updated_at").
		From("schedules").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if filter.Active != nil {
		query = query.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.Frequency != nil {
		query = query.Where(squirrel.Eq{"frequency": string(*filter.Frequency)})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list schedules query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListActive returns every active schedule across all users,
// used by the horizon top-up.
func (r *Repo) ListActive(ctx context.Context) ([]domain.Schedule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listActiveSQL)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// Update overwrites the schedule's mutable fields and returns the updated row.
// Returns domain.ErrNotFound if the schedule does not exist or belongs to
// another user.
func (r *Repo) Update(ctx context.Context, userID uuid.UUID, s domain.Schedule) (domain.Schedule, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, updateScheduleSQL,
		s.ID, userID, s.Name, s.Dosage, string(s.Frequency), s.Times,
		s.StartDate, s.EndDate, s.Active, s.Notes, now)

	updated, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, postgres.MapError(err, "schedule", s.ID)
	}

	return updated, nil
}

// Delete removes a schedule; dose instances follow via ON DELETE CASCADE.
// Returns domain.ErrNotFound if 0 rows affected.
func (r *Repo) Delete(ctx context.Context, userID, scheduleID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteScheduleSQL, scheduleID, userID)
	if err != nil {
		return postgres.MapError(err, "schedule", scheduleID)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("schedule %s: %w", scheduleID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSchedule(row pgx.Row) (domain.Schedule, error) {
	var (
		s         domain.Schedule
		frequency string
	)

	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Dosage, &frequency, &s.Times,
		&s.StartDate, &s.EndDate, &s.Active, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Schedule{}, err
	}

	s.Frequency = domain.Frequency(frequency)

	return s, nil
}

func scanSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	if schedules == nil {
		schedules = []domain.Schedule{}
	}

	return schedules, nil
}
