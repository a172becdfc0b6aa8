// Package dose implements the DoseInstance repository using PostgreSQL.
// Fixed-shape queries are raw SQL; the list query uses squirrel because its
// filter set is dynamic. Materialization leans on the
// UNIQUE (schedule_id, scheduled_for) constraint: re-inserting an existing
// slot is a no-op, not an error.
package dose

import (
	"context"
	"errors"
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
	Status     *domain.DoseStatus
	ScheduleID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// DoseWithScheduleName wraps a domain.DoseInstance with its schedule's
// display fields for queries that join schedules.
type DoseWithScheduleName struct {
	domain.DoseInstance
	ScheduleName string
	Dosage       string
}

// WeekBucket is one ISO-week slice of the adherence trend, counts only.
// Rates and labels are derived by the caller.
type WeekBucket struct {
	Week  int
	Taken int
	Total int
}

// Repo provides dose instance persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dose instance repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const doseColumns = `id, user_id, schedule_id, scheduled_for, status,
       actioned_at, notes, created_at, updated_at`

// bulkInsertSQL fans staged slots out of parallel arrays. ON CONFLICT DO
// NOTHING keeps materialization idempotent across overlapping runs.
const bulkInsertSQL = `
INSERT INTO dose_instances (id, user_id, schedule_id, scheduled_for, status, created_at, updated_at)
SELECT u.id, u.user_id, u.schedule_id, u.scheduled_for, 'pending', $5, $5
FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::timestamptz[])
     AS u(id, user_id, schedule_id, scheduled_for)
ON CONFLICT (schedule_id, scheduled_for) DO NOTHING`

const getDoseByIDSQL = `
SELECT ` + doseColumns + `
FROM dose_instances
WHERE id = $1 AND user_id = $2`

// transitionSQL is the whole concurrency story for status changes: the
// status = 'pending' guard makes the first writer win and every later
// writer see zero rows.
const transitionSQL = `
UPDATE dose_instances
SET status = $3, actioned_at = $4, notes = COALESCE($5, notes), updated_at = $6
WHERE id = $1 AND user_id = $2 AND status = 'pending'
RETURNING ` + doseColumns

const createDoseSQL = `
INSERT INTO dose_instances (id, user_id, schedule_id, scheduled_for, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'pending', $5, $5)
ON CONFLICT (schedule_id, scheduled_for) DO NOTHING
RETURNING ` + doseColumns

const listDueWindowSQL = `
SELECT d.id, d.user_id, d.schedule_id, d.scheduled_for, d.status,
       d.actioned_at, d.notes, d.created_at, d.updated_at,
       s.name, s.dosage
FROM dose_instances d
JOIN schedules s ON d.schedule_id = s.id
WHERE d.status = 'pending'
  AND d.scheduled_for >= $1
  AND d.scheduled_for <= $2
ORDER BY d.scheduled_for ASC
LIMIT $3`

const expirePendingSQL = `
UPDATE dose_instances
SET status = 'missed', updated_at = $2
WHERE status = 'pending' AND scheduled_for < $1`

const countStatusesSQL = `
SELECT
    count(*) FILTER (WHERE status = 'taken')   AS taken,
    count(*) FILTER (WHERE status = 'missed')  AS missed,
    count(*) FILTER (WHERE status = 'skipped') AS skipped,
    count(*)                                   AS total
FROM dose_instances
WHERE user_id = $1 AND scheduled_for >= $2 AND scheduled_for <= $3`

const weeklyTrendSQL = `
SELECT
    EXTRACT(isoyear FROM scheduled_for)::int AS iso_year,
    EXTRACT(week FROM scheduled_for)::int    AS iso_week,
    count(*) FILTER (WHERE status = 'taken') AS taken,
    count(*)                                 AS total
FROM dose_instances
WHERE user_id = $1 AND scheduled_for >= $2 AND scheduled_for <= $3
GROUP BY iso_year, iso_week
ORDER BY iso_year ASC, iso_week ASC`

const listRecentTerminalSQL = `
SELECT d.id, d.user_id, d.schedule_id, d.scheduled_for, d.status,
       d.actioned_at, d.notes, d.created_at, d.updated_at,
       s.name, s.dosage
FROM dose_instances d
JOIN schedules s ON d.schedule_id = s.id
WHERE d.user_id = $1
  AND d.status IN ('taken', 'missed')
  AND d.scheduled_for >= $2
  AND d.scheduled_for <= $3
ORDER BY d.scheduled_for ASC`

const listUpcomingSQL = `
SELECT d.id, d.user_id, d.schedule_id, d.scheduled_for, d.status,
       d.actioned_at, d.notes, d.created_at, d.updated_at,
       s.name, s.dosage
FROM dose_instances d
JOIN schedules s ON d.schedule_id = s.id
WHERE d.user_id = $1 AND d.status = 'pending' AND d.scheduled_for >= $2
ORDER BY d.scheduled_for ASC
LIMIT $3`

const deleteFuturePendingSQL = `
DELETE FROM dose_instances
WHERE schedule_id = $1 AND status = 'pending' AND scheduled_for >= $2`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// BulkInsert stages pending instances for the given slots, skipping any slot
// that already exists. Returns the number of rows actually inserted.
func (r *Repo) BulkInsert(ctx context.Context, instances []domain.DoseInstance) (int, error) {
	if len(instances) == 0 {
		return 0, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ids := make([]uuid.UUID, len(instances))
	userIDs := make([]uuid.UUID, len(instances))
	scheduleIDs := make([]uuid.UUID, len(instances))
	scheduledFor := make([]time.Time, len(instances))
	for i, inst := range instances {
		ids[i] = uuid.New()
		userIDs[i] = inst.UserID
		scheduleIDs[i] = inst.ScheduleID
		scheduledFor[i] = inst.ScheduledFor.UTC()
	}

	now := time.Now().UTC().Truncate(time.Microsecond)

	tag, err := querier.Exec(ctx, bulkInsertSQL, ids, userIDs, scheduleIDs, scheduledFor, now)
	if err != nil {
		return 0, postgres.MapError(err, "dose_instance", uuid.Nil)
	}

	return int(tag.RowsAffected()), nil
}

// Create inserts a single pending instance, used by snooze replacement.
// An occupied slot yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, inst domain.DoseInstance) (domain.DoseInstance, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()

	row := querier.QueryRow(ctx, createDoseSQL,
		id, inst.UserID, inst.ScheduleID, inst.ScheduledFor.UTC(), now)

	created, err := scanDose(row)
	if err != nil {
		// DO NOTHING suppressed the insert: the slot is taken.
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DoseInstance{}, fmt.Errorf("dose_instance %s: %w", id, domain.ErrAlreadyExists)
		}
		return domain.DoseInstance{}, postgres.MapError(err, "dose_instance", id)
	}

	return created, nil
}

// Transition applies a status change to a pending instance owned by userID.
// The update is conditional on status = 'pending'; zero rows means the
// instance is gone, foreign, or no longer pending, reported as
// domain.ErrNotFound for the caller to discriminate.
func (r *Repo) Transition(ctx context.Context, userID, doseID uuid.UUID, params domain.TransitionParams) (domain.DoseInstance, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, transitionSQL,
		doseID, userID, string(params.Status), params.ActionedAt, params.Notes, now)

	updated, err := scanDose(row)
	if err != nil {
		return domain.DoseInstance{}, postgres.MapError(err, "dose_instance", doseID)
	}

	return updated, nil
}

// ExpirePending flips every pending instance scheduled before cutoff to
// missed. actioned_at stays NULL: nobody actioned these.
// Returns the number of instances expired.
func (r *Repo) ExpirePending(ctx context.Context, cutoff time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	tag, err := querier.Exec(ctx, expirePendingSQL, cutoff.UTC(), now)
	if err != nil {
		return 0, fmt.Errorf("expire pending doses: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// DeleteFuturePending removes not-yet-actioned instances of a schedule from
// cutoff onward, used before re-materializing a changed schedule.
func (r *Repo) DeleteFuturePending(ctx context.Context, scheduleID uuid.UUID, cutoff time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteFuturePendingSQL, scheduleID, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete future pending doses: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a dose instance by primary key scoped to its owner.
// An instance owned by a different user yields domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, userID, doseID uuid.UUID) (domain.DoseInstance, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getDoseByIDSQL, doseID, userID)

	d, err := scanDose(row)
	if err != nil {
		return domain.DoseInstance{}, postgres.MapError(err, "dose_instance", doseID)
	}

	return d, nil
}

// List returns the user's dose instances matching the filter,
// ordered by scheduled_for ascending.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]domain.DoseInstance, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query := builder.
		Select("id", "user_id", "schedule_id", "scheduled_for", "status",
			"actioned_at", "notes", "created_at", "updated_at").
		From("dose_instances").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("scheduled_for ASC")

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.ScheduleID != nil {
		query = query.Where(squirrel.Eq{"schedule_id": *filter.ScheduleID})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"scheduled_for": filter.From.UTC()})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"scheduled_for": filter.To.UTC()})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list doses query: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}
	defer rows.Close()

	var doses []domain.DoseInstance
	for rows.Next() {
		d, err := scanDose(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dose: %w", err)
		}
		doses = append(doses, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doses: %w", err)
	}

	if doses == nil {
		doses = []domain.DoseInstance{}
	}

	return doses, nil
}

// ListDueWindow returns pending instances with scheduled_for in [from, to],
// both boundaries inclusive, joined with schedule display fields.
func (r *Repo) ListDueWindow(ctx context.Context, from, to time.Time, limit int) ([]DoseWithScheduleName, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listDueWindowSQL, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due doses: %w", err)
	}
	defer rows.Close()

	return scanDosesWithName(rows)
}

// CountStatuses returns status counts over [from, to]. Total spans every
// instance whose scheduled_for falls in the window, whatever its status.
func (r *Repo) CountStatuses(ctx context.Context, userID uuid.UUID, from, to time.Time) (domain.DoseStatusCounts, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var counts domain.DoseStatusCounts
	err := querier.QueryRow(ctx, countStatusesSQL, userID, from.UTC(), to.UTC()).
		Scan(&counts.Taken, &counts.Missed, &counts.Skipped, &counts.Total)
	if err != nil {
		return domain.DoseStatusCounts{}, fmt.Errorf("count dose statuses: %w", err)
	}

	return counts, nil
}

// WeeklyTrend returns per-ISO-week taken/total counts over [from, to],
// oldest week first.
func (r *Repo) WeeklyTrend(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]WeekBucket, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, weeklyTrendSQL, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("weekly trend: %w", err)
	}
	defer rows.Close()

	var buckets []WeekBucket
	for rows.Next() {
		var (
			b       WeekBucket
			isoYear int
		)
		if err := rows.Scan(&isoYear, &b.Week, &b.Taken, &b.Total); err != nil {
			return nil, fmt.Errorf("scan week bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate week buckets: %w", err)
	}

	if buckets == nil {
		buckets = []WeekBucket{}
	}

	return buckets, nil
}

// ListRecentTerminal returns taken and missed instances over [from, to]
// joined with schedule display fields, oldest first. Feed for the feature
// builder.
func (r *Repo) ListRecentTerminal(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]DoseWithScheduleName, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listRecentTerminalSQL, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list recent terminal doses: %w", err)
	}
	defer rows.Close()

	return scanDosesWithName(rows)
}

// ListUpcoming returns the user's next pending instances at or after from,
// soonest first.
func (r *Repo) ListUpcoming(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]DoseWithScheduleName, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listUpcomingSQL, userID, from.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming doses: %w", err)
	}
	defer rows.Close()

	return scanDosesWithName(rows)
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanDose(row pgx.Row) (domain.DoseInstance, error) {
	var (
		d      domain.DoseInstance
		status string
	)

	err := row.Scan(&d.ID, &d.UserID, &d.ScheduleID, &d.ScheduledFor, &status,
		&d.ActionedAt, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.DoseInstance{}, err
	}

	d.Status = domain.DoseStatus(status)

	return d, nil
}

func scanDosesWithName(rows pgx.Rows) ([]DoseWithScheduleName, error) {
	var doses []DoseWithScheduleName
	for rows.Next() {
		var (
			d      DoseWithScheduleName
			status string
		)
		err := rows.Scan(&d.ID, &d.UserID, &d.ScheduleID, &d.ScheduledFor, &status,
			&d.ActionedAt, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
			&d.ScheduleName, &d.Dosage)
		if err != nil {
			return nil, fmt.Errorf("scan dose with schedule: %w", err)
		}
		d.Status = domain.DoseStatus(status)
		doses = append(doses, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doses with schedule: %w", err)
	}

	if doses == nil {
		doses = []DoseWithScheduleName{}
	}

	return doses, nil
}
