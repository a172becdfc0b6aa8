package domain

import (
	"time"

	"github.com/google/uuid"
)

// DoseInstance is one concrete occurrence of a Schedule at a specific instant.
// ScheduledFor is always UTC. UserID is a cached projection of the owning
// schedule's user for query efficiency; the schedule remains the source of truth.
type DoseInstance struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ScheduleID   uuid.UUID
	ScheduledFor time.Time
	Status       DoseStatus
	ActionedAt   *time.Time
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDue reports whether the instance falls inside [now, now+lookahead],
// boundaries inclusive. Only pending instances are ever due.
func (d *DoseInstance) IsDue(now time.Time, lookahead time.Duration) bool {
	if d.Status != DoseStatusPending {
		return false
	}
	return !d.ScheduledFor.Before(now) && !d.ScheduledFor.After(now.Add(lookahead))
}

// IsLate reports whether the instance was actioned more than grace after
// its due instant. Unactioned instances are never late.
func (d *DoseInstance) IsLate(grace time.Duration) bool {
	if d.ActionedAt == nil {
		return false
	}
	return d.ActionedAt.After(d.ScheduledFor.Add(grace))
}

// TransitionParams holds the fields written by a status transition.
type TransitionParams struct {
	Status     DoseStatus
	ActionedAt *time.Time
	Notes      *string
}
