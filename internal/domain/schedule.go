package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is a recurring medication definition owned by a single user.
// Times are local-to-user "HH:MM" strings; all derived dose instants are
// stored in UTC.
type Schedule struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Dosage    string
	Frequency Frequency
	Times     []string
	StartDate time.Time // calendar day, midnight UTC
	EndDate   *time.Time
	Active    bool
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the schedule's invariants and collects all errors.
func (s *Schedule) Validate() error {
	var errs []FieldError

	if s.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if !s.Frequency.IsValid() {
		errs = append(errs, FieldError{Field: "frequency", Message: "must be daily, weekly, or custom"})
	}

	// At least one well-formed HH:MM entry. Individual malformed entries are
	// tolerated at materialization time, but a schedule with no parseable time
	// can never produce a dose.
	wellFormed := 0
	for _, raw := range s.Times {
		if _, _, err := ParseClockTime(raw); err == nil {
			wellFormed++
		}
	}
	if wellFormed == 0 {
		errs = append(errs, FieldError{Field: "times", Message: "at least one HH:MM time required"})
	}

	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		errs = append(errs, FieldError{Field: "end_date", Message: "must not precede start_date"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ActiveOn reports whether the schedule covers the given calendar day.
// The day must already be normalized to midnight UTC.
func (s *Schedule) ActiveOn(day time.Time) bool {
	if !s.Active {
		return false
	}
	if day.Before(DayStartUTC(s.StartDate)) {
		return false
	}
	if s.EndDate != nil && day.After(DayStartUTC(*s.EndDate)) {
		return false
	}
	return true
}

// DayStartUTC normalizes t to midnight of its UTC calendar day.
func DayStartUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
