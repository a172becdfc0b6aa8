package schedule

import (
	"time"

	"github.com/medremind/medremind-backend/internal/domain"
)

// CreateInput holds the fields for a new schedule. Times are "HH:MM"
// strings; StartDate and EndDate are calendar days.
type CreateInput struct {
	Name      string
	Dosage    string
	Frequency domain.Frequency
	Times     []string
	StartDate time.Time
	EndDate   *time.Time
	Notes     *string
}

// toSchedule builds the domain entity carrying the input, normalized to
// UTC calendar days.
func (i *CreateInput) toSchedule() domain.Schedule {
	s := domain.Schedule{
		Name:      i.Name,
		Dosage:    i.Dosage,
		Frequency: i.Frequency,
		Times:     i.Times,
		StartDate: domain.DayStartUTC(i.StartDate),
		Active:    true,
		Notes:     i.Notes,
	}
	if i.EndDate != nil {
		end := domain.DayStartUTC(*i.EndDate)
		s.EndDate = &end
	}
	return s
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	s := i.toSchedule()
	return s.Validate()
}

// UpdateInput holds the mutable fields of an existing schedule.
type UpdateInput struct {
	Name      string
	Dosage    string
	Frequency domain.Frequency
	Times     []string
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
	Notes     *string
}

// apply overlays the input onto an existing schedule.
func (i *UpdateInput) apply(s domain.Schedule) domain.Schedule {
	s.Name = i.Name
	s.Dosage = i.Dosage
	s.Frequency = i.Frequency
	s.Times = i.Times
	s.StartDate = domain.DayStartUTC(i.StartDate)
	s.Active = i.Active
	s.Notes = i.Notes
	s.EndDate = nil
	if i.EndDate != nil {
		end := domain.DayStartUTC(*i.EndDate)
		s.EndDate = &end
	}
	return s
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	s := i.apply(domain.Schedule{})
	return s.Validate()
}
