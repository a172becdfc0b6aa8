package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinFeatureHistory is the minimum number of terminal instances required
// before a feature set is considered meaningful.
const MinFeatureHistory = 5

// DoseFeature is one historical observation fed to the risk scorer.
type DoseFeature struct {
	ScheduleName string     `json:"scheduleName"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	Status       DoseStatus `json:"status"`
	DayOfWeek    string     `json:"dayOfWeek"`
	HourOfDay    int        `json:"hourOfDay"`
}

// FeatureSet is the bounded slice of recent history for one user.
// InsufficientData is set when fewer than MinFeatureHistory qualifying
// instances exist, so consumers never have to special-case sparse history.
type FeatureSet struct {
	UserID           uuid.UUID     `json:"userId"`
	WindowDays       int           `json:"windowDays"`
	Features         []DoseFeature `json:"features"`
	InsufficientData bool          `json:"insufficientData"`
}

// UpcomingDose describes the dose the risk assessment is being made for.
type UpcomingDose struct {
	ScheduleName string    `json:"scheduleName"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

// RiskAssessment is the risk scorer's verdict for an upcoming dose.
type RiskAssessment struct {
	Summary        string    `json:"summary"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	ProactiveNudge *string   `json:"proactiveNudge,omitempty"`
}
