package domain

// Frequency represents how often a schedule repeats.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

func (f Frequency) String() string { return string(f) }

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	}
	return false
}

// DoseStatus represents the lifecycle state of a dose instance.
type DoseStatus string

const (
	DoseStatusPending DoseStatus = "pending"
	DoseStatusTaken   DoseStatus = "taken"
	DoseStatusMissed  DoseStatus = "missed"
	DoseStatusSkipped DoseStatus = "skipped"
	DoseStatusSnoozed DoseStatus = "snoozed"
)

func (s DoseStatus) String() string { return string(s) }

func (s DoseStatus) IsValid() bool {
	switch s {
	case DoseStatusPending, DoseStatusTaken, DoseStatusMissed, DoseStatusSkipped, DoseStatusSnoozed:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the instance's lifecycle.
// Every status except pending is terminal; a snoozed instance is closed
// and replaced by a fresh pending instance at the snoozed-to time.
func (s DoseStatus) IsTerminal() bool {
	return s.IsValid() && s != DoseStatusPending
}

// transitions is the closed transition table for the dose lifecycle.
// pending is the only state with outgoing edges.
var transitions = map[DoseStatus][]DoseStatus{
	DoseStatusPending: {DoseStatusTaken, DoseStatusMissed, DoseStatusSkipped, DoseStatusSnoozed},
}

// CanTransition reports whether moving from s to target is allowed.
func (s DoseStatus) CanTransition(target DoseStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// RiskLevel is the adherence risk classification returned by the risk scorer.
type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "LOW"
	RiskLevelMedium  RiskLevel = "MEDIUM"
	RiskLevelHigh    RiskLevel = "HIGH"
	RiskLevelUnknown RiskLevel = "UNKNOWN"
)

func (r RiskLevel) String() string { return string(r) }

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelUnknown:
		return true
	}
	return false
}
