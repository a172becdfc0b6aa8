package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Reminder.validate(); err != nil {
		return fmt.Errorf("reminder: %w", err)
	}

	if c.Insight.HistoryDays <= 0 {
		return fmt.Errorf("insight: history_days must be > 0 (got %d)", c.Insight.HistoryDays)
	}

	return nil
}

func (r *ReminderConfig) validate() error {
	if r.HorizonDays < 1 {
		return fmt.Errorf("horizon_days must be >= 1 (got %d)", r.HorizonDays)
	}
	if r.ScanInterval <= 0 {
		return fmt.Errorf("scan_interval must be > 0 (got %v)", r.ScanInterval)
	}
	if r.Lookahead <= 0 {
		return fmt.Errorf("lookahead must be > 0 (got %v)", r.Lookahead)
	}
	if r.MissedGrace < 0 {
		return fmt.Errorf("missed_grace must be >= 0 (got %v)", r.MissedGrace)
	}
	if r.SnoozeDuration <= 0 {
		return fmt.Errorf("snooze_duration must be > 0 (got %v)", r.SnoozeDuration)
	}
	if r.ScanBatchSize <= 0 {
		return fmt.Errorf("scan_batch_size must be > 0 (got %d)", r.ScanBatchSize)
	}
	return nil
}
