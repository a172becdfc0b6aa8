package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	userID := uuid.New()
	schedule := SeedSchedule(t, pool, userID, time.Now(), []string{"09:00"})

	// Verify schedule exists in DB via SELECT.
	var name string
	err := pool.QueryRow(
		context.Background(),
		`SELECT name FROM schedules WHERE id = $1`,
		schedule.ID,
	).Scan(&name)
	if err != nil {
		t.Fatalf("expected schedule in DB, got error: %v", err)
	}

	if name != schedule.Name {
		t.Fatalf("expected name %q, got %q", schedule.Name, name)
	}
}
