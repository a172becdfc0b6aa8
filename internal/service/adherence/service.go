// Package adherence computes dose adherence rollups over a trailing window.
package adherence

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type doseRepo interface {
	CountStatuses(ctx context.Context, userID uuid.UUID, from, to time.Time) (domain.DoseStatusCounts, error)
	WeeklyTrend(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]postgresdose.WeekBucket, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// windowDays is the trailing window the rollup covers.
const windowDays = 30

// Service implements the adherence aggregation logic.
type Service struct {
	doses doseRepo
	log   *slog.Logger

	now func() time.Time
}

// NewService creates a new adherence service.
func NewService(log *slog.Logger, doses doseRepo) *Service {
	return &Service{
		doses: doses,
		log:   log.With("service", "adherence"),
		now:   time.Now,
	}
}

// Stats returns the authenticated user's 30-day adherence rollup: status
// counts, overall rate, and the ISO-week trend ascending. Both the overall
// and weekly rates round half away from zero; the overall rate is a whole
// percentage, weekly rates keep one decimal.
func (s *Service) Stats(ctx context.Context) (domain.AdherenceStats, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.AdherenceStats{}, domain.ErrUnauthorized
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -windowDays)

	counts, err := s.doses.CountStatuses(ctx, userID, from, to)
	if err != nil {
		return domain.AdherenceStats{}, fmt.Errorf("adherence counts: %w", err)
	}

	buckets, err := s.doses.WeeklyTrend(ctx, userID, from, to)
	if err != nil {
		return domain.AdherenceStats{}, fmt.Errorf("adherence trend: %w", err)
	}

	stats := domain.AdherenceStats{
		Counts: counts,
		Trend:  make([]domain.WeekTrendPoint, len(buckets)),
	}

	if counts.Total > 0 {
		stats.Rate = int(math.Round(float64(counts.Taken) / float64(counts.Total) * 100))
	}

	for i, b := range buckets {
		point := domain.WeekTrendPoint{
			Week:  b.Week,
			Label: fmt.Sprintf("Week %d", b.Week),
			Taken: b.Taken,
			Total: b.Total,
		}
		if b.Total > 0 {
			point.Rate = math.Round(float64(b.Taken)/float64(b.Total)*1000) / 10
		}
		stats.Trend[i] = point
	}

	return stats, nil
}
