// Package insight assembles prediction features from recent dose history
// and orchestrates the external risk scorer.
package insight

import (
	"context"
	"fmt"
	"log/slog"
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
	GetByID(ctx context.Context, userID, doseID uuid.UUID) (domain.DoseInstance, error)
	ListRecentTerminal(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]postgresdose.DoseWithScheduleName, error)
}

type scheduleRepo interface {
	GetByID(ctx context.Context, userID, scheduleID uuid.UUID) (domain.Schedule, error)
}

type riskScorer interface {
	Score(ctx context.Context, features domain.FeatureSet, upcoming domain.UpcomingDose) (domain.RiskAssessment, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// fallbackAssessment is served whenever the scorer fails or answers
// something unusable. Callers never see a scorer error.
var fallbackAssessment = domain.RiskAssessment{
	Summary:   "risk assessment unavailable",
	RiskLevel: domain.RiskLevelUnknown,
}

// Service implements the prediction feature and risk assessment logic.
type Service struct {
	doses     doseRepo
	schedules scheduleRepo
	scorer    riskScorer
	log       *slog.Logger

	historyDays  int
	scoreTimeout time.Duration

	now func() time.Time
}

// NewService creates a new insight service.
func NewService(
	log *slog.Logger,
	doses doseRepo,
	schedules scheduleRepo,
	scorer riskScorer,
	historyDays int,
	scoreTimeout time.Duration,
) *Service {
	return &Service{
		doses:        doses,
		schedules:    schedules,
		scorer:       scorer,
		log:          log.With("service", "insight"),
		historyDays:  historyDays,
		scoreTimeout: scoreTimeout,
		now:          time.Now,
	}
}

// BuildFeatures assembles the authenticated user's feature set from the
// trailing history window of taken and missed instances. With fewer than
// domain.MinFeatureHistory qualifying instances the set carries only the
// insufficient-data signal, never a sparse feature list.
func (s *Service) BuildFeatures(ctx context.Context) (domain.FeatureSet, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.FeatureSet{}, domain.ErrUnauthorized
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -s.historyDays)

	history, err := s.doses.ListRecentTerminal(ctx, userID, from, to)
	if err != nil {
		return domain.FeatureSet{}, fmt.Errorf("list recent history: %w", err)
	}

	set := domain.FeatureSet{
		UserID:     userID,
		WindowDays: s.historyDays,
	}

	if len(history) < domain.MinFeatureHistory {
		set.InsufficientData = true
		return set, nil
	}

	set.Features = make([]domain.DoseFeature, len(history))
	for i, h := range history {
		set.Features[i] = domain.DoseFeature{
			ScheduleName: h.ScheduleName,
			ScheduledFor: h.ScheduledFor,
			Status:       h.Status,
			DayOfWeek:    h.ScheduledFor.Weekday().String(),
			HourOfDay:    h.ScheduledFor.Hour(),
		}
	}

	return set, nil
}

// Assess returns a risk assessment for the given upcoming dose. Scorer
// failures of any kind degrade to the fixed fallback assessment; only
// feature building and dose resolution can error.
func (s *Service) Assess(ctx context.Context, doseID uuid.UUID) (domain.RiskAssessment, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.RiskAssessment{}, domain.ErrUnauthorized
	}

	dose, err := s.doses.GetByID(ctx, userID, doseID)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	schedule, err := s.schedules.GetByID(ctx, userID, dose.ScheduleID)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	features, err := s.BuildFeatures(ctx)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	upcoming := domain.UpcomingDose{
		ScheduleName: schedule.Name,
		ScheduledFor: dose.ScheduledFor,
	}

	scoreCtx, cancel := context.WithTimeout(ctx, s.scoreTimeout)
	defer cancel()

	assessment, err := s.scorer.Score(scoreCtx, features, upcoming)
	if err != nil {
		s.log.Warn("risk scorer unavailable, serving fallback",
			"dose_id", doseID, "error", err)
		return fallbackAssessment, nil
	}

	return assessment, nil
}
