// Package risk calls the external adherence risk-scoring service.
package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/medremind/medremind-backend/internal/domain"
)

// Scorer posts feature payloads to the risk-scoring HTTP service.
type Scorer struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewScorer creates a Scorer for the given endpoint.
func NewScorer(baseURL string, timeout time.Duration, logger *slog.Logger) *Scorer {
	return &Scorer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "risk"),
	}
}

// scoreRequest is the wire payload sent to the scorer.
type scoreRequest struct {
	Features domain.FeatureSet   `json:"features"`
	Upcoming domain.UpcomingDose `json:"upcomingDose"`
}

// scoreResponse mirrors the scorer's reply.
type scoreResponse struct {
	Summary        string  `json:"summary"`
	RiskLevel      string  `json:"riskLevel"`
	ProactiveNudge *string `json:"proactiveNudge"`
}

// Score submits the feature set plus the upcoming dose descriptor and
// returns the scorer's assessment. Transport failures, non-200 statuses,
// malformed bodies, and unknown risk levels are all reported as errors;
// the caller decides what degraded answer to serve.
func (s *Scorer) Score(ctx context.Context, features domain.FeatureSet, upcoming domain.UpcomingDose) (domain.RiskAssessment, error) {
	payload, err := json.Marshal(scoreRequest{Features: features, Upcoming: upcoming})
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.log.DebugContext(ctx, "risk score request",
		slog.String("user_id", features.UserID.String()),
		slog.Int("features", len(features.Features)))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RiskAssessment{}, fmt.Errorf("risk: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk: read body: %w", err)
	}

	var parsed scoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk: decode json: %w", err)
	}

	level := domain.RiskLevel(parsed.RiskLevel)
	if !level.IsValid() {
		return domain.RiskAssessment{}, fmt.Errorf("risk: unknown risk level %q", parsed.RiskLevel)
	}

	return domain.RiskAssessment{
		Summary:        parsed.Summary,
		RiskLevel:      level,
		ProactiveNudge: parsed.ProactiveNudge,
	}, nil
}
