package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/internal/domain"
)

// insightService defines the minimal interface needed by InsightHandler.
type insightService interface {
	Assess(ctx context.Context, doseID uuid.UUID) (domain.RiskAssessment, error)
}

// InsightHandler serves per-dose risk assessments.
type InsightHandler struct {
	svc insightService
	log *slog.Logger
}

// NewInsightHandler creates an InsightHandler.
func NewInsightHandler(svc insightService, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{svc: svc, log: logger.With("handler", "insight")}
}

type insightResponse struct {
	Summary        string  `json:"summary"`
	RiskLevel      string  `json:"riskLevel"`
	ProactiveNudge *string `json:"proactiveNudge,omitempty"`
}

// Get handles GET /v1/doses/{id}/insight.
func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	assessment, err := h.svc.Assess(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, insightResponse{
		Summary:        assessment.Summary,
		RiskLevel:      assessment.RiskLevel.String(),
		ProactiveNudge: assessment.ProactiveNudge,
	})
}
