package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/medremind/medremind-backend/internal/domain"
)

// adherenceService defines the minimal interface needed by StatsHandler.
type adherenceService interface {
	Stats(ctx context.Context) (domain.AdherenceStats, error)
}

// StatsHandler serves adherence statistics.
type StatsHandler struct {
	svc adherenceService
	log *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc adherenceService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: logger.With("handler", "stats")}
}

type adherenceResponse struct {
	Taken   int          `json:"taken"`
	Missed  int          `json:"missed"`
	Skipped int          `json:"skipped"`
	Total   int          `json:"total"`
	Rate    int          `json:"rate"`
	Trend   []trendPoint `json:"trend"`
}

type trendPoint struct {
	Label string  `json:"label"`
	Taken int     `json:"taken"`
	Total int     `json:"total"`
	Rate  float64 `json:"rate"`
}

// Adherence handles GET /v1/stats/adherence.
func (h *StatsHandler) Adherence(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	trend := make([]trendPoint, len(stats.Trend))
	for i, p := range stats.Trend {
		trend[i] = trendPoint{Label: p.Label, Taken: p.Taken, Total: p.Total, Rate: p.Rate}
	}

	writeJSON(w, http.StatusOK, adherenceResponse{
		Taken:   stats.Counts.Taken,
		Missed:  stats.Counts.Missed,
		Skipped: stats.Counts.Skipped,
		Total:   stats.Counts.Total,
		Rate:    stats.Rate,
		Trend:   trend,
	})
}
