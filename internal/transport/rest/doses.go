package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/internal/service/dose"
)

// doseService defines the minimal interface needed by DoseHandler.
type doseService interface {
	Get(ctx context.Context, doseID uuid.UUID) (domain.DoseInstance, error)
	List(ctx context.Context, input dose.ListInput) ([]domain.DoseInstance, error)
	Upcoming(ctx context.Context, limit int) ([]postgresdose.DoseWithScheduleName, error)
	Transition(ctx context.Context, doseID uuid.UUID, input dose.TransitionInput) (domain.DoseInstance, error)
}

// DoseHandler serves dose instance REST endpoints.
type DoseHandler struct {
	svc doseService
	log *slog.Logger
}

// NewDoseHandler creates a DoseHandler.
func NewDoseHandler(svc doseService, logger *slog.Logger) *DoseHandler {
	return &DoseHandler{svc: svc, log: logger.With("handler", "dose")}
}

type statusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

type doseResponse struct {
	ID           string     `json:"id"`
	ScheduleID   string     `json:"scheduleId"`
	ScheduledFor time.Time  `json:"scheduledFor"`
	Status       string     `json:"status"`
	ActionedAt   *time.Time `json:"actionedAt,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type upcomingDoseResponse struct {
	doseResponse
	ScheduleName string `json:"scheduleName"`
	Dosage       string `json:"dosage"`
}

// Get handles GET /v1/doses/{id}.
func (h *DoseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDoseResponse(d))
}

// Upcoming handles GET /v1/doses/upcoming.
func (h *DoseHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	doses, err := h.svc.Upcoming(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]upcomingDoseResponse, len(doses))
	for i, d := range doses {
		out[i] = upcomingDoseResponse{
			doseResponse: toDoseResponse(d.DoseInstance),
			ScheduleName: d.ScheduleName,
			Dosage:       d.Dosage,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"doses": out})
}

// List handles GET /v1/doses.
func (h *DoseHandler) List(w http.ResponseWriter, r *http.Request) {
	var input dose.ListInput
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status := domain.DoseStatus(raw)
		input.Status = &status
	}
	if raw := q.Get("scheduleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid scheduleId")
			return
		}
		input.ScheduleID = &id
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		input.From = &ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
		input.To = &ts
	}

	doses, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]doseResponse, len(doses))
	for i, d := range doses {
		out[i] = toDoseResponse(d)
	}

	writeJSON(w, http.StatusOK, map[string]any{"doses": out})
}

// UpdateStatus handles POST /v1/doses/{id}/status.
func (h *DoseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.Transition(r.Context(), id, dose.TransitionInput{
		Status: domain.DoseStatus(req.Status),
		Notes:  req.Notes,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDoseResponse(updated))
}

func toDoseResponse(d domain.DoseInstance) doseResponse {
	return doseResponse{
		ID:           d.ID.String(),
		ScheduleID:   d.ScheduleID.String(),
		ScheduledFor: d.ScheduledFor,
		Status:       d.Status.String(),
		ActionedAt:   d.ActionedAt,
		Notes:        d.Notes,
	}
}
