package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/internal/service/schedule"
)

const dateLayout = "2006-01-02"

// scheduleService defines the minimal interface needed by ScheduleHandler.
type scheduleService interface {
	Create(ctx context.Context, input schedule.CreateInput) (domain.Schedule, error)
	Get(ctx context.Context, scheduleID uuid.UUID) (domain.Schedule, error)
	List(ctx context.Context, input schedule.ListInput) ([]domain.Schedule, error)
	Update(ctx context.Context, scheduleID uuid.UUID, input schedule.UpdateInput) (domain.Schedule, error)
	Delete(ctx context.Context, scheduleID uuid.UUID) error
}

// ScheduleHandler serves schedule REST endpoints.
type ScheduleHandler struct {
	svc scheduleService
	log *slog.Logger
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(svc scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, log: logger.With("handler", "schedule")}
}

type scheduleRequest struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	Times     []string `json:"times"`
	StartDate string   `json:"startDate"`
	EndDate   *string  `json:"endDate,omitempty"`
	Active    *bool    `json:"active,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

type scheduleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	Times     []string  `json:"times"`
	StartDate string    `json:"startDate"`
	EndDate   *string   `json:"endDate,omitempty"`
	Active    bool      `json:"active"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Create handles POST /v1/schedules.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate, endDate, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.svc.Create(r.Context(), schedule.CreateInput{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: domain.Frequency(req.Frequency),
		Times:     req.Times,
		StartDate: startDate,
		EndDate:   endDate,
		Notes:     req.Notes,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toScheduleResponse(created))
}

// Get handles GET /v1/schedules/{id}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sched, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleResponse(sched))
}

// List handles GET /v1/schedules.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	var input schedule.ListInput

	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true"
		input.Active = &active
	}
	if raw := r.URL.Query().Get("frequency"); raw != "" {
		freq := domain.Frequency(raw)
		input.Frequency = &freq
	}

	schedules, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]scheduleResponse, len(schedules))
	for i, s := range schedules {
		out[i] = toScheduleResponse(s)
	}

	writeJSON(w, http.StatusOK, map[string]any{"schedules": out})
}

// Update handles PUT /v1/schedules/{id}.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate, endDate, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	updated, err := h.svc.Update(r.Context(), id, schedule.UpdateInput{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: domain.Frequency(req.Frequency),
		Times:     req.Times,
		StartDate: startDate,
		EndDate:   endDate,
		Active:    active,
		Notes:     req.Notes,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleResponse(updated))
}

// Delete handles DELETE /v1/schedules/{id}.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseDates(start string, end *string) (time.Time, *time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, nil, domain.NewValidationErrors([]domain.FieldError{
			{Field: "startDate", Message: "must be YYYY-MM-DD"},
		})
	}

	var endDate *time.Time
	if end != nil {
		parsed, err := time.Parse(dateLayout, *end)
		if err != nil {
			return time.Time{}, nil, domain.NewValidationErrors([]domain.FieldError{
				{Field: "endDate", Message: "must be YYYY-MM-DD"},
			})
		}
		endDate = &parsed
	}

	return startDate, endDate, nil
}

func toScheduleResponse(s domain.Schedule) scheduleResponse {
	resp := scheduleResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		Dosage:    s.Dosage,
		Frequency: s.Frequency.String(),
		Times:     s.Times,
		StartDate: s.StartDate.Format(dateLayout),
		Active:    s.Active,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.EndDate != nil {
		end := s.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	return resp
}
