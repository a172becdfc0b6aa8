package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	postgresdose "github.com/medremind/medremind-backend/internal/adapter/postgres/dose"
	"github.com/medremind/medremind-backend/internal/domain"
	"github.com/medremind/medremind-backend/internal/service/dose"
	"github.com/medremind/medremind-backend/internal/service/schedule"
)

// --- service mocks ---

type scheduleServiceMock struct {
	CreateFunc func(ctx context.Context, input schedule.CreateInput) (domain.Schedule, error)
	GetFunc    func(ctx context.Context, scheduleID uuid.UUID) (domain.Schedule, error)
	ListFunc   func(ctx context.Context, input schedule.ListInput) ([]domain.Schedule, error)
	UpdateFunc func(ctx context.Context, scheduleID uuid.UUID, input schedule.UpdateInput) (domain.Schedule, error)
	DeleteFunc func(ctx context.Context, scheduleID uuid.UUID) error
}

func (m *scheduleServiceMock) Create(ctx context.Context, input schedule.CreateInput) (domain.Schedule, error) {
	return m.CreateFunc(ctx, input)
}

func (m *scheduleServiceMock) Get(ctx context.Context, scheduleID uuid.UUID) (domain.Schedule, error) {
	return m.GetFunc(ctx, scheduleID)
}

func (m *scheduleServiceMock) List(ctx context.Context, input schedule.ListInput) ([]domain.Schedule, error) {
	return m.ListFunc(ctx, input)
}

func (m *scheduleServiceMock) Update(ctx context.Context, scheduleID uuid.UUID, input schedule.UpdateInput) (domain.Schedule, error) {
	return m.UpdateFunc(ctx, scheduleID, input)
}

func (m *scheduleServiceMock) Delete(ctx context.Context, scheduleID uuid.UUID) error {
	return m.DeleteFunc(ctx, scheduleID)
}

type doseServiceMock struct {
	GetFunc        func(ctx context.Context, doseID uuid.UUID) (domain.DoseInstance, error)
	ListFunc       func(ctx context.Context, input dose.ListInput) ([]domain.DoseInstance, error)
	UpcomingFunc   func(ctx context.Context, limit int) ([]postgresdose.DoseWithScheduleName, error)
	TransitionFunc func(ctx context.Context, doseID uuid.UUID, input dose.TransitionInput) (domain.DoseInstance, error)
}

func (m *doseServiceMock) Get(ctx context.Context, doseID uuid.UUID) (domain.DoseInstance, error) {
	return m.GetFunc(ctx, doseID)
}

func (m *doseServiceMock) List(ctx context.Context, input dose.ListInput) ([]domain.DoseInstance, error) {
	return m.ListFunc(ctx, input)
}

func (m *doseServiceMock) Upcoming(ctx context.Context, limit int) ([]postgresdose.DoseWithScheduleName, error) {
	return m.UpcomingFunc(ctx, limit)
}

func (m *doseServiceMock) Transition(ctx context.Context, doseID uuid.UUID, input dose.TransitionInput) (domain.DoseInstance, error) {
	return m.TransitionFunc(ctx, doseID, input)
}

type adherenceServiceMock struct {
	StatsFunc func(ctx context.Context) (domain.AdherenceStats, error)
}

func (m *adherenceServiceMock) Stats(ctx context.Context) (domain.AdherenceStats, error) {
	return m.StatsFunc(ctx)
}

type insightServiceMock struct {
	AssessFunc func(ctx context.Context, doseID uuid.UUID) (domain.RiskAssessment, error)
}

func (m *insightServiceMock) Assess(ctx context.Context, doseID uuid.UUID) (domain.RiskAssessment, error) {
	return m.AssessFunc(ctx, doseID)
}

// --- harness ---

type routerMocks struct {
	schedules *scheduleServiceMock
	doses     *doseServiceMock
	adherence *adherenceServiceMock
	insights  *insightServiceMock
}

func newTestRouter(t *testing.T) (*http.ServeMux, *routerMocks) {
	t.Helper()

	mocks := &routerMocks{
		schedules: &scheduleServiceMock{},
		doses:     &doseServiceMock{},
		adherence: &adherenceServiceMock{},
		insights:  &insightServiceMock{},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := NewRouter(Handlers{
		Schedules: NewScheduleHandler(mocks.schedules, log),
		Doses:     NewDoseHandler(mocks.doses, log),
		Stats:     NewStatsHandler(mocks.adherence, log),
		Insights:  NewInsightHandler(mocks.insights, log),
		Health:    NewHealthHandler(&dbPingerMock{}, "test"),
	})

	return mux, mocks
}

func doRequest(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- schedule endpoints ---

func TestScheduleCreate_Success(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)

	scheduleID := uuid.New()
	mocks.schedules.CreateFunc = func(ctx context.Context, input schedule.CreateInput) (domain.Schedule, error) {
		if input.Name != "Metformin" {
			t.Errorf("expected name 'Metformin', got %q", input.Name)
		}
		if input.Frequency != domain.FrequencyDaily {
			t.Errorf("expected daily frequency, got %q", input.Frequency)
		}
		if len(input.Times) != 2 {
			t.Errorf("expected 2 times, got %d", len(input.Times))
		}
		return domain.Schedule{
			ID:        scheduleID,
			Name:      input.Name,
			Dosage:    input.Dosage,
			Frequency: input.Frequency,
			Times:     input.Times,
			StartDate: input.StartDate,
			Active:    true,
		}, nil
	}

	body := `{"name":"Metformin","dosage":"500mg","frequency":"daily","times":["08:00","20:00"],"startDate":"2026-03-10"}`
	rec := doRequest(mux, http.MethodPost, "/v1/schedules", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp scheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != scheduleID.String() {
		t.Errorf("expected id %s, got %s", scheduleID, resp.ID)
	}
	if resp.StartDate != "2026-03-10" {
		t.Errorf("expected startDate 2026-03-10, got %s", resp.StartDate)
	}
}

func TestScheduleCreate_ValidationErrorIs400(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.schedules.CreateFunc = func(ctx context.Context, input schedule.CreateInput) (domain.Schedule, error) {
		return domain.Schedule{}, domain.NewValidationErrors([]domain.FieldError{
			{Field: "times", Message: "at least one HH:MM time required"},
		})
	}

	body := `{"name":"Metformin","dosage":"500mg","frequency":"daily","times":[],"startDate":"2026-03-10"}`
	rec := doRequest(mux, http.MethodPost, "/v1/schedules", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestScheduleCreate_BadDateIs400(t *testing.T) {
	t.Parallel()

	mux, _ := newTestRouter(t)

	body := `{"name":"Metformin","dosage":"500mg","frequency":"daily","times":["08:00"],"startDate":"March 10th"}`
	rec := doRequest(mux, http.MethodPost, "/v1/schedules", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestScheduleGet_NotFoundIs404(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.schedules.GetFunc = func(ctx context.Context, scheduleID uuid.UUID) (domain.Schedule, error) {
		return domain.Schedule{}, domain.ErrNotFound
	}

	rec := doRequest(mux, http.MethodGet, "/v1/schedules/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestScheduleGet_BadUUIDIs400(t *testing.T) {
	t.Parallel()

	mux, _ := newTestRouter(t)

	rec := doRequest(mux, http.MethodGet, "/v1/schedules/not-a-uuid", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestScheduleList_FilterPassthrough(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.schedules.ListFunc = func(ctx context.Context, input schedule.ListInput) ([]domain.Schedule, error) {
		if input.Active == nil || !*input.Active {
			t.Error("expected active=true filter")
		}
		return []domain.Schedule{{ID: uuid.New(), Times: []string{"08:00"}}}, nil
	}

	rec := doRequest(mux, http.MethodGet, "/v1/schedules?active=true", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Schedules []scheduleResponse `json:"schedules"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Schedules) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(resp.Schedules))
	}
}

func TestScheduleDelete_Is204(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.schedules.DeleteFunc = func(ctx context.Context, scheduleID uuid.UUID) error {
		return nil
	}

	rec := doRequest(mux, http.MethodDelete, "/v1/schedules/"+uuid.NewString(), "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

// --- dose endpoints ---

func TestDoseList_FiltersParsed(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mocks.doses.ListFunc = func(ctx context.Context, input dose.ListInput) ([]domain.DoseInstance, error) {
		if input.Status == nil || *input.Status != domain.DoseStatusPending {
			t.Error("expected pending status filter")
		}
		if input.From == nil || !input.From.Equal(from) {
			t.Error("expected from filter")
		}
		return []domain.DoseInstance{{
			ID:           uuid.New(),
			ScheduleID:   uuid.New(),
			ScheduledFor: from.Add(8 * time.Hour),
			Status:       domain.DoseStatusPending,
		}}, nil
	}

	rec := doRequest(mux, http.MethodGet,
		"/v1/doses?status=pending&from=2026-03-01T00:00:00Z", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDoseList_BadTimestampIs400(t *testing.T) {
	t.Parallel()

	mux, _ := newTestRouter(t)

	rec := doRequest(mux, http.MethodGet, "/v1/doses?from=yesterday", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestDoseGet_Success(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)

	doseID := uuid.New()
	mocks.doses.GetFunc = func(ctx context.Context, id uuid.UUID) (domain.DoseInstance, error) {
		if id != doseID {
			t.Errorf("expected dose id %s, got %s", doseID, id)
		}
		return domain.DoseInstance{
			ID:           id,
			ScheduleID:   uuid.New(),
			ScheduledFor: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			Status:       domain.DoseStatusPending,
		}, nil
	}

	rec := doRequest(mux, http.MethodGet, "/v1/doses/"+doseID.String(), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp doseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != doseID.String() {
		t.Errorf("expected id %s, got %s", doseID, resp.ID)
	}
}

func TestDoseGet_NotFoundIs404(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.doses.GetFunc = func(ctx context.Context, id uuid.UUID) (domain.DoseInstance, error) {
		return domain.DoseInstance{}, domain.ErrNotFound
	}

	rec := doRequest(mux, http.MethodGet, "/v1/doses/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDoseUpcoming_Success(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)

	mocks.doses.UpcomingFunc = func(ctx context.Context, limit int) ([]postgresdose.DoseWithScheduleName, error) {
		if limit != 3 {
			t.Errorf("expected limit 3, got %d", limit)
		}
		return []postgresdose.DoseWithScheduleName{{
			DoseInstance: domain.DoseInstance{
				ID:           uuid.New(),
				ScheduleID:   uuid.New(),
				ScheduledFor: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
				Status:       domain.DoseStatusPending,
			},
			ScheduleName: "Metformin",
			Dosage:       "500mg",
		}}, nil
	}

	rec := doRequest(mux, http.MethodGet, "/v1/doses/upcoming?limit=3", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Doses []upcomingDoseResponse `json:"doses"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Doses) != 1 {
		t.Fatalf("expected 1 dose, got %d", len(resp.Doses))
	}
	if resp.Doses[0].ScheduleName != "Metformin" {
		t.Errorf("expected schedule name Metformin, got %q", resp.Doses[0].ScheduleName)
	}
	if resp.Doses[0].Dosage != "500mg" {
		t.Errorf("expected dosage 500mg, got %q", resp.Doses[0].Dosage)
	}
}

func TestDoseUpcoming_BadLimitIs400(t *testing.T) {
	t.Parallel()

	mux, _ := newTestRouter(t)

	rec := doRequest(mux, http.MethodGet, "/v1/doses/upcoming?limit=ten", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestDoseUpdateStatus_Success(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)

	doseID := uuid.New()
	actioned := time.Date(2026, 3, 10, 8, 5, 0, 0, time.UTC)
	mocks.doses.TransitionFunc = func(ctx context.Context, id uuid.UUID, input dose.TransitionInput) (domain.DoseInstance, error) {
		if id != doseID {
			t.Errorf("expected dose id %s, got %s", doseID, id)
		}
		if input.Status != domain.DoseStatusTaken {
			t.Errorf("expected taken status, got %q", input.Status)
		}
		return domain.DoseInstance{
			ID:           id,
			ScheduleID:   uuid.New(),
			ScheduledFor: actioned.Add(-5 * time.Minute),
			Status:       domain.DoseStatusTaken,
			ActionedAt:   &actioned,
		}, nil
	}

	rec := doRequest(mux, http.MethodPost, "/v1/doses/"+doseID.String()+"/status",
		`{"status":"taken"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp doseResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "taken" {
		t.Errorf("expected status 'taken', got %q", resp.Status)
	}
	if resp.ActionedAt == nil {
		t.Error("expected actionedAt to be set")
	}
}

func TestDoseUpdateStatus_ConflictIs409(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.doses.TransitionFunc = func(ctx context.Context, id uuid.UUID, input dose.TransitionInput) (domain.DoseInstance, error) {
		return domain.DoseInstance{}, domain.ErrConflict
	}

	rec := doRequest(mux, http.MethodPost, "/v1/doses/"+uuid.NewString()+"/status",
		`{"status":"taken"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestDoseUpdateStatus_UnauthorizedIs401(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.doses.TransitionFunc = func(ctx context.Context, id uuid.UUID, input dose.TransitionInput) (domain.DoseInstance, error) {
		return domain.DoseInstance{}, domain.ErrUnauthorized
	}

	rec := doRequest(mux, http.MethodPost, "/v1/doses/"+uuid.NewString()+"/status",
		`{"status":"taken"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

// --- stats endpoint ---

func TestAdherenceStats_Success(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.adherence.StatsFunc = func(ctx context.Context) (domain.AdherenceStats, error) {
		return domain.AdherenceStats{
			Counts: domain.DoseStatusCounts{Taken: 7, Missed: 2, Skipped: 1, Total: 10},
			Rate:   70,
			Trend: []domain.WeekTrendPoint{
				{Week: 11, Label: "Week 11", Taken: 5, Total: 7, Rate: 71.4},
			},
		}, nil
	}

	rec := doRequest(mux, http.MethodGet, "/v1/stats/adherence", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp adherenceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Rate != 70 {
		t.Errorf("expected rate 70, got %d", resp.Rate)
	}
	if len(resp.Trend) != 1 || resp.Trend[0].Label != "Week 11" {
		t.Errorf("unexpected trend: %+v", resp.Trend)
	}
}

// --- insight endpoint ---

func TestInsightGet_Success(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)

	nudge := "set an alarm for 20:00"
	mocks.insights.AssessFunc = func(ctx context.Context, doseID uuid.UUID) (domain.RiskAssessment, error) {
		return domain.RiskAssessment{
			Summary:        "evening doses are frequently missed",
			RiskLevel:      domain.RiskLevelHigh,
			ProactiveNudge: &nudge,
		}, nil
	}

	rec := doRequest(mux, http.MethodGet, "/v1/doses/"+uuid.NewString()+"/insight", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp insightResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RiskLevel != "HIGH" {
		t.Errorf("expected risk level HIGH, got %q", resp.RiskLevel)
	}
	if resp.ProactiveNudge == nil || *resp.ProactiveNudge != nudge {
		t.Errorf("unexpected nudge: %v", resp.ProactiveNudge)
	}
}

func TestInsightGet_NotFoundIs404(t *testing.T) {
	t.Parallel()

	mux, mocks := newTestRouter(t)
	mocks.insights.AssessFunc = func(ctx context.Context, doseID uuid.UUID) (domain.RiskAssessment, error) {
		return domain.RiskAssessment{}, domain.ErrNotFound
	}

	rec := doRequest(mux, http.MethodGet, "/v1/doses/"+uuid.NewString()+"/insight", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
