package rest

import "net/http"

// Handlers bundles everything the router mounts.
type Handlers struct {
	Schedules *ScheduleHandler
	Doses     *DoseHandler
	Stats     *StatsHandler
	Insights  *InsightHandler
	Health    *HealthHandler
}

// NewRouter mounts all REST routes on a fresh mux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/schedules", h.Schedules.Create)
	mux.HandleFunc("GET /v1/schedules", h.Schedules.List)
	mux.HandleFunc("GET /v1/schedules/{id}", h.Schedules.Get)
	mux.HandleFunc("PUT /v1/schedules/{id}", h.Schedules.Update)
	mux.HandleFunc("DELETE /v1/schedules/{id}", h.Schedules.Delete)

	mux.HandleFunc("GET /v1/doses", h.Doses.List)
	mux.HandleFunc("GET /v1/doses/upcoming", h.Doses.Upcoming)
	mux.HandleFunc("GET /v1/doses/{id}", h.Doses.Get)
	mux.HandleFunc("POST /v1/doses/{id}/status", h.Doses.UpdateStatus)
	mux.HandleFunc("GET /v1/doses/{id}/insight", h.Insights.Get)

	mux.HandleFunc("GET /v1/stats/adherence", h.Stats.Adherence)

	mux.HandleFunc("GET /healthz", h.Health.Live)
	mux.HandleFunc("GET /readyz", h.Health.Ready)

	return mux
}
