package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qualitysite/internal/metrics"
	"qualitysite/internal/usecase/report"
)

// NewRouter builds the read-only API surface over the ingested records,
// plus the operational endpoints. Nothing here writes to the store; all
// mutation happens through the importers.
func NewRouter(reportSvc *report.Service, reg *metrics.Registry) http.Handler {
	h := &handler{report: reportSvc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/mes", h.listRepairEvents)
		r.Get("/mqs", h.listTestFailures)
		r.Get("/yield", h.listShiftYields)
		r.Get("/dashboard", h.dashboard)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/yield", h.yieldStats)
			r.Get("/top-failures", h.topFailures)
			r.Get("/repair-history/{trackID}", h.repairHistory)
			r.Get("/station-performance", h.stationPerformance)
		})
		r.Get("/runs", h.recentRuns)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", reg.Handler())
	}

	return r
}
