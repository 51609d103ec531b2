package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the import-run collectors. Label "feed" is one of
// mes|mqs|yield; "outcome" matches the run-summary counters.
type Registry struct {
	reg *prometheus.Registry

	Rows          *prometheus.CounterVec
	Runs          *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
	RunSeconds    *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Rows handled by importer runs, by outcome.",
	}, []string{"feed", "outcome"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_runs_total",
		Help: "Importer runs, by final status.",
	}, []string{"feed", "status"})
	fetchFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_fetch_failures_total",
		Help: "Feed downloads that failed before any row was processed.",
	}, []string{"feed"})
	runSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	r.MustRegister(rows, runs, fetchFailures, runSeconds)
	return &Registry{
		reg:           r,
		Rows:          rows,
		Runs:          runs,
		FetchFailures: fetchFailures,
		RunSeconds:    runSeconds,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
