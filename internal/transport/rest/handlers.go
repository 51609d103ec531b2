package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
	"qualitysite/internal/usecase/report"
)

type handler struct {
	report *report.Service
}

func (h *handler) listRepairEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.RepairEventFilter{
		SerialNumber: q.Get("ns"),
		Model:        q.Get("model"),
		FaultCode:    q.Get("fault_code"),
		Repairer:     q.Get("repairer"),
		Origin:       q.Get("origin"),
		DateFrom:     q.Get("date_from"),
		DateTo:       q.Get("date_to"),
		Limit:        intQuery(q.Get("limit")),
		Offset:       intQuery(q.Get("offset")),
	}

	records, err := h.report.ListRepairEvents(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) listTestFailures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.TestFailureFilter{
		TrackID:  q.Get("track_id"),
		Line:     q.Get("line"),
		Family:   q.Get("family"),
		Process:  q.Get("process"),
		Station:  q.Get("station"),
		TestCode: q.Get("testcode"),
		NTF:      boolQuery(q.Get("ntf")),
		Prime:    boolQuery(q.Get("prime")),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Limit:    intQuery(q.Get("limit")),
		Offset:   intQuery(q.Get("offset")),
	}

	records, err := h.report.ListTestFailures(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) listShiftYields(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.ShiftYieldFilter{
		Line:     q.Get("line"),
		Family:   q.Get("family"),
		Process:  q.Get("process"),
		Shift:    q.Get("shift"),
		Journey:  q.Get("jornada"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Limit:    intQuery(q.Get("limit")),
		Offset:   intQuery(q.Get("offset")),
	}

	records, err := h.report.ListShiftYields(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r.URL.Query().Get("days"))

	summary, err := h.report.Dashboard(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) yieldStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stats, err := h.report.YieldStats(r.Context(), report.YieldStatsQuery{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Family:   q.Get("family"),
		Line:     q.Get("line"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) topFailures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	failures, err := h.report.TopFailures(r.Context(), ports.TopFailuresQuery{
		Family:   q.Get("family"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Limit:    intQuery(q.Get("limit")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, failures)
}

func (h *handler) repairHistory(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")

	history, err := h.report.RepairHistory(r.Context(), trackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *handler) stationPerformance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stations, err := h.report.StationPerformance(r.Context(), ports.StationPerformanceQuery{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Line:     q.Get("line"),
		Family:   q.Get("family"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

func (h *handler) recentRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.report.RecentRuns(r.Context(), intQuery(r.URL.Query().Get("limit")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, report.ErrDateRangeRequired),
		errors.Is(err, report.ErrTrackIDRequired):
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func intQuery(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func boolQuery(raw string) *bool {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
