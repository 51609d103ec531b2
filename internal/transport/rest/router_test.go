package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qualitysite/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "qualitysite/internal/infrastructure/persistence/sqlite/repository"
	"qualitysite/internal/metrics"
	"qualitysite/internal/usecase/report"
)

func setupServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.RepairEvent{},
		&model.TestFailure{},
		&model.ShiftYield{},
		&model.ImportRun{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	svc := report.NewService(sqliterepo.NewQualityRepository(db))
	srv := httptest.NewServer(NewRouter(svc, metrics.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv, db
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if into != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestListTestFailuresFiltered(t *testing.T) {
	srv, db := setupServer(t)

	rows := []model.TestFailure{
		{TrackID: "T1", TestDate: "2025-01-05", TestTime: "08:00:00", Line: "L3", Family: "FAM-A", Station: "ST-01", Prime: true},
		{TrackID: "T2", TestDate: "2025-01-05", TestTime: "08:05:00", Line: "L4", Family: "FAM-B", Station: "ST-02", Prime: false},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var got []map[string]any
	status := getJSON(t, srv.URL+"/api/mqs?line=L3", &got)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
}

func TestYieldStatsRequiresRange(t *testing.T) {
	srv, _ := setupServer(t)

	if status := getJSON(t, srv.URL+"/api/stats/yield", nil); status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without date range", status)
	}
	if status := getJSON(t, srv.URL+"/api/stats/yield?date_from=2025-01-01&date_to=2025-01-31", nil); status != http.StatusOK {
		t.Fatalf("status = %d, want 200 with date range", status)
	}
}

func TestStationPerformanceRequiresRange(t *testing.T) {
	srv, _ := setupServer(t)

	if status := getJSON(t, srv.URL+"/api/stats/station-performance", nil); status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without date range", status)
	}
}

func TestRepairHistoryEndpoint(t *testing.T) {
	srv, db := setupServer(t)

	if err := db.Create(&model.RepairEvent{
		Model: "MDL1", SerialNumber: "UNIT1",
		RepairDate: "2025-01-05", RepairTime: "09:00",
		RejectionDate: "2025-01-05", RejectionTime: "09:00",
		FaultCode: "F042",
	}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var history map[string]any
	status := getJSON(t, srv.URL+"/api/stats/repair-history/UNIT1", &history)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if history["track_id"] != "UNIT1" {
		t.Fatalf("track_id = %v, want UNIT1", history["track_id"])
	}
	if history["repair_count"] != float64(1) {
		t.Fatalf("repair_count = %v, want 1", history["repair_count"])
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	var dash map[string]any
	if status := getJSON(t, srv.URL+"/api/dashboard?days=3", &dash); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	period, ok := dash["period"].(map[string]any)
	if !ok || period["days"] != float64(3) {
		t.Fatalf("period = %v, want days 3", dash["period"])
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv, _ := setupServer(t)

	if status := getJSON(t, srv.URL+"/healthz", nil); status != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", status)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", resp.StatusCode)
	}
}
