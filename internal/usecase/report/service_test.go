package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qualitysite/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "qualitysite/internal/infrastructure/persistence/sqlite/repository"
	"qualitysite/internal/ports"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
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

	return NewService(sqliterepo.NewQualityRepository(db)), db
}

func seed(t *testing.T, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
}

func testFailure(trackID, date, timeOfDay, station, testCode string, prime, ntf bool) *model.TestFailure {
	return &model.TestFailure{
		TrackID: trackID, TestDate: date, TestTime: timeOfDay,
		Line: "L3", Family: "FAM-A", Model: "MDL1", Process: "ICT",
		Station: station, Fixture: "FX1",
		Prime: prime, NTF: ntf,
		TestCode: testCode, TestCodeDesc: "desc " + testCode,
	}
}

func repairEvent(ns, date, timeOfDay, faultCode string) *model.RepairEvent {
	return &model.RepairEvent{
		Model: "MDL1", SerialNumber: ns,
		RepairDate: date, RepairTime: timeOfDay,
		RejectionDate: date, RejectionTime: timeOfDay,
		FaultCode: faultCode, Repairer: "OP7",
	}
}

func TestDashboardAggregatesTrailingWindow(t *testing.T) {
	svc, db := setupService(t)
	today := time.Now().UTC().Format("2006-01-02")

	seed(t, db,
		&model.ShiftYield{OperatorName: "OP1", Date: today, Shift: "T1", Line: "L3",
			Family: "FAM-A", PassCount: 90, FailCount: 10, HandleCount: 100, FTY: 90},
		&model.ShiftYield{OperatorName: "OP2", Date: today, Shift: "T1", Line: "L4",
			Family: "FAM-B", PassCount: 40, FailCount: 10, HandleCount: 50, FTY: 80},
		testFailure("T1", today, "08:00:00", "ST-01", "TC1", true, false),
		testFailure("T2", today, "08:05:00", "ST-01", "TC1", true, false),
		testFailure("T3", today, "08:10:00", "ST-02", "TC2", true, false),
		repairEvent("T1", today, "09:00", "F042"),
	)

	dash, err := svc.Dashboard(context.Background(), 7)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if dash.Period.Days != 7 {
		t.Fatalf("period days = %d, want 7", dash.Period.Days)
	}
	if dash.Yield.TotalUnits != 150 || dash.Yield.PassUnits != 130 {
		t.Fatalf("yield totals = %d/%d, want 150/130", dash.Yield.TotalUnits, dash.Yield.PassUnits)
	}
	if dash.RepairCount != 1 {
		t.Fatalf("repair count = %d, want 1", dash.RepairCount)
	}
	if len(dash.TopFailures) == 0 || dash.TopFailures[0].TestCode != "TC1" || dash.TopFailures[0].Count != 2 {
		t.Fatalf("top failures = %+v, want TC1 x2 first", dash.TopFailures)
	}
	// Families ordered by total units processed.
	if len(dash.Families) != 2 || dash.Families[0].Family != "FAM-A" {
		t.Fatalf("families = %+v, want FAM-A first", dash.Families)
	}
}

func TestStationPerformanceDerivesRates(t *testing.T) {
	svc, db := setupService(t)

	seed(t, db,
		testFailure("T1", "2025-01-05", "08:00:00", "ST-01", "TC1", true, true),
		testFailure("T2", "2025-01-05", "08:05:00", "ST-01", "TC1", true, false),
		testFailure("T3", "2025-01-05", "08:10:00", "ST-01", "TC1", false, false),
		testFailure("T4", "2025-01-05", "08:15:00", "ST-01", "TC1", false, false),
	)

	stations, err := svc.StationPerformance(context.Background(), ports.StationPerformanceQuery{
		DateFrom: "2025-01-01", DateTo: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("StationPerformance() error = %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("stations = %d, want 1", len(stations))
	}

	st := stations[0]
	if st.TotalTests != 4 || st.Failures != 2 || st.NTFCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 4/2/1", st.TotalTests, st.Failures, st.NTFCount)
	}
	if st.FailureRate != 50 || st.NTFRate != 25 {
		t.Fatalf("rates = %v/%v, want 50/25", st.FailureRate, st.NTFRate)
	}
}

func TestStationPerformanceRequiresDateRange(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.StationPerformance(context.Background(), ports.StationPerformanceQuery{})
	if !errors.Is(err, ErrDateRangeRequired) {
		t.Fatalf("StationPerformance() error = %v, want ErrDateRangeRequired", err)
	}
}

func TestRepairHistoryMergesTimelines(t *testing.T) {
	svc, db := setupService(t)

	seed(t, db,
		testFailure("UNIT9", "2025-01-05", "08:00:00", "ST-01", "TC1", true, false),
		repairEvent("UNIT9", "2025-01-05", "09:30", "F042"),
		testFailure("UNIT9", "2025-01-06", "10:00:00", "ST-02", "TC2", true, false),
		repairEvent("OTHER", "2025-01-05", "09:00", "F001"),
	)

	history, err := svc.RepairHistory(context.Background(), "UNIT9")
	if err != nil {
		t.Fatalf("RepairHistory() error = %v", err)
	}

	if history.FailureCount != 2 || history.RepairCount != 1 {
		t.Fatalf("counts = %d failures %d repairs, want 2/1", history.FailureCount, history.RepairCount)
	}
	if len(history.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(history.Events))
	}

	wantKinds := []string{HistoryKindTestFailure, HistoryKindRepair, HistoryKindTestFailure}
	for i, kind := range wantKinds {
		if history.Events[i].Kind != kind {
			t.Fatalf("event %d kind = %s, want %s", i, history.Events[i].Kind, kind)
		}
	}
}

func TestRepairHistoryRequiresTrackID(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.RepairHistory(context.Background(), "")
	if !errors.Is(err, ErrTrackIDRequired) {
		t.Fatalf("RepairHistory() error = %v, want ErrTrackIDRequired", err)
	}
}

func TestYieldStatsCorrelatesRepairsByTrackID(t *testing.T) {
	svc, db := setupService(t)

	// The shift's test failures name the track ids; repairs correlate by
	// serial number equality, nothing else ties the tables together.
	seed(t, db,
		&model.ShiftYield{OperatorName: "OP1", Date: "2025-01-05", Shift: "T1", Line: "L3",
			Family: "FAM-A", Process: "ICT", PassCount: 90, FailCount: 10, HandleCount: 100,
			FTY: 90, DPHU: 10},
		testFailure("U1", "2025-01-05", "08:00:00", "ST-01", "TC1", true, false),
		testFailure("U2", "2025-01-05", "08:05:00", "ST-01", "TC1", true, false),
		repairEvent("U1", "2025-01-05", "09:00", "F042"),
		repairEvent("U1", "2025-01-06", "10:00", "F043"),
		repairEvent("UNRELATED", "2025-01-05", "09:00", "F042"),
	)

	stats, err := svc.YieldStats(context.Background(), YieldStatsQuery{
		DateFrom: "2025-01-01", DateTo: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("YieldStats() error = %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats = %d, want 1", len(stats))
	}
	if stats[0].RepairCount != 2 {
		t.Fatalf("repair count = %d, want 2 (both U1 repairs, not UNRELATED)", stats[0].RepairCount)
	}
	if stats[0].FTY != 90 {
		t.Fatalf("fty = %v, want 90", stats[0].FTY)
	}
}

func TestYieldStatsRequiresDateRange(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.YieldStats(context.Background(), YieldStatsQuery{DateFrom: "2025-01-01"})
	if !errors.Is(err, ErrDateRangeRequired) {
		t.Fatalf("YieldStats() error = %v, want ErrDateRangeRequired", err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	svc, db := setupService(t)

	seed(t, db,
		&model.ImportRun{Feed: "mes", Status: "ok", StartedAt: "2025-01-05T08:00:00Z", FinishedAt: "2025-01-05T08:00:02Z"},
		&model.ImportRun{Feed: "mqs", Status: "failed", StartedAt: "2025-01-05T08:10:00Z", FinishedAt: "2025-01-05T08:10:01Z"},
	)

	runs, err := svc.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 || runs[0].Feed != "mqs" {
		t.Fatalf("runs = %+v, want mqs first", runs)
	}
}
