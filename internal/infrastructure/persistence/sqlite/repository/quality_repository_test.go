package repository

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qualitysite/internal/infrastructure/persistence/sqlite/model"
	"qualitysite/internal/ports"
)

func setupRepository(t *testing.T) (*QualityRepository, *gorm.DB) {
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
	return NewQualityRepository(db), db
}

func TestCreateRepairEventIsIdempotent(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	record := ports.RepairEventRecord{
		Model: "MDL1", SerialNumber: "A1",
		RepairDate: "2025-01-05", RepairTime: "08:00",
		RejectionDate: "2025-01-05", RejectionTime: "08:00",
		FaultCode: "F042",
	}

	created, err := repo.CreateRepairEvent(ctx, record)
	if err != nil {
		t.Fatalf("first CreateRepairEvent() error = %v", err)
	}
	if !created {
		t.Fatalf("first insert reported not created")
	}

	created, err = repo.CreateRepairEvent(ctx, record)
	if err != nil {
		t.Fatalf("second CreateRepairEvent() error = %v", err)
	}
	if created {
		t.Fatalf("duplicate natural key reported created")
	}

	var n int64
	if err := db.Model(&model.RepairEvent{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestCreateRepairEventSameKeyDifferentFaultCode(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	base := ports.RepairEventRecord{
		Model: "MDL1", SerialNumber: "A1",
		RepairDate: "2025-01-05", RepairTime: "08:00",
		RejectionDate: "2025-01-05", RejectionTime: "08:00",
		FaultCode: "F042",
	}
	if _, err := repo.CreateRepairEvent(ctx, base); err != nil {
		t.Fatalf("CreateRepairEvent() error = %v", err)
	}

	// The fault code is part of the natural key: one unit may carry two
	// distinct faults repaired at the same moment.
	other := base
	other.FaultCode = "F099"
	created, err := repo.CreateRepairEvent(ctx, other)
	if err != nil {
		t.Fatalf("CreateRepairEvent() error = %v", err)
	}
	if !created {
		t.Fatalf("distinct fault code should create a second record")
	}
}

func TestUpsertShiftYieldCreatesThenOverwrites(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	record := ports.ShiftYieldRecord{
		OperatorName: "OP1", Date: "2025-01-05", Shift: "T1", Line: "L3",
		Family: "FAM-A", Process: "ICT",
		PassCount: 50, FailCount: 10, HandleCount: 60, FTY: 83.3,
	}
	created, err := repo.UpsertShiftYield(ctx, record)
	if err != nil {
		t.Fatalf("first UpsertShiftYield() error = %v", err)
	}
	if !created {
		t.Fatalf("first upsert reported not created")
	}

	record.PassCount = 80
	record.HandleCount = 100
	record.FTY = 80
	created, err = repo.UpsertShiftYield(ctx, record)
	if err != nil {
		t.Fatalf("second UpsertShiftYield() error = %v", err)
	}
	if created {
		t.Fatalf("second upsert reported created, want overwrite")
	}

	var row model.ShiftYield
	if err := db.Take(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.PassCount != 80 || row.HandleCount != 100 || row.FTY != 80 {
		t.Fatalf("row = pass %d handle %d fty %v, want 80/100/80", row.PassCount, row.HandleCount, row.FTY)
	}
}

func TestListTestFailuresFlagFilters(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	rows := []model.TestFailure{
		{TrackID: "T1", TestDate: "2025-01-05", TestTime: "08:00:00", Station: "ST-01", Prime: true, NTF: false},
		{TrackID: "T2", TestDate: "2025-01-05", TestTime: "08:05:00", Station: "ST-01", Prime: false, NTF: true},
		{TrackID: "T3", TestDate: "2025-01-05", TestTime: "08:10:00", Station: "ST-02", Prime: true, NTF: true},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	prime := true
	got, err := repo.ListTestFailures(ctx, ports.TestFailureFilter{Prime: &prime})
	if err != nil {
		t.Fatalf("ListTestFailures() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("prime records = %d, want 2", len(got))
	}

	ntf := false
	got, err = repo.ListTestFailures(ctx, ports.TestFailureFilter{NTF: &ntf})
	if err != nil {
		t.Fatalf("ListTestFailures() error = %v", err)
	}
	if len(got) != 1 || got[0].TrackID != "T1" {
		t.Fatalf("non-ntf records = %+v, want only T1", got)
	}
}

func TestLastTestFailureOrdersByDateThenTime(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	rows := []model.TestFailure{
		{TrackID: "OLD", TestDate: "2025-01-04", TestTime: "23:59:59"},
		{TrackID: "NEWEST", TestDate: "2025-01-05", TestTime: "08:10:00"},
		{TrackID: "EARLIER", TestDate: "2025-01-05", TestTime: "08:00:00"},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	last, err := repo.LastTestFailure(ctx)
	if err != nil {
		t.Fatalf("LastTestFailure() error = %v", err)
	}
	if last == nil || last.TrackID != "NEWEST" {
		t.Fatalf("last = %+v, want NEWEST", last)
	}
}

func TestLastRepairEventEmptyStoreReturnsNil(t *testing.T) {
	repo, _ := setupRepository(t)

	last, err := repo.LastRepairEvent(context.Background())
	if err != nil {
		t.Fatalf("LastRepairEvent() error = %v", err)
	}
	if last != nil {
		t.Fatalf("last = %+v, want nil for empty store", last)
	}
}
