package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qualitysite/internal/errs"
	"qualitysite/internal/infrastructure/persistence/sqlite/model"
	"qualitysite/internal/ports"
)

type QualityRepository struct {
	db *gorm.DB
}

var _ ports.QualityRepository = (*QualityRepository)(nil)

func NewQualityRepository(db *gorm.DB) *QualityRepository {
	return &QualityRepository{db: db}
}

func (r *QualityRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *QualityRepository) LastRepairEvent(ctx context.Context) (*ports.RepairEventRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var row model.RepairEvent
	if err := db.Order("repair_date desc, repair_time desc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "query last repair event")
	}

	record := mapRepairEvent(row)
	return &record, nil
}

func (r *QualityRepository) LastTestFailure(ctx context.Context) (*ports.TestFailureRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var row model.TestFailure
	if err := db.Order("test_date desc, test_time desc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "query last test failure")
	}

	record := mapTestFailure(row)
	return &record, nil
}

func (r *QualityRepository) LastShiftYield(ctx context.Context) (*ports.ShiftYieldRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var row model.ShiftYield
	if err := db.Order("date desc, operator_name desc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "query last shift yield")
	}

	record := mapShiftYield(row)
	return &record, nil
}

func (r *QualityRepository) ListRepairEvents(ctx context.Context, filter ports.RepairEventFilter) ([]ports.RepairEventRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.RepairEvent{})
	if v := strings.TrimSpace(filter.SerialNumber); v != "" {
		query = query.Where("serial_number = ?", v)
	}
	if v := strings.TrimSpace(filter.Model); v != "" {
		query = query.Where("model = ?", v)
	}
	if v := strings.TrimSpace(filter.FaultCode); v != "" {
		query = query.Where("fault_code = ?", v)
	}
	if v := strings.TrimSpace(filter.Repairer); v != "" {
		query = query.Where("repairer = ?", v)
	}
	if v := strings.TrimSpace(filter.Origin); v != "" {
		query = query.Where("origin = ?", v)
	}
	query = dateRange(query, "repair_date", filter.DateFrom, filter.DateTo)
	query = paginate(query, filter.Limit, filter.Offset)

	var rows []model.RepairEvent
	if err := query.Order("repair_date asc, repair_time asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query repair events")
	}

	items := make([]ports.RepairEventRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRepairEvent(row))
	}
	return items, nil
}

func (r *QualityRepository) ListTestFailures(ctx context.Context, filter ports.TestFailureFilter) ([]ports.TestFailureRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.TestFailure{})
	if v := strings.TrimSpace(filter.TrackID); v != "" {
		query = query.Where("track_id = ?", v)
	}
	if v := strings.TrimSpace(filter.Line); v != "" {
		query = query.Where("line = ?", v)
	}
	if v := strings.TrimSpace(filter.Family); v != "" {
		query = query.Where("family = ?", v)
	}
	if v := strings.TrimSpace(filter.Process); v != "" {
		query = query.Where("process = ?", v)
	}
	if v := strings.TrimSpace(filter.Station); v != "" {
		query = query.Where("station = ?", v)
	}
	if v := strings.TrimSpace(filter.TestCode); v != "" {
		query = query.Where("test_code = ?", v)
	}
	if filter.NTF != nil {
		query = query.Where("ntf = ?", *filter.NTF)
	}
	if filter.Prime != nil {
		query = query.Where("prime = ?", *filter.Prime)
	}
	query = dateRange(query, "test_date", filter.DateFrom, filter.DateTo)
	query = paginate(query, filter.Limit, filter.Offset)

	var rows []model.TestFailure
	if err := query.Order("test_date asc, test_time asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query test failures")
	}

	items := make([]ports.TestFailureRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTestFailure(row))
	}
	return items, nil
}

func (r *QualityRepository) ListShiftYields(ctx context.Context, filter ports.ShiftYieldFilter) ([]ports.ShiftYieldRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ShiftYield{})
	if v := strings.TrimSpace(filter.Line); v != "" {
		query = query.Where("line = ?", v)
	}
	if v := strings.TrimSpace(filter.Family); v != "" {
		query = query.Where("family = ?", v)
	}
	if v := strings.TrimSpace(filter.Process); v != "" {
		query = query.Where("process = ?", v)
	}
	if v := strings.TrimSpace(filter.Shift); v != "" {
		query = query.Where("shift = ?", v)
	}
	if v := strings.TrimSpace(filter.Journey); v != "" {
		query = query.Where("journey = ?", v)
	}
	query = dateRange(query, "date", filter.DateFrom, filter.DateTo)
	query = paginate(query, filter.Limit, filter.Offset)

	var rows []model.ShiftYield
	if err := query.Order("date asc, operator_name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query shift yields")
	}

	items := make([]ports.ShiftYieldRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapShiftYield(row))
	}
	return items, nil
}

func (r *QualityRepository) CountRepairEvents(ctx context.Context, dateFrom string, dateTo string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	query := dateRange(db.Model(&model.RepairEvent{}), "repair_date", dateFrom, dateTo)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count repair events")
	}
	return count, nil
}

func (r *QualityRepository) CountRepairsForTracks(ctx context.Context, trackIDs []string) (int64, error) {
	if len(trackIDs) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.RepairEvent{}).
		Where("serial_number IN ?", trackIDs).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count repairs for tracks")
	}
	return count, nil
}

func (r *QualityRepository) DistinctTrackIDs(ctx context.Context, corr ports.TrackCorrelation) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := db.Model(&model.TestFailure{}).
		Distinct("track_id").
		Where("test_date = ? AND line = ? AND family = ? AND process = ?",
			corr.Date, corr.Line, corr.Family, corr.Process).
		Pluck("track_id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "query correlated track ids")
	}
	return ids, nil
}

func (r *QualityRepository) YieldSummary(ctx context.Context, dateFrom string, dateTo string) (ports.YieldSummary, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.YieldSummary{}, err
	}

	var row struct {
		AvgFTY     float64
		AvgDPHU    float64
		AvgNTF     float64
		TotalUnits int64
		PassUnits  int64
		FailUnits  int64
	}
	query := dateRange(db.Model(&model.ShiftYield{}), "date", dateFrom, dateTo)
	if err := query.Select(
		"COALESCE(AVG(fty), 0) AS avg_fty, " +
			"COALESCE(AVG(dphu), 0) AS avg_dphu, " +
			"COALESCE(AVG(ntf_rate), 0) AS avg_ntf, " +
			"COALESCE(SUM(handle_count), 0) AS total_units, " +
			"COALESCE(SUM(pass_count), 0) AS pass_units, " +
			"COALESCE(SUM(fail_count), 0) AS fail_units",
	).Scan(&row).Error; err != nil {
		return ports.YieldSummary{}, errs.Wrap(err, "aggregate yield summary")
	}

	return ports.YieldSummary{
		AvgFTY:     row.AvgFTY,
		AvgDPHU:    row.AvgDPHU,
		AvgNTF:     row.AvgNTF,
		TotalUnits: row.TotalUnits,
		PassUnits:  row.PassUnits,
		FailUnits:  row.FailUnits,
	}, nil
}

func (r *QualityRepository) FamilyYields(ctx context.Context, dateFrom string, dateTo string) ([]ports.FamilyYield, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Family     string
		AvgFTY     float64
		TotalUnits int64
	}
	query := dateRange(db.Model(&model.ShiftYield{}), "date", dateFrom, dateTo)
	if err := query.
		Select("family, COALESCE(AVG(fty), 0) AS avg_fty, COALESCE(SUM(handle_count), 0) AS total_units").
		Group("family").
		Order("total_units desc").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate family yields")
	}

	items := make([]ports.FamilyYield, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.FamilyYield{
			Family:     row.Family,
			AvgFTY:     row.AvgFTY,
			TotalUnits: row.TotalUnits,
		})
	}
	return items, nil
}

func (r *QualityRepository) TopFailures(ctx context.Context, query ports.TopFailuresQuery) ([]ports.FailureCount, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	q := db.Model(&model.TestFailure{}).Where("prime = ?", true)
	if v := strings.TrimSpace(query.Family); v != "" {
		q = q.Where("family = ?", v)
	}
	q = dateRange(q, "test_date", query.DateFrom, query.DateTo)
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var rows []struct {
		Family       string
		TestCode     string
		TestCodeDesc string
		Count        int64
	}
	if err := q.
		Select("family, test_code, test_code_desc, COUNT(*) AS count").
		Group("family, test_code, test_code_desc").
		Order("count desc").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate top failures")
	}

	items := make([]ports.FailureCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.FailureCount{
			Family:       row.Family,
			TestCode:     row.TestCode,
			TestCodeDesc: row.TestCodeDesc,
			Count:        row.Count,
		})
	}
	return items, nil
}

func (r *QualityRepository) StationCounts(ctx context.Context, query ports.StationPerformanceQuery) ([]ports.StationCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	q := dateRange(db.Model(&model.TestFailure{}), "test_date", query.DateFrom, query.DateTo)
	if v := strings.TrimSpace(query.Line); v != "" {
		q = q.Where("line = ?", v)
	}
	if v := strings.TrimSpace(query.Family); v != "" {
		q = q.Where("family = ?", v)
	}

	var rows []struct {
		Station    string
		Line       string
		Family     string
		TotalTests int64
		Failures   int64
		NTFCount   int64
	}
	if err := q.
		Select("station, line, family, COUNT(*) AS total_tests, " +
			"SUM(CASE WHEN prime THEN 1 ELSE 0 END) AS failures, " +
			"SUM(CASE WHEN ntf THEN 1 ELSE 0 END) AS ntf_count").
		Group("station, line, family").
		Order("station asc").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "aggregate station counts")
	}

	items := make([]ports.StationCounts, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.StationCounts{
			Station:    row.Station,
			Line:       row.Line,
			Family:     row.Family,
			TotalTests: row.TotalTests,
			Failures:   row.Failures,
			NTFCount:   row.NTFCount,
		})
	}
	return items, nil
}

func (r *QualityRepository) RecentImportRuns(ctx context.Context, limit int) ([]ports.ImportRunRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ImportRun{}).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.ImportRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query import runs")
	}

	items := make([]ports.ImportRunRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ImportRunRecord{
			ID:         row.ID,
			Feed:       row.Feed,
			Status:     row.Status,
			TotalRows:  row.TotalRows,
			Reviewed:   row.Reviewed,
			Created:    row.Created,
			Updated:    row.Updated,
			Existing:   row.Existing,
			Pending:    row.Pending,
			Malformed:  row.Malformed,
			Errors:     row.Errors,
			Note:       row.Note,
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
		})
	}
	return items, nil
}

func (r *QualityRepository) CreateRepairEvent(ctx context.Context, record ports.RepairEventRecord) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.RepairEvent{
		Model:            record.Model,
		SerialNumber:     record.SerialNumber,
		RepairDate:       record.RepairDate,
		RepairTime:       record.RepairTime,
		RejectionDate:    record.RejectionDate,
		RejectionTime:    record.RejectionTime,
		FaultPosition:    record.FaultPosition,
		Function:         record.Function,
		FaultCode:        record.FaultCode,
		Cause:            record.Cause,
		CorrectiveAction: record.CorrectiveAction,
		Origin:           record.Origin,
		Image:            record.Image,
		Repairer:         record.Repairer,
		Comment:          record.Comment,
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "serial_number"},
			{Name: "repair_date"},
			{Name: "repair_time"},
			{Name: "fault_code"},
		},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert repair event")
	}
	return result.RowsAffected > 0, nil
}

func (r *QualityRepository) CreateTestFailure(ctx context.Context, record ports.TestFailureRecord) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.TestFailure{
		TrackID:      record.TrackID,
		TestDate:     record.TestDate,
		TestTime:     record.TestTime,
		Line:         record.Line,
		Family:       record.Family,
		Model:        record.Model,
		Process:      record.Process,
		Station:      record.Station,
		Fixture:      record.Fixture,
		NTF:          record.NTF,
		Prime:        record.Prime,
		TestCode:     record.TestCode,
		TestCodeDesc: record.TestCodeDesc,
		FailDesc:     record.FailDesc,
		TestDuration: record.TestDuration,
		TestValue:    record.TestValue,
		LowerLimit:   record.LowerLimit,
		UpperLimit:   record.UpperLimit,
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "track_id"},
			{Name: "test_date"},
			{Name: "test_time"},
		},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert test failure")
	}
	return result.RowsAffected > 0, nil
}

func (r *QualityRepository) UpsertShiftYield(ctx context.Context, record ports.ShiftYieldRecord) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var existing int64
	if err := db.Model(&model.ShiftYield{}).
		Where("operator_name = ? AND date = ? AND shift = ? AND line = ?",
			record.OperatorName, record.Date, record.Shift, record.Line).
		Count(&existing).Error; err != nil {
		return false, errs.Wrap(err, "check shift yield existence")
	}

	row := model.ShiftYield{
		OperatorName: record.OperatorName,
		Date:         record.Date,
		Journey:      record.Journey,
		Shift:        record.Shift,
		Line:         record.Line,
		Family:       record.Family,
		Process:      record.Process,
		PassCount:    record.PassCount,
		FailCount:    record.FailCount,
		HandleCount:  record.HandleCount,
		NTFCount:     record.NTFCount,
		DefectCount:  record.DefectCount,
		FTY:          record.FTY,
		DPHU:         record.DPHU,
		NTFRate:      record.NTFRate,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "operator_name"},
			{Name: "date"},
			{Name: "shift"},
			{Name: "line"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"journey":      row.Journey,
			"family":       row.Family,
			"process":      row.Process,
			"pass_count":   row.PassCount,
			"fail_count":   row.FailCount,
			"handle_count": row.HandleCount,
			"ntf_count":    row.NTFCount,
			"defect_count": row.DefectCount,
			"fty":          row.FTY,
			"dphu":         row.DPHU,
			"ntf_rate":     row.NTFRate,
		}),
	}).Create(&row).Error; err != nil {
		return false, errs.Wrap(err, "upsert shift yield")
	}

	return existing == 0, nil
}

func (r *QualityRepository) RecordImportRun(ctx context.Context, record ports.ImportRunRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.ImportRun{
		Feed:       record.Feed,
		Status:     record.Status,
		TotalRows:  record.TotalRows,
		Reviewed:   record.Reviewed,
		Created:    record.Created,
		Updated:    record.Updated,
		Existing:   record.Existing,
		Pending:    record.Pending,
		Malformed:  record.Malformed,
		Errors:     record.Errors,
		Note:       record.Note,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert import run")
	}
	return nil
}

func dateRange(query *gorm.DB, column string, from string, to string) *gorm.DB {
	if v := strings.TrimSpace(from); v != "" {
		query = query.Where(column+" >= ?", v)
	}
	if v := strings.TrimSpace(to); v != "" {
		query = query.Where(column+" <= ?", v)
	}
	return query
}

func paginate(query *gorm.DB, limit int, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func mapRepairEvent(row model.RepairEvent) ports.RepairEventRecord {
	return ports.RepairEventRecord{
		ID:               row.ID,
		Model:            row.Model,
		SerialNumber:     row.SerialNumber,
		RepairDate:       row.RepairDate,
		RepairTime:       row.RepairTime,
		RejectionDate:    row.RejectionDate,
		RejectionTime:    row.RejectionTime,
		FaultPosition:    row.FaultPosition,
		Function:         row.Function,
		FaultCode:        row.FaultCode,
		Cause:            row.Cause,
		CorrectiveAction: row.CorrectiveAction,
		Origin:           row.Origin,
		Image:            row.Image,
		Repairer:         row.Repairer,
		Comment:          row.Comment,
	}
}

func mapTestFailure(row model.TestFailure) ports.TestFailureRecord {
	return ports.TestFailureRecord{
		ID:           row.ID,
		TrackID:      row.TrackID,
		TestDate:     row.TestDate,
		TestTime:     row.TestTime,
		Line:         row.Line,
		Family:       row.Family,
		Model:        row.Model,
		Process:      row.Process,
		Station:      row.Station,
		Fixture:      row.Fixture,
		NTF:          row.NTF,
		Prime:        row.Prime,
		TestCode:     row.TestCode,
		TestCodeDesc: row.TestCodeDesc,
		FailDesc:     row.FailDesc,
		TestDuration: row.TestDuration,
		TestValue:    row.TestValue,
		LowerLimit:   row.LowerLimit,
		UpperLimit:   row.UpperLimit,
	}
}

func mapShiftYield(row model.ShiftYield) ports.ShiftYieldRecord {
	return ports.ShiftYieldRecord{
		ID:           row.ID,
		OperatorName: row.OperatorName,
		Date:         row.Date,
		Journey:      row.Journey,
		Shift:        row.Shift,
		Line:         row.Line,
		Family:       row.Family,
		Process:      row.Process,
		PassCount:    row.PassCount,
		FailCount:    row.FailCount,
		HandleCount:  row.HandleCount,
		NTFCount:     row.NTFCount,
		DefectCount:  row.DefectCount,
		FTY:          row.FTY,
		DPHU:         row.DPHU,
		NTFRate:      row.NTFRate,
	}
}
