package ports

import "context"

// QualityReadRepository is the read-only surface shared by the importers
// (last-record lookups) and the reporting layer (filtered lists and
// aggregations).
type QualityReadRepository interface {
	// Last-record lookups order by (date desc, time desc) and return nil
	// when the store is empty; the importers derive their resume point
	// from the result.
	LastRepairEvent(ctx context.Context) (*RepairEventRecord, error)
	LastTestFailure(ctx context.Context) (*TestFailureRecord, error)
	LastShiftYield(ctx context.Context) (*ShiftYieldRecord, error)

	ListRepairEvents(ctx context.Context, filter RepairEventFilter) ([]RepairEventRecord, error)
	ListTestFailures(ctx context.Context, filter TestFailureFilter) ([]TestFailureRecord, error)
	ListShiftYields(ctx context.Context, filter ShiftYieldFilter) ([]ShiftYieldRecord, error)

	CountRepairEvents(ctx context.Context, dateFrom string, dateTo string) (int64, error)
	CountRepairsForTracks(ctx context.Context, trackIDs []string) (int64, error)
	DistinctTrackIDs(ctx context.Context, corr TrackCorrelation) ([]string, error)

	YieldSummary(ctx context.Context, dateFrom string, dateTo string) (YieldSummary, error)
	FamilyYields(ctx context.Context, dateFrom string, dateTo string) ([]FamilyYield, error)
	TopFailures(ctx context.Context, query TopFailuresQuery) ([]FailureCount, error)
	StationCounts(ctx context.Context, query StationPerformanceQuery) ([]StationCounts, error)

	RecentImportRuns(ctx context.Context, limit int) ([]ImportRunRecord, error)
}

// QualityRepository adds the write side consumed by the importers.
//
// Create* calls are idempotent: a record whose natural key already exists
// is left untouched and reported as not created. UpsertShiftYield instead
// overwrites the aggregate fields of an existing key.
type QualityRepository interface {
	QualityReadRepository

	CreateRepairEvent(ctx context.Context, record RepairEventRecord) (created bool, err error)
	CreateTestFailure(ctx context.Context, record TestFailureRecord) (created bool, err error)
	UpsertShiftYield(ctx context.Context, record ShiftYieldRecord) (created bool, err error)

	RecordImportRun(ctx context.Context, record ImportRunRecord) error
}
