package report

import (
	"context"
	"errors"

	"qualitysite/internal/ports"
)

const defaultListLimit = 200

// Service is the read-only reporting surface over the ingested records.
// Every operation is a pure aggregation; nothing here mutates the store.
type Service struct {
	repo ports.QualityReadRepository
}

func NewService(repo ports.QualityReadRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListRepairEvents(ctx context.Context, filter ports.RepairEventFilter) ([]ports.RepairEventRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.ListRepairEvents(ctx, filter)
}

func (s *Service) ListTestFailures(ctx context.Context, filter ports.TestFailureFilter) ([]ports.TestFailureRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.ListTestFailures(ctx, filter)
}

func (s *Service) ListShiftYields(ctx context.Context, filter ports.ShiftYieldFilter) ([]ports.ShiftYieldRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.repo.ListShiftYields(ctx, filter)
}

// RecentRuns lists the newest import-run audit rows, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]ports.ImportRunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.RecentImportRuns(ctx, limit)
}

// ErrDateRangeRequired is returned by operations that refuse to aggregate
// over an unbounded date range.
var ErrDateRangeRequired = errors.New("date_from and date_to are required")
