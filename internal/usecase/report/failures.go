package report

import (
	"context"

	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

// TopFailures tallies the most frequent prime-failure test codes,
// optionally narrowed to one family and a date range.
func (s *Service) TopFailures(ctx context.Context, query ports.TopFailuresQuery) ([]ports.FailureCount, error) {
	if query.Limit <= 0 {
		query.Limit = 10
	}

	failures, err := s.repo.TopFailures(ctx, query)
	if err != nil {
		return nil, errs.Wrap(err, "query top failures")
	}
	return failures, nil
}

// StationPerformance is one station's tallies with derived rates.
type StationPerformance struct {
	Station     string  `json:"station"`
	Line        string  `json:"line"`
	Family      string  `json:"family"`
	TotalTests  int64   `json:"total_tests"`
	Failures    int64   `json:"failures"`
	NTFCount    int64   `json:"ntf_count"`
	FailureRate float64 `json:"failure_rate"`
	NTFRate     float64 `json:"ntf_rate"`
}

// StationPerformance groups test records by station over a required date
// range and derives failure and NTF percentages. A station with zero tests
// reports zero rates.
func (s *Service) StationPerformance(ctx context.Context, query ports.StationPerformanceQuery) ([]StationPerformance, error) {
	if query.DateFrom == "" || query.DateTo == "" {
		return nil, ErrDateRangeRequired
	}

	counts, err := s.repo.StationCounts(ctx, query)
	if err != nil {
		return nil, errs.Wrap(err, "query station counts")
	}

	stations := make([]StationPerformance, 0, len(counts))
	for _, c := range counts {
		station := StationPerformance{
			Station:    c.Station,
			Line:       c.Line,
			Family:     c.Family,
			TotalTests: c.TotalTests,
			Failures:   c.Failures,
			NTFCount:   c.NTFCount,
		}
		if c.TotalTests > 0 {
			station.FailureRate = float64(c.Failures) * 100 / float64(c.TotalTests)
			if c.Failures > 0 {
				station.NTFRate = float64(c.NTFCount) * 100 / float64(c.TotalTests)
			}
		}
		stations = append(stations, station)
	}
	return stations, nil
}
