package report

import (
	"context"

	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

type YieldStatsQuery struct {
	DateFrom string
	DateTo   string
	Family   string
	Line     string
}

// YieldStat is one shift-yield row enriched with the repair count of the
// units tested under the same (date, line, family, process).
type YieldStat struct {
	Date        string  `json:"date"`
	Line        string  `json:"line"`
	Family      string  `json:"family"`
	Shift       string  `json:"shift"`
	Journey     string  `json:"journey"`
	HandleCount int     `json:"handle_count"`
	PassCount   int     `json:"pass_count"`
	FailCount   int     `json:"fail_count"`
	NTFCount    int     `json:"ntf_count"`
	DefectCount int     `json:"defect_count"`
	FTY         float64 `json:"fty"`
	DPHU        float64 `json:"dphu"`
	NTFRate     float64 `json:"ntf_rate"`
	RepairCount int64   `json:"repair_count"`
}

// YieldStats lists shift yields over a required date range and correlates
// each row with repair events through the track ids seen at the same
// (date, line, family, process). The correlation is field equality at
// query time; nothing ties the tables together in the schema.
func (s *Service) YieldStats(ctx context.Context, query YieldStatsQuery) ([]YieldStat, error) {
	if query.DateFrom == "" || query.DateTo == "" {
		return nil, ErrDateRangeRequired
	}

	yields, err := s.repo.ListShiftYields(ctx, ports.ShiftYieldFilter{
		DateFrom: query.DateFrom,
		DateTo:   query.DateTo,
		Family:   query.Family,
		Line:     query.Line,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list shift yields")
	}

	// Repair counts repeat across shifts of the same group, so resolve
	// each correlation group once.
	repairCounts := make(map[ports.TrackCorrelation]int64, len(yields))

	stats := make([]YieldStat, 0, len(yields))
	for _, y := range yields {
		corr := ports.TrackCorrelation{
			Date:    y.Date,
			Line:    y.Line,
			Family:  y.Family,
			Process: y.Process,
		}
		count, ok := repairCounts[corr]
		if !ok {
			trackIDs, err := s.repo.DistinctTrackIDs(ctx, corr)
			if err != nil {
				return nil, errs.Wrap(err, "resolve correlated track ids")
			}
			if len(trackIDs) > 0 {
				count, err = s.repo.CountRepairsForTracks(ctx, trackIDs)
				if err != nil {
					return nil, errs.Wrap(err, "count correlated repairs")
				}
			}
			repairCounts[corr] = count
		}

		stats = append(stats, YieldStat{
			Date:        y.Date,
			Line:        y.Line,
			Family:      y.Family,
			Shift:       y.Shift,
			Journey:     y.Journey,
			HandleCount: y.HandleCount,
			PassCount:   y.PassCount,
			FailCount:   y.FailCount,
			NTFCount:    y.NTFCount,
			DefectCount: y.DefectCount,
			FTY:         y.FTY,
			DPHU:        y.DPHU,
			NTFRate:     y.NTFRate,
			RepairCount: count,
		})
	}
	return stats, nil
}
