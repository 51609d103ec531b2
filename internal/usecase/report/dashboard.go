package report

import (
	"context"
	"time"

	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

const dateLayout = "2006-01-02"

// Dashboard is the landing-page summary over a trailing window.
type Dashboard struct {
	Period      Period               `json:"period"`
	Yield       ports.YieldSummary   `json:"yield"`
	TopFailures []ports.FailureCount `json:"top_failures"`
	RepairCount int64                `json:"repair_count"`
	Families    []ports.FamilyYield  `json:"families"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// Dashboard aggregates yield averages, the top five prime failures, the
// repair count and the per-family breakdown over the last daysBack days.
func (s *Service) Dashboard(ctx context.Context, daysBack int) (Dashboard, error) {
	if daysBack <= 0 {
		daysBack = 7
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	dateFrom := start.Format(dateLayout)
	dateTo := end.Format(dateLayout)

	summary, err := s.repo.YieldSummary(ctx, dateFrom, dateTo)
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "dashboard yield summary")
	}

	topFailures, err := s.repo.TopFailures(ctx, ports.TopFailuresQuery{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Limit:    5,
	})
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "dashboard top failures")
	}

	repairs, err := s.repo.CountRepairEvents(ctx, dateFrom, dateTo)
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "dashboard repair count")
	}

	families, err := s.repo.FamilyYields(ctx, dateFrom, dateTo)
	if err != nil {
		return Dashboard{}, errs.Wrap(err, "dashboard family yields")
	}

	return Dashboard{
		Period:      Period{Start: dateFrom, End: dateTo, Days: daysBack},
		Yield:       summary,
		TopFailures: topFailures,
		RepairCount: repairs,
		Families:    families,
	}, nil
}
