package report

import (
	"context"
	"errors"
	"sort"

	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

var ErrTrackIDRequired = errors.New("track id is required")

const (
	HistoryKindTestFailure = "test_failure"
	HistoryKindRepair      = "repair"
)

// HistoryEvent is one entry in a unit's merged timeline. Test failures and
// repairs correlate by TrackID == SerialNumber, not by a foreign key.
type HistoryEvent struct {
	Kind         string `json:"kind"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Station      string `json:"station,omitempty"`
	Line         string `json:"line,omitempty"`
	TestCode     string `json:"test_code,omitempty"`
	TestCodeDesc string `json:"test_code_desc,omitempty"`
	FaultCode    string `json:"fault_code,omitempty"`
	Cause        string `json:"cause,omitempty"`
	Action       string `json:"action,omitempty"`
	Repairer     string `json:"repairer,omitempty"`
}

type RepairHistory struct {
	TrackID      string         `json:"track_id"`
	FailureCount int            `json:"failure_count"`
	RepairCount  int            `json:"repair_count"`
	Events       []HistoryEvent `json:"events"`
}

// RepairHistory merges a unit's test failures and repairs into one
// timeline sorted by date then time.
func (s *Service) RepairHistory(ctx context.Context, trackID string) (RepairHistory, error) {
	if trackID == "" {
		return RepairHistory{}, ErrTrackIDRequired
	}

	failures, err := s.repo.ListTestFailures(ctx, ports.TestFailureFilter{TrackID: trackID})
	if err != nil {
		return RepairHistory{}, errs.Wrap(err, "list test failures for history")
	}

	repairs, err := s.repo.ListRepairEvents(ctx, ports.RepairEventFilter{SerialNumber: trackID})
	if err != nil {
		return RepairHistory{}, errs.Wrap(err, "list repair events for history")
	}

	events := make([]HistoryEvent, 0, len(failures)+len(repairs))
	for _, f := range failures {
		events = append(events, HistoryEvent{
			Kind:         HistoryKindTestFailure,
			Date:         f.TestDate,
			Time:         f.TestTime,
			Station:      f.Station,
			Line:         f.Line,
			TestCode:     f.TestCode,
			TestCodeDesc: f.TestCodeDesc,
		})
	}
	for _, r := range repairs {
		events = append(events, HistoryEvent{
			Kind:      HistoryKindRepair,
			Date:      r.RepairDate,
			Time:      r.RepairTime,
			FaultCode: r.FaultCode,
			Cause:     r.Cause,
			Action:    r.CorrectiveAction,
			Repairer:  r.Repairer,
		})
	}

	// Dates and times are ISO-shaped strings, so lexical order is
	// chronological order.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})

	return RepairHistory{
		TrackID:      trackID,
		FailureCount: len(failures),
		RepairCount:  len(repairs),
		Events:       events,
	}, nil
}
