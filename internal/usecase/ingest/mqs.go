package ingest

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/domain/ingest"
	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

var mqsExpectedHeader = []string{
	"Name", "ProcessQty", "Date", "Time", "Line", "Family", "Model", "Process",
	"Station", "Fixture", "TrackId", "NTF?", "Prime?", "Testcode", "Testcode Desc",
	"Fail Desc", "TestTime", "Test Val", "LL", "UL",
}

func equalHeader(got []string, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ImportMQS pulls the station test-failure feed. The feed has no pending
// sentinel; beyond the date and time every column is optional and defaults
// to the upstream placeholder when absent.
func (s *Service) ImportMQS(ctx context.Context) (Summary, error) {
	ctx = logging.WithAttrs(ctx, slog.String("feed", FeedMQS))
	summary := Summary{Feed: FeedMQS, StartedAt: s.now()}

	payload, enabled, err := s.fetchFeed(ctx, FeedMQS)
	if err != nil {
		summary.Status = RunStatusFailed
		s.finishRun(ctx, &summary, err.Error())
		return summary, err
	}
	if !enabled {
		summary.Status = RunStatusDisabled
		summary.FinishedAt = s.now()
		logging.Info(ctx, "feed disabled, skipping run")
		return summary, nil
	}

	header, rows, dropped, err := DecodeRows(payload)
	if err != nil {
		err = errs.Wrap(err, "decode mqs feed")
		summary.Status = RunStatusFailed
		s.finishRun(ctx, &summary, err.Error())
		return summary, err
	}
	summary.TotalRows = len(rows)
	summary.Malformed += dropped

	// Schema drift upstream is survivable: absent columns read as empty
	// and default, so a mismatch only warrants a warning.
	if !equalHeader(header, mqsExpectedHeader) {
		logging.Warn(ctx, "feed header drifted from expected column set",
			slog.String("found", strings.Join(header, ",")))
	}

	last, err := s.repo.LastTestFailure(ctx)
	if err != nil {
		err = errs.Wrap(err, "look up last test failure")
		summary.Status = RunStatusFailed
		s.finishRun(ctx, &summary, err.Error())
		return summary, err
	}

	scanner := ingest.NewResumeScanner(last != nil, len(rows))
	cutoff := s.recencyCutoff().Format(dateLayout)

	for index, row := range rows {
		summary.Reviewed++
		if scanner.Observe(index) {
			logging.Warn(ctx, "resume point not found within search budget, importing from here",
				slog.Int("row", index+1))
		}

		record, class := normalizeTestFailure(ctx, row, index)
		if class == RowMalformed {
			summary.Malformed++
			continue
		}

		if !scanner.Active() {
			sig := ingest.SignalStale
			switch {
			case record.TrackID == last.TrackID:
				sig = ingest.SignalCheckpoint
			case record.TestDate == last.TestDate && record.TestTime == last.TestTime:
				sig = ingest.SignalCheckpoint
			case record.TestDate >= cutoff:
				sig = ingest.SignalFresh
			}
			if scanner.Decide(sig) != ingest.Import {
				summary.Existing++
				continue
			}
		}

		created, err := s.repo.CreateTestFailure(ctx, record)
		if err != nil {
			summary.Errors++
			logging.Error(ctx, "create test failure failed",
				slog.Int("row", index+1),
				slog.String("track_id", record.TrackID),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Existing++
		}
	}

	summary.Status = RunStatusOK
	s.finishRun(ctx, &summary, "")
	return summary, nil
}

func normalizeTestFailure(ctx context.Context, row Row, index int) (ports.TestFailureRecord, ingest.RowClass) {
	if !row.Has("Date") || !row.Has("Time") {
		logging.Warn(ctx, "row dropped, date or time missing", slog.Int("row", index+1))
		return ports.TestFailureRecord{}, RowMalformed
	}

	testDate, err := canonicalDate(row.Get("Date"), dateLayout)
	if err != nil {
		logging.Warn(ctx, "row dropped, bad test date",
			slog.Int("row", index+1), slog.String("value", row.Get("Date")))
		return ports.TestFailureRecord{}, RowMalformed
	}
	testTime, err := canonicalTime(row.Get("Time"), secondLayout)
	if err != nil {
		logging.Warn(ctx, "row dropped, bad test time",
			slog.Int("row", index+1), slog.String("value", row.Get("Time")))
		return ports.TestFailureRecord{}, RowMalformed
	}

	record := ports.TestFailureRecord{
		TrackID:      defaultString(row.Get("TrackId"), "0"),
		TestDate:     testDate,
		TestTime:     testTime,
		Line:         defaultString(row.Get("Line"), "0"),
		Family:       defaultString(row.Get("Family"), "0"),
		Model:        defaultString(row.Get("Model"), "0"),
		Process:      defaultString(row.Get("Process"), "0"),
		Station:      defaultString(row.Get("Station"), "0"),
		Fixture:      defaultString(row.Get("Fixture"), "0"),
		NTF:          row.Get("NTF?") == "Y",
		Prime:        row.Get("Prime?") == "Y",
		TestCode:     defaultString(row.Get("Testcode"), "0"),
		TestCodeDesc: defaultString(row.Get("Testcode Desc"), "0"),
		FailDesc:     row.Get("Fail Desc"),
		TestDuration: floatField(ctx, row, "TestTime", index),
		TestValue:    floatField(ctx, row, "Test Val", index),
		LowerLimit:   floatField(ctx, row, "LL", index),
		UpperLimit:   floatField(ctx, row, "UL", index),
	}
	return record, RowUsable
}

// floatField parses an optional numeric column, defaulting to 0 with a
// warning on garbage.
func floatField(ctx context.Context, row Row, key string, index int) float64 {
	raw := row.Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logging.Warn(ctx, "non-numeric value, defaulting to 0",
			slog.Int("row", index+1), slog.String("column", key), slog.String("value", raw))
		return 0
	}
	return v
}
