package ingest

import (
	"context"
	"log/slog"
	"strconv"

	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/domain/ingest"
	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

// ImportYield pulls the per-operator shift-yield feed. Unlike the other
// two feeds the upstream amends shift totals after first export, so rows
// whose natural key already exists have their aggregates and derived rates
// overwritten instead of being skipped.
func (s *Service) ImportYield(ctx context.Context) (Summary, error) {
	ctx = logging.WithAttrs(ctx, slog.String("feed", FeedYield))
	summary := Summary{Feed: FeedYield, StartedAt: s.now()}

	payload, enabled, err := s.fetchFeed(ctx, FeedYield)
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

	_, rows, dropped, err := DecodeRows(payload)
	if err != nil {
		err = errs.Wrap(err, "decode yield feed")
		summary.Status = RunStatusFailed
		s.finishRun(ctx, &summary, err.Error())
		return summary, err
	}
	summary.TotalRows = len(rows)
	summary.Malformed += dropped

	last, err := s.repo.LastShiftYield(ctx)
	if err != nil {
		err = errs.Wrap(err, "look up last shift yield")
		summary.Status = RunStatusFailed
		s.finishRun(ctx, &summary, err.Error())
		return summary, err
	}

	scanner := ingest.NewResumeScanner(last != nil, len(rows))

	for index, row := range rows {
		summary.Reviewed++
		if scanner.Observe(index) {
			logging.Warn(ctx, "resume point not found within search budget, importing from here",
				slog.Int("row", index+1))
		}

		record, class := normalizeShiftYield(ctx, row, index)
		if class == RowMalformed {
			summary.Malformed++
			continue
		}

		if !scanner.Active() {
			// Shift rows arrive in date order, so anything dated past the
			// newest stored row is new even without an exact key match.
			sig := ingest.SignalStale
			switch {
			case record.Date == last.Date && record.OperatorName == last.OperatorName:
				sig = ingest.SignalCheckpoint
			case record.Date > last.Date:
				sig = ingest.SignalFresh
			}
			if scanner.Decide(sig) != ingest.Import {
				summary.Existing++
				continue
			}
		}

		// The upsert is a check-then-write; run it in one transaction so
		// the created/updated answer cannot race a concurrent run.
		var created bool
		err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
			var upsertErr error
			created, upsertErr = s.repo.UpsertShiftYield(txCtx, record)
			return upsertErr
		})
		if err != nil {
			summary.Errors++
			logging.Error(ctx, "upsert shift yield failed",
				slog.Int("row", index+1),
				slog.String("operator", record.OperatorName),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	summary.Status = RunStatusOK
	s.finishRun(ctx, &summary, "")
	return summary, nil
}

func normalizeShiftYield(ctx context.Context, row Row, index int) (ports.ShiftYieldRecord, ingest.RowClass) {
	if !row.Has("Date") || !row.Has("Name") || !row.Has("Line") {
		logging.Warn(ctx, "row dropped, required columns empty", slog.Int("row", index+1))
		return ports.ShiftYieldRecord{}, RowMalformed
	}

	date, err := canonicalDate(row.Get("Date"), dateLayout)
	if err != nil {
		logging.Warn(ctx, "row dropped, bad date",
			slog.Int("row", index+1), slog.String("value", row.Get("Date")))
		return ports.ShiftYieldRecord{}, RowMalformed
	}

	record := ports.ShiftYieldRecord{
		OperatorName: row.Get("Name"),
		Date:         date,
		Journey:      row.Get("Jornada"),
		Shift:        row.Get("Turno"),
		Line:         row.Get("Line"),
		Family:       row.Get("Family"),
		Process:      row.Get("Process"),
		PassCount:    intField(ctx, row, "Prime Pass", index),
		FailCount:    intField(ctx, row, "Prime Fail", index),
		HandleCount:  intField(ctx, row, "Prime Handle", index),
		NTFCount:     intField(ctx, row, "Prime NTF Count", index),
		DefectCount:  intField(ctx, row, "Prime Defect Count", index),
	}
	record.FTY, record.DPHU, record.NTFRate = ingest.YieldRates(
		record.PassCount, record.FailCount, record.NTFCount, record.HandleCount)
	return record, RowUsable
}

func intField(ctx context.Context, row Row, key string, index int) int {
	raw := row.Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logging.Warn(ctx, "non-numeric value, defaulting to 0",
			slog.Int("row", index+1), slog.String("column", key), slog.String("value", raw))
		return 0
	}
	return v
}
