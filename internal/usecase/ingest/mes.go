package ingest

import (
	"context"
	"log/slog"
	"time"

	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/domain/ingest"
	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
)

const (
	dateLayout     = "2006-01-02"
	dayMonthLayout = "02/01/2006"
	minuteLayout   = "15:04"
	secondLayout   = "15:04:05"
)

// ImportMES pulls the repair-events feed and imports the rows not yet
// persisted. Repairs carry four free-text status columns; a row where any
// of them still reads the pending sentinel is skipped until a later pull
// delivers it completed.
func (s *Service) ImportMES(ctx context.Context) (Summary, error) {
	ctx = logging.WithAttrs(ctx, slog.String("feed", FeedMES))
	summary := Summary{Feed: FeedMES, StartedAt: s.now()}

	payload, enabled, err := s.fetchFeed(ctx, FeedMES)
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
		err = errs.Wrap(err, "decode mes feed")
		summary.Status = RunStatusFailed
		s.finishRun(ctx, &summary, err.Error())
		return summary, err
	}
	summary.TotalRows = len(rows)
	summary.Malformed += dropped

	last, err := s.repo.LastRepairEvent(ctx)
	if err != nil {
		err = errs.Wrap(err, "look up last repair event")
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

		record, class := normalizeRepairEvent(ctx, row, index)
		switch class {
		case RowMalformed:
			summary.Malformed++
			continue
		case RowPending:
			// Pending rows are classified after the resume scan so a
			// half-filled checkpoint row still anchors the resume point.
		}

		if !scanner.Active() {
			sig := ingest.SignalStale
			switch {
			case record.RepairDate == last.RepairDate &&
				record.RepairTime == last.RepairTime &&
				record.SerialNumber == last.SerialNumber:
				sig = ingest.SignalCheckpoint
			case record.RepairDate >= cutoff:
				sig = ingest.SignalFresh
			}
			if scanner.Decide(sig) != ingest.Import {
				summary.Existing++
				continue
			}
		}

		if class == RowPending {
			summary.Pending++
			continue
		}

		created, err := s.repo.CreateRepairEvent(ctx, record)
		if err != nil {
			summary.Errors++
			logging.Error(ctx, "create repair event failed",
				slog.Int("row", index+1),
				slog.String("serial_number", record.SerialNumber),
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

// RowClass aliases keep the importer switch statements readable.
const (
	RowUsable    = ingest.RowUsable
	RowMalformed = ingest.RowMalformed
	RowPending   = ingest.RowPending
)

// normalizeRepairEvent coerces one raw feed row into a typed record. The
// natural-key columns and both repair timestamps are required; the
// rejection timestamp falls back to the repair timestamp when unparseable.
func normalizeRepairEvent(ctx context.Context, row Row, index int) (ports.RepairEventRecord, ingest.RowClass) {
	if !row.Has("MODELO") || !row.Has("NS") || !row.Has("FECHA REPARACION") || !row.Has("HORA REPARACION") {
		logging.Warn(ctx, "row dropped, required columns empty", slog.Int("row", index+1))
		return ports.RepairEventRecord{}, RowMalformed
	}

	repairDate, err := canonicalDate(row.Get("FECHA REPARACION"), dateLayout)
	if err != nil {
		logging.Warn(ctx, "row dropped, bad repair date",
			slog.Int("row", index+1), slog.String("value", row.Get("FECHA REPARACION")))
		return ports.RepairEventRecord{}, RowMalformed
	}
	repairTime, err := canonicalTime(row.Get("HORA REPARACION"), minuteLayout)
	if err != nil {
		logging.Warn(ctx, "row dropped, bad repair time",
			slog.Int("row", index+1), slog.String("value", row.Get("HORA REPARACION")))
		return ports.RepairEventRecord{}, RowMalformed
	}

	rejectionDate, err := canonicalDate(row.Get("FECHA RECHAZO"), dayMonthLayout)
	if err != nil {
		rejectionDate = repairDate
	}
	rejectionTime, err := canonicalTime(row.Get("HORA RECHAZO"), minuteLayout)
	if err != nil {
		rejectionTime = repairTime
	}

	record := ports.RepairEventRecord{
		Model:            row.Get("MODELO"),
		SerialNumber:     row.Get("NS"),
		RepairDate:       repairDate,
		RepairTime:       repairTime,
		RejectionDate:    rejectionDate,
		RejectionTime:    rejectionTime,
		FaultPosition:    row.Get("POSICION"),
		Function:         row.Get("FUNCION"),
		FaultCode:        row.Get("CODIGO DE FALLA REPARACION"),
		Cause:            row.Get("CAUSA DE REPARACION"),
		CorrectiveAction: row.Get("ACCION CORRECTIVA"),
		Origin:           row.Get("ORIGEN"),
		Image:            defaultString(row.Get("IMAGEN"), "0"),
		Repairer:         row.Get("REPARADOR"),
		Comment:          row.Get("COMENTARIO"),
	}

	if ingest.IsPending(record.Function, record.FaultPosition, record.CorrectiveAction, record.Origin) {
		return record, RowPending
	}
	return record, RowUsable
}

// canonicalDate re-renders a feed date in the store's ISO layout so that
// key comparison and range filtering stay string operations.
func canonicalDate(value string, layout string) (string, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

// canonicalTime accepts either HH:MM or HH:MM:SS and keeps the feed's
// precision.
func canonicalTime(value string, layout string) (string, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
