package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/errs"
	"qualitysite/internal/metrics"
	"qualitysite/internal/ports"
)

// Service wires the three importer orchestrators: fetch the feed, locate
// the resume point, normalize rows, write deduplicated records, and report
// a run summary. Each importer is a zero-argument idempotent operation
// safe to re-trigger on a timer or by hand.
type Service struct {
	repo    ports.QualityRepository
	uow     ports.UnitOfWork
	fetcher ports.FeedFetcher
	metrics *metrics.Registry
	catalog func() (FeedCatalog, error)
	now     func() time.Time
}

func NewService(repo ports.QualityRepository, uow ports.UnitOfWork, fetcher ports.FeedFetcher, reg *metrics.Registry, feedsFile string) *Service {
	return &Service{
		repo:    repo,
		uow:     uow,
		fetcher: fetcher,
		metrics: reg,
		catalog: func() (FeedCatalog, error) { return LoadFeedCatalog(feedsFile) },
		now:     time.Now,
	}
}

// RunFeed runs one importer by feed name.
func (s *Service) RunFeed(ctx context.Context, name string) (Summary, error) {
	switch name {
	case FeedMES:
		return s.ImportMES(ctx)
	case FeedMQS:
		return s.ImportMQS(ctx)
	case FeedYield:
		return s.ImportYield(ctx)
	default:
		return Summary{}, fmt.Errorf("unknown feed %q", name)
	}
}

// ImportAll runs every importer in order, continuing past individual
// failures. The joined error reports each failed feed.
func (s *Service) ImportAll(ctx context.Context) ([]Summary, error) {
	summaries := make([]Summary, 0, len(FeedNames))
	var runErrs []error

	for _, name := range FeedNames {
		summary, err := s.RunFeed(ctx, name)
		if err != nil {
			runErrs = append(runErrs, errs.Wrapf(err, "import %s", name))
		}
		summaries = append(summaries, summary)
	}

	return summaries, errors.Join(runErrs...)
}

// fetchFeed resolves the catalog entry and downloads the payload. The
// second return value is false when the feed is disabled.
func (s *Service) fetchFeed(ctx context.Context, name string) (string, bool, error) {
	catalog, err := s.catalog()
	if err != nil {
		return "", false, errs.Wrap(err, "load feed catalog")
	}

	source, err := catalog.Source(name)
	if err != nil {
		return "", false, err
	}
	if !source.Enabled {
		return "", false, nil
	}

	body, err := s.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		if s.metrics != nil {
			s.metrics.FetchFailures.WithLabelValues(name).Inc()
		}
		return "", true, errs.Wrapf(err, "fetch %s feed", name)
	}
	return body, true, nil
}

// finishRun stamps the summary, persists the audit row (best effort) and
// publishes metrics.
func (s *Service) finishRun(ctx context.Context, summary *Summary, note string) {
	summary.FinishedAt = s.now()

	if s.metrics != nil {
		s.metrics.Runs.WithLabelValues(summary.Feed, summary.Status).Inc()
		s.metrics.RunSeconds.WithLabelValues(summary.Feed).Observe(summary.Duration().Seconds())
		rows := s.metrics.Rows
		rows.WithLabelValues(summary.Feed, "created").Add(float64(summary.Created))
		rows.WithLabelValues(summary.Feed, "updated").Add(float64(summary.Updated))
		rows.WithLabelValues(summary.Feed, "existing").Add(float64(summary.Existing))
		rows.WithLabelValues(summary.Feed, "pending").Add(float64(summary.Pending))
		rows.WithLabelValues(summary.Feed, "malformed").Add(float64(summary.Malformed))
		rows.WithLabelValues(summary.Feed, "error").Add(float64(summary.Errors))
	}

	record := ports.ImportRunRecord{
		Feed:       summary.Feed,
		Status:     summary.Status,
		TotalRows:  summary.TotalRows,
		Reviewed:   summary.Reviewed,
		Created:    summary.Created,
		Updated:    summary.Updated,
		Existing:   summary.Existing,
		Pending:    summary.Pending,
		Malformed:  summary.Malformed,
		Errors:     summary.Errors,
		Note:       note,
		StartedAt:  summary.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: summary.FinishedAt.UTC().Format(time.RFC3339),
	}
	if err := s.repo.RecordImportRun(ctx, record); err != nil {
		logging.Warn(ctx, "record import run failed",
			slog.String("feed", summary.Feed),
			slog.Any("err", errs.Loggable(err)))
	}

	logging.Info(ctx, "import run finished", slog.String("summary", summary.String()))
}

// recencyCutoff is the trailing window fallback: rows dated on or after
// this boundary are treated as new when the exact resume point cannot be
// found.
func (s *Service) recencyCutoff() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -recencyWindowDays)
}

const recencyWindowDays = 7
