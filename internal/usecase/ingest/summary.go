package ingest

import (
	"fmt"
	"time"
)

const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
	// RunStatusDisabled marks a run that was requested while the feed is
	// switched off in the catalog; nothing was fetched.
	RunStatusDisabled = "disabled"
)

// Summary is the per-run counter report every orchestrator emits. One bad
// row never aborts a run, so the counters always add up over the full feed.
type Summary struct {
	Feed       string
	Status     string
	TotalRows  int
	Reviewed   int
	Created    int
	Updated    int
	Existing   int
	Pending    int
	Malformed  int
	Errors     int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"%s import %s: rows=%d reviewed=%d created=%d updated=%d existing=%d pending=%d malformed=%d errors=%d in %s",
		s.Feed, s.Status, s.TotalRows, s.Reviewed, s.Created, s.Updated,
		s.Existing, s.Pending, s.Malformed, s.Errors,
		s.Duration().Round(time.Millisecond),
	)
}
