package ports

import (
	"context"
	"errors"
)

// ErrFeedUnavailable wraps any transport or HTTP-status failure while
// pulling a feed. It is the only run-fatal error class: the next scheduled
// run is the retry mechanism.
var ErrFeedUnavailable = errors.New("feed unavailable")

// FeedFetcher retrieves a delimited-text export from a remote URL and
// returns the full body. No retry, no caching.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
