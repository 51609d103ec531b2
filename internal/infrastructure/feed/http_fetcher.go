package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"qualitysite/internal/ports"
)

const (
	connectTimeout  = 3 * time.Second
	headerTimeout   = 12 * time.Second
	idleConnTimeout = 90 * time.Second
)

// HTTPFetcher pulls a spreadsheet export over HTTP. No retry and no
// caching: a transient failure aborts the run and the next scheduled run
// retries. There is deliberately no overall request timeout beyond the
// transport's own; the export can be large and slow.
type HTTPFetcher struct {
	client *http.Client
}

var _ ports.FeedFetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				ResponseHeaderTimeout: headerTimeout,
				IdleConnTimeout:       idleConnTimeout,
			},
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ports.ErrFeedUnavailable, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d", ports.ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ports.ErrFeedUnavailable, err)
	}
	return string(body), nil
}
