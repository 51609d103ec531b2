package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"qualitysite/internal/ports"
)

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Date,Name\n2025-01-01,OP1\n"))
	}))
	defer srv.Close()

	body, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body != "Date,Name\n2025-01-01,OP1\n" {
		t.Fatalf("Fetch() body = %q", body)
	}
}

func TestFetchNonSuccessStatusIsFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ports.ErrFeedUnavailable) {
		t.Fatalf("Fetch() error = %v, want ErrFeedUnavailable", err)
	}
}

func TestFetchTransportErrorIsFeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ports.ErrFeedUnavailable) {
		t.Fatalf("Fetch() error = %v, want ErrFeedUnavailable", err)
	}
}
