package tenor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const stubResponse = `{
	"results": [
		{"media_formats": {"gif": {"url": "https://media.tenor.com/a.gif"}}},
		{"media_formats": {"gif": {"url": "https://media.tenor.com/b.gif"}}},
		{"media_formats": {"gif": {"url": ""}}}
	]
}`

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.base = srv.URL
	return c
}

func TestSearchParsesGifURLs(t *testing.T) {
	var gotQuery string
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(stubResponse))
	})

	results, err := c.Search(context.Background(), "cats", 12)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != "cats" {
		t.Errorf("expected query cats, got %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (blank url skipped), got %d", len(results))
	}
	if results[0].URL != "https://media.tenor.com/a.gif" {
		t.Errorf("unexpected first url %q", results[0].URL)
	}
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty query")
	})

	results, err := c.Search(context.Background(), "   ", 12)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearchClampsLimitAndQuery(t *testing.T) {
	var gotLimit, gotQuery string
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"results": []}`))
	})

	if _, err := c.Search(context.Background(), strings.Repeat("q", 120), 100); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotLimit != "24" {
		t.Errorf("expected limit clamped to 24, got %q", gotLimit)
	}
	if len(gotQuery) != maxQueryLen {
		t.Errorf("expected query capped at %d bytes, got %d", maxQueryLen, len(gotQuery))
	}
}

func TestFetchWithoutKey(t *testing.T) {
	c := NewClient("")

	if _, err := c.Trending(context.Background(), 12); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestFetchSurfacesUpstreamErrors(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := c.Trending(context.Background(), 12); err == nil {
		t.Fatal("expected an error for a non-200 upstream status")
	}
}
