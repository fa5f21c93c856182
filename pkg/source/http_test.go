package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/threadline/pkg/cache"
	"github.com/matzehuels/threadline/pkg/feed"
)

func serveFeed(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		data, err := feed.Marshal(testFeed())
		if err != nil {
			t.Errorf("marshal feed: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
}

func TestHTTPSourceFetch(t *testing.T) {
	var requests atomic.Int64
	server := serveFeed(t, &requests)
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	f, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("Fetch returned %d records, want 2", f.Len())
	}
}

func TestHTTPSourceCachesResponses(t *testing.T) {
	var requests atomic.Int64
	server := serveFeed(t, &requests)
	defer server.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{Cache: c})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatalf("first Fetch error: %v", err)
	}
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatalf("second Fetch error: %v", err)
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (second fetch should hit cache)", got)
	}
}

func TestHTTPSourceRefreshBypassesCache(t *testing.T) {
	var requests atomic.Int64
	server := serveFeed(t, &requests)
	defer server.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{Cache: c, Refresh: true})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatalf("first Fetch error: %v", err)
	}
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatalf("second Fetch error: %v", err)
	}

	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2 (refresh bypasses cache)", got)
	}
}

func TestHTTPSourceRevalidatesWithETag(t *testing.T) {
	var requests, fullBodies atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		fullBodies.Add(1)
		w.Header().Set("ETag", `"v1"`)
		data, err := feed.Marshal(testFeed())
		if err != nil {
			t.Errorf("marshal feed: %v", err)
		}
		_, _ = w.Write(data)
	}))
	defer server.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{Cache: c, Refresh: true})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	if _, err := src.Fetch(ctx); err != nil {
		t.Fatalf("first Fetch error: %v", err)
	}
	f, err := src.Fetch(ctx)
	if err != nil {
		t.Fatalf("second Fetch error: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("second Fetch returned %d records, want 2 (cached copy on 304)", f.Len())
	}

	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
	if got := fullBodies.Load(); got != 1 {
		t.Errorf("server sent %d full bodies, want 1 (second fetch revalidates)", got)
	}
}

func TestHTTPSourceNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	_, err = src.Fetch(context.Background())
	if !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Fetch error = %v, want ErrNotFound", err)
	}
}

func TestHTTPSourceClientErrorNotRetried(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	_, err = src.Fetch(context.Background())
	if !errors.Is(err, cache.ErrNetwork) {
		t.Errorf("Fetch error = %v, want ErrNetwork", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (4xx is not retryable)", got)
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		data, _ := feed.Marshal(testFeed())
		_, _ = w.Write(data)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	f, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch should succeed after retry: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("Fetch returned %d records, want 2", f.Len())
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestHTTPSourceRetriesRateLimit(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		data, _ := feed.Marshal(testFeed())
		_, _ = w.Write(data)
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/feed.json", Options{})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	f, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch should succeed after rate limit clears: %v", err)
	}
	if f.Len() != 2 {
		t.Errorf("Fetch returned %d records, want 2", f.Len())
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestHTTPSourceYAML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("version: 1\nrecords:\n  - id: c1\n    author: ada\n"))
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL+"/feed.yaml", Options{})
	if err != nil {
		t.Fatalf("NewHTTPSource error: %v", err)
	}
	defer src.Close()

	f, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if f.Len() != 1 || f.Records[0].ID != "c1" {
		t.Errorf("Fetch = %+v, want single record c1", f.Records)
	}
}

func TestNewHTTPSourceRejectsBadURL(t *testing.T) {
	if _, err := NewHTTPSource("not a url", Options{}); err == nil {
		t.Error("NewHTTPSource should reject malformed URLs")
	}
}
