package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadline/pkg/cache"
	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
)

const httpTimeout = 10 * time.Second

// HTTPSource fetches a feed from an HTTP endpoint. Response bodies are
// cached under a source key so repeated runs against the same URL skip
// the network; transient failures (connection errors, 5xx) are retried
// with backoff. Refresh fetches revalidate with If-None-Match when the
// server sent an ETag.
type HTTPSource struct {
	url     string
	yaml    bool
	http    *http.Client
	cache   cache.Cache
	key     string
	etagKey string
	ttl     time.Duration
	refresh bool
	headers map[string]string
	logger  *log.Logger
}

// NewHTTPSource creates a source for the given URL.
func NewHTTPSource(rawURL string, opts Options) (*HTTPSource, error) {
	if err := apperrors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidSource, err, "invalid url")
	}
	opts.setDefaults()

	key := opts.Keyer.SourceKey("http", rawURL)
	return &HTTPSource{
		url:     rawURL,
		yaml:    isYAMLURL(u.Path),
		http:    &http.Client{Timeout: httpTimeout},
		cache:   opts.Cache,
		key:     key,
		etagKey: key + ":etag",
		ttl:     opts.TTL,
		refresh: opts.Refresh,
		headers: opts.Headers,
		logger:  opts.Logger,
	}, nil
}

// Fetch retrieves the feed, consulting the cache first unless the source
// was opened with Refresh. Fresh responses are cached on the way out.
func (s *HTTPSource) Fetch(ctx context.Context) (*feed.Feed, error) {
	return observeFetch(ctx, "http", s.url, func() (*feed.Feed, error) {
		return s.fetch(ctx)
	})
}

func (s *HTTPSource) fetch(ctx context.Context) (*feed.Feed, error) {
	var cached *feed.Feed
	if data, hit, err := s.cache.Get(ctx, s.key); err == nil && hit {
		if f, err := s.decode(data); err == nil {
			if !s.refresh {
				return f, nil
			}
			cached = f
		} else {
			s.logger.Warn("cached payload corrupt, refetching", "url", s.url)
			_ = s.cache.Delete(ctx, s.key)
			_ = s.cache.Delete(ctx, s.etagKey)
		}
	}

	// Revalidate instead of re-download when we hold a cached copy and
	// the server gave us an ETag for it.
	var etag string
	if cached != nil {
		if tag, hit, err := s.cache.Get(ctx, s.etagKey); err == nil && hit {
			etag = string(tag)
		}
	}

	var body []byte
	var newTag string
	var notModified bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		body, newTag, notModified, err = s.get(ctx, etag)
		return err
	})
	if err != nil {
		return nil, err
	}

	if notModified {
		s.logger.Debug("feed unchanged", "url", s.url, "etag", etag)
		return cached, nil
	}

	f, err := s.decode(body)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, s.key, body, s.ttl)
	if newTag != "" {
		_ = s.cache.Set(ctx, s.etagKey, []byte(newTag), s.ttl)
	}
	return f, nil
}

// Close does nothing for HTTP sources.
func (s *HTTPSource) Close() error {
	return nil
}

// get performs one request. When etag is non-empty it is sent as
// If-None-Match; a 304 response reports notModified with no body.
func (s *HTTPSource) get(ctx context.Context, etag string) (body []byte, newTag string, notModified bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, "", false, err
	}

	accept := "application/json"
	if s.yaml {
		accept = "application/yaml"
	}
	req.Header.Set("Accept", accept)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", false, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, etag, true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, "", false, cache.Retryable(&apperrors.RateLimitedError{RetryAfter: retryAfter})
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, "", false, err
	}
	body, err = io.ReadAll(resp.Body)
	return body, resp.Header.Get("ETag"), false, err
}

func (s *HTTPSource) decode(data []byte) (*feed.Feed, error) {
	if s.yaml {
		return feed.ReadYAML(bytes.NewReader(data))
	}
	return feed.Read(bytes.NewReader(data))
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

func isYAMLURL(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml")
}

// Ensure HTTPSource implements Source.
var _ Source = (*HTTPSource)(nil)
