// Package cache provides pluggable caching for pipeline stages and source
// fetches.
//
// Two interfaces make up the package: [Cache] stores opaque byte payloads
// under string keys with per-entry TTLs, and [Keyer] builds those keys so
// that every component derives them the same way. Backends include
// [FileCache] for CLI usage, [RedisCache] for server deployments, and
// [NullCache] to disable caching entirely.
package cache

import (
	"context"
	"time"
)

// TTLs applied by the pipeline when storing stage results. Thread and
// artifact keys are content-addressed, so long lifetimes are safe; feeds
// and raw source payloads go stale with the upstream and expire sooner.
const (
	// TTLSource is how long raw source payloads (HTTP bodies, query
	// results) are kept.
	TTLSource = 15 * time.Minute

	// TTLFeed is how long loaded feeds are kept.
	TTLFeed = 1 * time.Hour

	// TTLThread is how long threaded entry lists are kept.
	TTLThread = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts are kept.
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte payloads under string keys.
//
// Get returns (nil, false, nil) on a miss; an error is returned only for
// backend failures, never for absent keys. A ttl of zero or less means the
// entry does not expire. Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer builds cache keys for the pipeline stages. Centralizing key
// construction keeps CLI and API lookups compatible: the same inputs must
// always produce the same key, or caching silently degrades to a miss on
// every request.
type Keyer interface {
	// SourceKey builds a key for a raw source payload, such as an HTTP
	// response body for a feed URL.
	SourceKey(scheme, ref string) string

	// FeedKey builds a key for a loaded feed.
	FeedKey(source string, opts FeedKeyOpts) string

	// ThreadKey builds a key for a threaded entry list derived from the
	// feed with the given content hash.
	ThreadKey(feedHash string, opts ThreadKeyOpts) string

	// ArtifactKey builds a key for a rendered artifact derived from the
	// thread with the given content hash.
	ArtifactKey(threadHash string, opts ArtifactKeyOpts) string
}

// FeedKeyOpts are the load options that affect a cached feed.
type FeedKeyOpts struct {
	MaxRecords int    `json:"max_records"`
	Title      string `json:"title,omitempty"`
}

// ThreadKeyOpts are the threading options that affect a cached entry list.
type ThreadKeyOpts struct {
	Order string `json:"order"`
}

// ArtifactKeyOpts are the render options that affect a cached artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Style    string `json:"style"`
	MaxDepth int    `json:"max_depth"`
	Width    int    `json:"width"`
}

// DefaultKeyer is the standard key scheme. Source keys stay readable for
// debugging; the remaining keys hash their inputs so option changes never
// collide.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SourceKey generates a key for raw source payload caching.
func (k *DefaultKeyer) SourceKey(scheme, ref string) string {
	return "source:" + scheme + ":" + ref
}

// FeedKey generates a key for loaded feed caching.
func (k *DefaultKeyer) FeedKey(source string, opts FeedKeyOpts) string {
	return hashKey("feed", source, opts)
}

// ThreadKey generates a key for threaded entry list caching.
func (k *DefaultKeyer) ThreadKey(feedHash string, opts ThreadKeyOpts) string {
	return hashKey("thread", feedHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(threadHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", threadHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
