package source

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadline/pkg/cache"
	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/observability"
)

// DefaultCollection is the table or collection read when none is configured.
const DefaultCollection = "records"

// Source fetches a feed from somewhere: a local file, an HTTP endpoint,
// or a database. Sources are read-only; none of them write back to the
// place they read from.
type Source interface {
	// Fetch retrieves the feed. Implementations return the feed exactly
	// as stored; threading and validation happen downstream.
	Fetch(ctx context.Context) (*feed.Feed, error)

	// Close releases any resources held by the source.
	Close() error
}

// Options configures source construction. The zero value is usable:
// caching is disabled and the default collection name is read.
type Options struct {
	// Cache backend for raw payloads (HTTP bodies). Nil disables caching.
	Cache cache.Cache

	// Keyer builds cache keys. Nil uses the default scheme.
	Keyer cache.Keyer

	// TTL for cached payloads. Zero uses cache.TTLSource.
	TTL time.Duration

	// Refresh bypasses the cache on fetch.
	Refresh bool

	// Collection is the table (SQLite) or collection (MongoDB) holding
	// records. Empty uses DefaultCollection.
	Collection string

	// Headers are extra HTTP request headers, such as Authorization.
	Headers map[string]string

	// Logger for fetch diagnostics. Nil discards.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.TTL == 0 {
		o.TTL = cache.TTLSource
	}
	if o.Collection == "" {
		o.Collection = DefaultCollection
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Open builds a source from a DSN. The scheme picks the implementation:
//
//	feed.json                    local file (also file://...)
//	https://example.com/feed     HTTP endpoint
//	sqlite://threads.db          SQLite database (also bare .db/.sqlite paths)
//	mongodb://host:27017/dbname  MongoDB collection
//
// Open validates the DSN and, for database sources, establishes the
// connection; the feed itself is not fetched until Fetch is called.
func Open(ctx context.Context, dsn string, opts Options) (Source, error) {
	if err := apperrors.ValidateSourceDSN(dsn); err != nil {
		return nil, err
	}
	opts.setDefaults()

	switch {
	case strings.HasPrefix(dsn, "http://"), strings.HasPrefix(dsn, "https://"):
		return NewHTTPSource(dsn, opts)
	case strings.HasPrefix(dsn, "sqlite://"):
		return NewSQLiteSource(strings.TrimPrefix(dsn, "sqlite://"), opts.Collection)
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return NewMongoSource(ctx, dsn, opts.Collection)
	case strings.HasPrefix(dsn, "file://"):
		return NewFileSource(strings.TrimPrefix(dsn, "file://"))
	}

	switch strings.ToLower(filepath.Ext(dsn)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteSource(dsn, opts.Collection)
	}
	return NewFileSource(dsn)
}

// observeFetch runs fetch and reports it to the registered source hooks.
// Every Fetch implementation goes through here.
func observeFetch(ctx context.Context, scheme, ref string, fetch func() (*feed.Feed, error)) (*feed.Feed, error) {
	start := time.Now()
	observability.Source().OnFetch(ctx, scheme, ref)

	f, err := fetch()
	if err != nil {
		observability.Source().OnFetchError(ctx, scheme, ref, err)
		return nil, err
	}
	observability.Source().OnFetchComplete(ctx, scheme, ref, f.Len(), time.Since(start))
	return f, nil
}
