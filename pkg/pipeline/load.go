package pipeline

import (
	"context"

	"github.com/matzehuels/threadline/pkg/cache"
	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/source"
)

// Load fetches the feed for the configured source.
//
// The cache is handed to the source so raw payloads (HTTP bodies) are
// cached independently of the decoded feed that LoadWithCacheInfo caches.
func Load(ctx context.Context, c cache.Cache, opts Options) (*feed.Feed, error) {
	src, err := source.Open(ctx, opts.Source, source.Options{
		Cache:      c,
		Refresh:    opts.Refresh,
		Collection: opts.Collection,
		Headers:    opts.Headers,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	f, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	// Records without ids cannot be threaded, so assign them here.
	if assigned := f.EnsureIDs(); assigned > 0 && opts.Logger != nil {
		opts.Logger.Warn("assigned missing record ids", "count", assigned)
	}

	if opts.Title != "" {
		f.Title = opts.Title
	}

	return capRecords(f, opts.MaxRecords), nil
}

// capRecords truncates the feed to at most max records. Replies whose
// parents fall outside the cap dangle and are dropped during threading.
func capRecords(f *feed.Feed, max int) *feed.Feed {
	if max <= 0 || f.Len() <= max {
		return f
	}
	f.Records = f.Records[:max]
	return f
}
