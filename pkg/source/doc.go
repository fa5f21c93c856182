// Package source provides feed sources: places a feed can be read from.
//
// # Overview
//
// A [Source] fetches a complete feed from some backing store. Four
// implementations ship with the package:
//
//   - [FileSource]: local JSON or YAML files
//   - [HTTPSource]: HTTP endpoints, with response caching and retries
//   - [SQLiteSource]: SQLite databases
//   - [MongoSource]: MongoDB collections
//
// # DSN Dispatch
//
// [Open] picks the implementation from the DSN:
//
//	src, err := source.Open(ctx, "https://example.com/comments.json", source.Options{
//	    Cache: fileCache,
//	})
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//	f, err := src.Fetch(ctx)
//
// Bare paths open files; .db/.sqlite extensions and the sqlite:// scheme
// open databases; http(s):// and mongodb:// go to the network.
//
// # Read-Only
//
// Sources only read. Nothing in this package creates tables, writes
// documents, or modifies the files it is pointed at. The add command
// appends to local files through the feed package instead.
//
// # Error Handling
//
// Malformed DSNs and paths fail with coded errors from the errors
// package. Network failures use the sentinels in the cache package:
// [cache.ErrNotFound] for missing endpoints, [cache.ErrNetwork] for
// transport problems. Transient HTTP failures are retried with backoff
// before surfacing.
package source
