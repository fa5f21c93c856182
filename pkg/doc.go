// Package pkg provides the core libraries for Threadline feed threading.
//
// # Overview
//
// Threadline turns flat reply feeds (lists of records where each record
// may name a parent) into threaded display order: every reply appears
// under the record it answers, at the right nesting depth. The pkg
// directory is organized into four main areas:
//
//  1. [feed] / [thread] - Domain logic (record types, ordering, threading)
//  2. [source] / [cache] - Infrastructure (feed loading, result caching)
//  3. [render] - Output formats (text, JSON, DOT, SVG, PNG)
//  4. [pipeline] - Orchestration (load → thread → render)
//
// # Architecture
//
// The typical data flow through Threadline:
//
//	Feed Source (file / HTTP / SQLite / MongoDB)
//	         ↓
//	    [feed] package (decode, assign ids, lint)
//	         ↓
//	    [thread] package (sort + build display order)
//	         ↓
//	    [render] package (text / JSON / DOT / SVG / PNG)
//	         ↓
//	    terminal, files, or HTTP responses
//
// # Quick Start
//
// Read a feed and print it threaded:
//
//	import (
//	    "os"
//	    "github.com/matzehuels/threadline/pkg/feed"
//	    "github.com/matzehuels/threadline/pkg/render"
//	)
//
//	// 1. Load records
//	f, _ := feed.ReadFile("standup.json")
//
//	// 2. Compute display order
//	entries := feed.Thread(f, feed.OrderOldest)
//
//	// 3. Render
//	out, _ := render.Render(f, entries, feed.FormatText, render.Options{})
//	os.Stdout.Write(out)
//
// # Main Packages
//
// ## Domain Logic
//
// [feed] - Record and feed types with JSON, YAML, and BSON tags, ordering
// policies (oldest, newest, top), lint diagnostics for malformed reference
// structure, and id assignment for records that arrive without one.
//
// [thread] - Generic threading over any item type. [thread.Flatten] sorts
// items, attaches replies to parents, and walks the resulting forest into
// pre-order entries carrying 1-based depths. Dangling and cyclic references
// never fail the pass; [thread.FlattenReport] says what was dropped.
//
// ## Infrastructure
//
// [source] - Feed loading from local files (JSON/YAML), HTTP endpoints,
// SQLite databases, and MongoDB collections. HTTP fetches retry transient
// failures with backoff and cache response bodies.
//
// [cache] - Content-addressed caching of loaded feeds, computed threads,
// and rendered artifacts. FileCache for the CLI (filesystem), RedisCache
// for the API server, NullCache for tests and --no-cache runs.
//
// ## Output
//
// [render] - Artifact generation. Text for terminals (plain, compact, and
// wide styles), JSON for machine consumers, DOT for Graphviz tooling, and
// in-process SVG/PNG via [github.com/goccy/go-graphviz].
//
// ## Orchestration
//
// [pipeline] - The load → thread → render pipeline shared by the CLI and
// the API server, with per-stage cache consultation. One [pipeline.Options]
// struct describes a complete run; [pipeline.Runner.Execute] returns the
// threaded entries, rendered artifacts, and cache hit info.
//
// ## Support
//
// [errors] - Coded errors ([errors.Code], [errors.New], [errors.Wrap]) so
// the CLI and API can map failures to exit codes and HTTP statuses without
// string matching. Includes input validation helpers.
//
// [observability] - Hook points the pipeline, cache, and sources call
// around each operation. Defaults are no-ops; main registers real
// backends and tests swap in recording hooks.
//
// [buildinfo] - Version metadata stamped at build time.
//
// # Common Workflows
//
// Run the full pipeline with caching:
//
//	store, _ := cache.NewFileCache("")
//	runner := pipeline.NewRunner(store, nil, log.Default())
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Source:  "standup.json",
//	    Order:   "top",
//	    Formats: []string{"text", "svg"},
//	})
//
// Lint a feed for structural problems:
//
//	report := feed.Lint(f)
//	for _, d := range report.Dangling {
//	    fmt.Printf("%s replies to missing %s\n", d.RecordID, d.Parent)
//	}
//
// Thread arbitrary items without the feed types:
//
//	entries := thread.Flatten(items,
//	    func(i Item) string { return i.ID },
//	    func(i Item) (string, bool) { return i.ReplyTo, i.ReplyTo != "" },
//	    func(a, b Item) bool { return a.Posted.Before(b.Posted) },
//	)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/thread/...    # Specific package
//	go test -run Example        # Examples only
//
// [feed]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/feed
// [thread]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/thread
// [source]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/threadline/pkg/buildinfo
package pkg
