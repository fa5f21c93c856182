// Package feed provides the record model and serialization for flat,
// parent-referencing feeds.
//
// This package defines the canonical wire format for threadline's data:
// JSON and YAML files, API payloads, storage rows, and cache entries all
// speak this format.
//
// # Data Model
//
// A [Feed] is a flat list of [Record] values. Each record carries its own
// id and, optionally, the id of its parent; hierarchy exists only through
// those references. There are no child lists anywhere in the format:
//
//	{
//	  "version": 1,
//	  "title": "launch discussion",
//	  "records": [
//	    {"id": "c1", "author": "ada", "created": "2025-06-01T12:00:00Z"},
//	    {"id": "c2", "parent": "c1", "author": "bob", "created": "2025-06-01T12:05:00Z"}
//	  ]
//	}
//
// # Threading
//
// [Thread] binds the feed's records to the generic threading algorithm in
// [github.com/matzehuels/threadline/pkg/thread], producing entries in
// hierarchical display order under one of three orderings:
//
//	entries := feed.Thread(f, feed.OrderOldest)
//	for _, e := range entries {
//	    fmt.Printf("%*s%s\n", 2*(e.Depth-1), "", e.Item.Body)
//	}
//
// Records whose parent reference cannot be resolved, and records caught in
// reference cycles, are silently left out of the result. That tolerance is
// part of the threading contract, not an oversight.
//
// # Lint
//
// [Lint] is the loud counterpart to that tolerance: it reports dangling
// references, duplicate ids, self-loops, and cycles without affecting any
// threading behavior. The reader functions are equally tolerant: a feed
// that decodes is a feed, whatever its references look like.
//
// # Serialization
//
// Common operations:
//
//	f, _ := feed.ReadFile("comments.json")   // file → Feed (JSON or YAML by extension)
//	feed.WriteFile(f, "comments.yaml")       // Feed → file
//	data, _ := feed.Marshal(f)               // Feed → []byte (JSON)
//	f2, _ := feed.Unmarshal(data)            // []byte → Feed
//
// # Concurrency
//
// Feeds are plain data. All functions are safe for concurrent use on
// distinct feeds; concurrent mutation of one feed needs caller-side
// synchronization.
package feed
