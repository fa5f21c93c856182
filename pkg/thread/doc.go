// Package thread turns flat collections of parent-referencing items into
// hierarchical display order.
//
// # Overview
//
// Comment tables, message feeds, and task lists are usually stored flat:
// each row carries its own id and, optionally, the id of its parent.
// Displaying them threaded requires sorting the rows, grouping them
// into a tree by parent id, and flattening the tree back into a single
// sequence where every item follows its parent and siblings keep the
// sorted order. This package is that computation and nothing else: no
// I/O, no storage, no assumptions about what an item is.
//
// # Basic Usage
//
// [Flatten] is the whole API. The caller supplies the item slice and
// three small functions describing the items: identity, optional parent
// identity, and ordering. The result is a flat []Entry slice ready for
// rendering, each entry annotated with its 1-based nesting depth:
//
//	type Comment struct {
//	    ID      string
//	    ReplyTo string // empty for top-level comments
//	    Posted  time.Time
//	}
//
//	entries := thread.Flatten(comments,
//	    func(c Comment) string { return c.ID },
//	    func(c Comment) (string, bool) { return c.ReplyTo, c.ReplyTo != "" },
//	    func(a, b Comment) bool { return a.Posted.Before(b.Posted) },
//	)
//	for _, e := range entries {
//	    fmt.Printf("%s%s\n", strings.Repeat("  ", e.Depth-1), e.Item.ID)
//	}
//
// Identity and ordering are deliberately separate capabilities: the same
// items can be threaded oldest-first in one call and highest-scored-first
// in the next without touching the item type.
//
// # Malformed Input
//
// Flatten never returns an error. Items pointing at a parent id that is
// not in the input, and items caught in parent-reference cycles, are
// silently left out of the result; everything else threads normally.
// [FlattenReport] returns the same entries plus a [Report] naming the
// dropped ids, for callers that want to surface the loss.
//
// # Concurrency
//
// Flatten reads its input and touches nothing else, so it is safe to
// call concurrently from any number of goroutines, including on the
// same underlying slice as long as no caller mutates it.
package thread
