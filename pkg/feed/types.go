package feed

import (
	"time"

	"github.com/matzehuels/threadline/pkg/thread"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// FormatVersion is the current feed serialization format version.
const FormatVersion = 1

// Output formats understood by the renderers.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// =============================================================================
// Record - Flat Parent-Referencing Item
// =============================================================================

// Record is one flat item in a feed: a comment, message, or task row.
// Hierarchy is expressed through Parent alone; records never list their
// children directly.
type Record struct {
	ID      string    `json:"id" bson:"id" yaml:"id"`
	Parent  string    `json:"parent,omitempty" bson:"parent,omitempty" yaml:"parent,omitempty"` // empty for top-level records
	Author  string    `json:"author,omitempty" bson:"author,omitempty" yaml:"author,omitempty"`
	Body    string    `json:"body,omitempty" bson:"body,omitempty" yaml:"body,omitempty"`
	Created time.Time `json:"created" bson:"created" yaml:"created"`
	Score   int       `json:"score,omitempty" bson:"score,omitempty" yaml:"score,omitempty"`
}

// HasParent reports whether the record replies to another record.
func (r *Record) HasParent() bool { return r.Parent != "" }

// DisplayAuthor returns the author if set, otherwise "anonymous".
func (r *Record) DisplayAuthor() string {
	if r.Author != "" {
		return r.Author
	}
	return "anonymous"
}

// =============================================================================
// Feed - Serialized Record Collection
// =============================================================================

// Feed is the canonical serialization format for a flat record collection.
// Used for files, API payloads, storage, and caching.
type Feed struct {
	Version int      `json:"version" bson:"version" yaml:"version"`
	Title   string   `json:"title,omitempty" bson:"title,omitempty" yaml:"title,omitempty"`
	Records []Record `json:"records" bson:"records" yaml:"records"`
}

// Len returns the number of records in the feed.
func (f *Feed) Len() int { return len(f.Records) }

// TopLevel returns the number of records without a parent reference.
func (f *Feed) TopLevel() int {
	n := 0
	for i := range f.Records {
		if !f.Records[i].HasParent() {
			n++
		}
	}
	return n
}

// =============================================================================
// Threading - Binding Records to the Core Algorithm
// =============================================================================

// Entry is a record annotated with its 1-based nesting depth.
type Entry = thread.Entry[Record]

func recordID(r Record) string { return r.ID }

func recordParent(r Record) (string, bool) { return r.Parent, r.Parent != "" }

// Thread arranges the feed's records into threaded display order under the
// given ordering. Records with unresolvable or cyclic parent references are
// silently omitted, as [thread.Flatten] documents.
func Thread(f *Feed, order Order) []Entry {
	return thread.Flatten(f.Records, recordID, recordParent, order.Less())
}

// ThreadReport is [Thread] plus a report naming every omitted record id.
func ThreadReport(f *Feed, order Order) ([]Entry, thread.Report[string]) {
	return thread.FlattenReport(f.Records, recordID, recordParent, order.Less())
}
