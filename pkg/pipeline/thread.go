package pipeline

import (
	"github.com/matzehuels/threadline/pkg/feed"
)

// Thread arranges the feed into threaded display order.
//
// Threading itself cannot fail: records with unresolvable or cyclic parent
// references are dropped and named in the report rather than surfaced as
// errors. Order validity is checked by ValidateForThread before this runs.
func Thread(f *feed.Feed, opts Options) ThreadResult {
	opts.SetThreadDefaults()
	entries, report := feed.ThreadReport(f, feed.Order(opts.Order))
	return ThreadResult{Entries: entries, Report: report}
}
