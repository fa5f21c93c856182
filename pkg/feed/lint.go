package feed

import (
	"slices"
)

// =============================================================================
// Lint - Advisory Structural Diagnostics
// =============================================================================

// DanglingRef names a record whose declared parent is absent from the feed.
type DanglingRef struct {
	RecordID string `json:"record_id"`
	Parent   string `json:"parent"`
}

// Report lists structural problems in a feed. Threading never consults it:
// a feed with findings still threads, with the affected records silently
// omitted. The report exists for callers that want to surface the loss.
type Report struct {
	Dangling   []DanglingRef `json:"dangling,omitempty"`   // parent references to absent ids
	Duplicates []string      `json:"duplicates,omitempty"` // ids used by more than one record
	SelfLoops  []string      `json:"self_loops,omitempty"` // records naming themselves as parent
	Cycles     [][]string    `json:"cycles,omitempty"`     // longer parent-reference cycles
}

// Clean reports whether the feed has no findings.
func (r Report) Clean() bool {
	return len(r.Dangling) == 0 && len(r.Duplicates) == 0 && len(r.SelfLoops) == 0 && len(r.Cycles) == 0
}

// Total returns the number of findings across all categories.
func (r Report) Total() int {
	return len(r.Dangling) + len(r.Duplicates) + len(r.SelfLoops) + len(r.Cycles)
}

// Lint inspects a feed for structural problems: dangling parent references,
// duplicate ids, self-references, and longer parent cycles. Findings are
// advisory; none of them prevent threading.
func Lint(f *Feed) Report {
	var report Report

	present := make(map[string]int, len(f.Records))
	for i := range f.Records {
		present[f.Records[i].ID]++
	}
	reported := make(map[string]bool)
	for i := range f.Records {
		id := f.Records[i].ID
		if present[id] > 1 && !reported[id] {
			report.Duplicates = append(report.Duplicates, id)
			reported[id] = true
		}
	}

	for i := range f.Records {
		r := &f.Records[i]
		if !r.HasParent() {
			continue
		}
		if r.Parent == r.ID {
			report.SelfLoops = append(report.SelfLoops, r.ID)
			continue
		}
		if present[r.Parent] == 0 {
			report.Dangling = append(report.Dangling, DanglingRef{RecordID: r.ID, Parent: r.Parent})
		}
	}

	report.Cycles = findCycles(f)
	return report
}

// findCycles walks every parent chain with white/gray/black marking.
// A gray hit while walking means the chain looped back into itself; the
// cycle is the chain suffix starting at the revisited id. Self-loops are
// reported separately by Lint and excluded here.
func findCycles(f *Feed) [][]string {
	const (
		white = iota
		gray
		black
	)

	parentOf := make(map[string]string, len(f.Records))
	for i := range f.Records {
		r := &f.Records[i]
		if r.HasParent() && r.Parent != r.ID {
			parentOf[r.ID] = r.Parent
		}
	}

	color := make(map[string]int, len(f.Records))
	var cycles [][]string

	for i := range f.Records {
		start := f.Records[i].ID
		if color[start] != white {
			continue
		}

		var chain []string
		cur := start
		for {
			color[cur] = gray
			chain = append(chain, cur)

			next, ok := parentOf[cur]
			if !ok {
				break // top-level, dangling, or self-loop: chain ends
			}
			if color[next] == gray {
				at := slices.Index(chain, next)
				cycles = append(cycles, slices.Clone(chain[at:]))
				break
			}
			if color[next] == black {
				break
			}
			cur = next
		}

		for _, id := range chain {
			color[id] = black
		}
	}

	return cycles
}
