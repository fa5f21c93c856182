package thread

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

// item is the test fixture: identity, optional parent, integer order.
type item struct {
	id     string
	parent string // empty means top-level
	order  int
}

func itemID(it item) string { return it.id }

func itemParent(it item) (string, bool) { return it.parent, it.parent != "" }

func itemLess(a, b item) bool { return a.order < b.order }

func run(items []item) []Entry[item] {
	return Flatten(items, itemID, itemParent, itemLess)
}

func runReport(items []item) ([]Entry[item], Report[string]) {
	return FlattenReport(items, itemID, itemParent, itemLess)
}

func ids(entries []Entry[item]) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Item.id
	}
	return out
}

func depths(entries []Entry[item]) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Depth
	}
	return out
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name       string
		items      []item
		wantIDs    []string
		wantDepths []int
	}{
		{
			name:       "empty input",
			items:      nil,
			wantIDs:    []string{},
			wantDepths: []int{},
		},
		{
			name: "child interleaves before later sibling",
			items: []item{
				{id: "A", order: 1},
				{id: "B", order: 2},
				{id: "C", parent: "A", order: 3},
			},
			wantIDs:    []string{"A", "C", "B"},
			wantDepths: []int{1, 2, 1},
		},
		{
			name: "two children stay in order",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "A", order: 2},
				{id: "C", parent: "A", order: 3},
			},
			wantIDs:    []string{"A", "B", "C"},
			wantDepths: []int{1, 2, 2},
		},
		{
			name: "dangling parent drops the item",
			items: []item{
				{id: "A", parent: "missing-id", order: 1},
			},
			wantIDs:    []string{},
			wantDepths: []int{},
		},
		{
			name: "all top-level stays flat",
			items: []item{
				{id: "C", order: 3},
				{id: "A", order: 1},
				{id: "B", order: 2},
			},
			wantIDs:    []string{"A", "B", "C"},
			wantDepths: []int{1, 1, 1},
		},
		{
			name: "grandchildren nest between parent and uncle",
			items: []item{
				{id: "A", order: 1},
				{id: "B", order: 2},
				{id: "C", parent: "A", order: 3},
				{id: "D", parent: "C", order: 4},
				{id: "E", parent: "A", order: 5},
			},
			wantIDs:    []string{"A", "C", "D", "E", "B"},
			wantDepths: []int{1, 2, 3, 2, 1},
		},
		{
			name: "input order does not matter",
			items: []item{
				{id: "D", parent: "C", order: 4},
				{id: "B", order: 2},
				{id: "C", parent: "A", order: 3},
				{id: "A", order: 1},
			},
			wantIDs:    []string{"A", "C", "D", "B"},
			wantDepths: []int{1, 2, 3, 1},
		},
		{
			name: "descendants of a dangling item vanish with it",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "gone", order: 2},
				{id: "C", parent: "B", order: 3},
			},
			wantIDs:    []string{"A"},
			wantDepths: []int{1},
		},
		{
			name: "self reference is dropped",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "B", order: 2},
			},
			wantIDs:    []string{"A"},
			wantDepths: []int{1},
		},
		{
			name: "two item cycle is dropped",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "C", order: 2},
				{id: "C", parent: "B", order: 3},
			},
			wantIDs:    []string{"A"},
			wantDepths: []int{1},
		},
		{
			name: "child hanging off a cycle is dropped too",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "C", order: 2},
				{id: "C", parent: "B", order: 3},
				{id: "D", parent: "B", order: 4},
			},
			wantIDs:    []string{"A"},
			wantDepths: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(tt.items)
			if !slices.Equal(ids(got), tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids(got), tt.wantIDs)
			}
			if !slices.Equal(depths(got), tt.wantDepths) {
				t.Errorf("depths = %v, want %v", depths(got), tt.wantDepths)
			}
		})
	}
}

func TestFlattenDoesNotMutateInput(t *testing.T) {
	items := []item{
		{id: "C", parent: "A", order: 3},
		{id: "A", order: 1},
		{id: "B", order: 2},
	}
	orig := slices.Clone(items)

	run(items)

	if !slices.Equal(items, orig) {
		t.Errorf("input mutated: %v, want %v", items, orig)
	}
}

func TestFlattenStableOnTies(t *testing.T) {
	// All four share order 1; stability must keep input order.
	items := []item{
		{id: "w", order: 1},
		{id: "x", order: 1},
		{id: "y", order: 1},
		{id: "z", order: 1},
	}

	got := ids(run(items))
	want := []string{"w", "x", "y", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestFlattenOrderedFlatInputUnchanged(t *testing.T) {
	items := []item{
		{id: "a", order: 1},
		{id: "b", order: 2},
		{id: "c", order: 3},
		{id: "d", order: 4},
	}

	got := run(items)
	for i, e := range got {
		if e.Item != items[i] {
			t.Errorf("entry %d = %v, want %v", i, e.Item, items[i])
		}
		if e.Depth != 1 {
			t.Errorf("entry %d depth = %d, want 1", i, e.Depth)
		}
	}
	if len(got) != len(items) {
		t.Fatalf("len = %d, want %d", len(got), len(items))
	}
}

func TestFlattenDuplicateIDLastWins(t *testing.T) {
	// Two items share id "dup". The later one in sort order (order 5)
	// owns the lookup slot, so the child attaches beneath it, not the
	// earlier one.
	items := []item{
		{id: "dup", order: 1},
		{id: "dup", order: 5},
		{id: "child", parent: "dup", order: 9},
	}

	got := run(items)
	wantIDs := []string{"dup", "dup", "child"}
	if !slices.Equal(ids(got), wantIDs) {
		t.Fatalf("ids = %v, want %v", ids(got), wantIDs)
	}

	// First dup keeps depth 1; the child nests beneath the second.
	if got[0].Item.order != 1 || got[0].Depth != 1 {
		t.Errorf("first dup = (%d, depth %d), want (1, depth 1)", got[0].Item.order, got[0].Depth)
	}
	if got[1].Item.order != 5 || got[1].Depth != 1 {
		t.Errorf("second dup = (%d, depth %d), want (5, depth 1)", got[1].Item.order, got[1].Depth)
	}
	if got[2].Depth != 2 {
		t.Errorf("child depth = %d, want 2", got[2].Depth)
	}
}

func TestFlattenDeepChain(t *testing.T) {
	// A 50k-deep reply chain must not overflow the stack.
	const n = 50000
	items := make([]item, n)
	for i := range items {
		items[i] = item{id: fmt.Sprintf("n%d", i), order: i}
		if i > 0 {
			items[i].parent = fmt.Sprintf("n%d", i-1)
		}
	}

	got := run(items)
	if len(got) != n {
		t.Fatalf("len = %d, want %d", len(got), n)
	}
	for i, e := range got {
		if e.Depth != i+1 {
			t.Fatalf("entry %d depth = %d, want %d", i, e.Depth, i+1)
		}
	}
}

// TestFlattenProperties checks the structural invariants on a randomized
// well-formed forest: completeness, parent-before-child, depth arithmetic,
// and sibling ordering with contiguous subtree blocks.
func TestFlattenProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(120)
		items := make([]item, n)
		for i := range items {
			items[i] = item{id: fmt.Sprintf("n%d", i), order: rng.Intn(40)}
			if i > 0 && rng.Intn(3) > 0 {
				// Parent is always an earlier item, so no cycles and no
				// dangling references.
				items[i].parent = fmt.Sprintf("n%d", rng.Intn(i))
			}
		}
		rng.Shuffle(n, func(i, j int) { items[i], items[j] = items[j], items[i] })

		got := run(items)

		if len(got) != n {
			t.Fatalf("trial %d: len = %d, want %d", trial, len(got), n)
		}

		pos := make(map[string]int, n)
		depth := make(map[string]int, n)
		for i, e := range got {
			pos[e.Item.id] = i
			depth[e.Item.id] = e.Depth
		}
		byID := make(map[string]item, n)
		for _, it := range items {
			byID[it.id] = it
		}

		for _, it := range items {
			if it.parent == "" {
				if depth[it.id] != 1 {
					t.Errorf("trial %d: %s depth = %d, want 1", trial, it.id, depth[it.id])
				}
				continue
			}
			if pos[it.parent] >= pos[it.id] {
				t.Errorf("trial %d: parent %s at %d not before child %s at %d",
					trial, it.parent, pos[it.parent], it.id, pos[it.id])
			}
			if depth[it.id] != depth[it.parent]+1 {
				t.Errorf("trial %d: %s depth = %d, want parent+1 = %d",
					trial, it.id, depth[it.id], depth[it.parent]+1)
			}
		}

		// Siblings must appear in order, and the block between two
		// consecutive siblings must contain only the first one's
		// descendants (checked via depth: everything strictly deeper).
		children := make(map[string][]item)
		for _, it := range items {
			children[it.parent] = append(children[it.parent], it)
		}
		for parent, sibs := range children {
			// Stable-sorting the sibling subset in input order reproduces
			// the order the full stable sort gives those siblings.
			slices.SortStableFunc(sibs, func(a, b item) int { return cmp.Compare(a.order, b.order) })
			for i := 1; i < len(sibs); i++ {
				a, b := sibs[i-1], sibs[i]
				if pos[a.id] >= pos[b.id] {
					t.Errorf("trial %d: siblings of %q out of order: %s before %s",
						trial, parent, b.id, a.id)
				}
				for p := pos[a.id] + 1; p < pos[b.id]; p++ {
					if got[p].Depth <= depth[a.id] {
						t.Errorf("trial %d: %s interleaves siblings %s and %s",
							trial, got[p].Item.id, a.id, b.id)
					}
				}
			}
		}
	}
}

func TestFlattenReport(t *testing.T) {
	tests := []struct {
		name         string
		items        []item
		wantIDs      []string
		wantDangling []string
		wantUnrooted []string
	}{
		{
			name: "clean input reports nothing",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "A", order: 2},
			},
			wantIDs:      []string{"A", "B"},
			wantDangling: []string{},
			wantUnrooted: []string{},
		},
		{
			name: "dangling parent reported",
			items: []item{
				{id: "A", parent: "missing-id", order: 1},
			},
			wantIDs:      []string{},
			wantDangling: []string{"A"},
			wantUnrooted: []string{},
		},
		{
			name: "cycle members reported as unrooted",
			items: []item{
				{id: "A", order: 1},
				{id: "B", parent: "C", order: 2},
				{id: "C", parent: "B", order: 3},
			},
			wantIDs:      []string{"A"},
			wantDangling: []string{},
			wantUnrooted: []string{"B", "C"},
		},
		{
			name: "descendant of dangling reported as unrooted",
			items: []item{
				{id: "A", parent: "gone", order: 1},
				{id: "B", parent: "A", order: 2},
			},
			wantIDs:      []string{},
			wantDangling: []string{"A"},
			wantUnrooted: []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, report := runReport(tt.items)
			if !slices.Equal(ids(got), tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids(got), tt.wantIDs)
			}
			if !slices.Equal(report.Dangling, tt.wantDangling) {
				t.Errorf("Dangling = %v, want %v", report.Dangling, tt.wantDangling)
			}
			if !slices.Equal(report.Unrooted, tt.wantUnrooted) {
				t.Errorf("Unrooted = %v, want %v", report.Unrooted, tt.wantUnrooted)
			}
			if want := len(tt.wantDangling) + len(tt.wantUnrooted); report.Dropped() != want {
				t.Errorf("Dropped() = %d, want %d", report.Dropped(), want)
			}
		})
	}
}

func TestFlattenReportMatchesFlatten(t *testing.T) {
	items := []item{
		{id: "A", order: 1},
		{id: "B", parent: "A", order: 2},
		{id: "C", parent: "nope", order: 3},
		{id: "D", parent: "D", order: 4},
	}

	plain := run(items)
	reported, _ := runReport(items)

	if !slices.Equal(ids(plain), ids(reported)) {
		t.Errorf("entries differ: %v vs %v", ids(plain), ids(reported))
	}
	if !slices.Equal(depths(plain), depths(reported)) {
		t.Errorf("depths differ: %v vs %v", depths(plain), depths(reported))
	}
}
