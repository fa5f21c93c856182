package thread

import "slices"

// Entry pairs an item with its nesting depth in the threaded output.
// Depth is 1-based: top-level items have Depth 1, their replies Depth 2,
// and so on. The depth of an item with a resolvable parent is always
// exactly the parent's depth plus one.
type Entry[T any] struct {
	Item  T
	Depth int
}

// Report lists the items a threading pass excluded from its output.
// Ids appear in the caller's sort order. See [FlattenReport].
type Report[K comparable] struct {
	// Dangling holds ids of items whose declared parent matched no item
	// in the input.
	Dangling []K

	// Unrooted holds ids of items that were attached beneath a parent
	// but never reached from the top level: members of reference cycles
	// and descendants of dropped items.
	Unrooted []K
}

// Dropped returns the total number of excluded items.
func (r Report[K]) Dropped() int { return len(r.Dangling) + len(r.Unrooted) }

// node wraps one item with its ordered children. The zero node holds no
// item and serves as the synthetic root anchoring all top-level items;
// it is never emitted.
type node[T any] struct {
	item     T
	children []*node[T]
	emitted  bool
}

// Flatten sorts items by less and arranges them into hierarchical display
// order: every item appears immediately after its parent, descendants sit
// between a parent and the parent's next sibling, and siblings keep the
// sorted order among themselves. Each returned entry carries the item's
// 1-based nesting depth for rendering.
//
// Items declare their hierarchy through parentID alone (no child lists):
// parentID returns the id of the item's parent and true, or false for a
// top-level item. Children are matched to parents by comparing parentID
// results against id results.
//
// # Algorithm
//
// Flatten runs three stages over a copy of the input (the input slice is
// never mutated):
//
//  1. Sort all items by less. The sort is stable: items that compare
//     equal keep their input order.
//  2. Build a tree. Each sorted item becomes a node in an id-keyed map;
//     items are then attached in sorted order to their parent's child
//     list, or to a synthetic root when parentID reports none. Appending
//     in sorted order is what keeps every child list sorted without a
//     second sort.
//  3. Walk the tree depth-first, parent before children, children in
//     stored order, emitting one entry per visited node. The walk uses
//     an explicit stack, so arbitrarily deep threads cannot exhaust the
//     goroutine stack.
//
// Total cost is O(n log n) for the sort plus O(n) for the rest.
//
// # Dropped Items
//
// Flatten never fails. Malformed references thin the output instead:
//
//   - An item whose parent id matches no input item is dropped, along
//     with all of its descendants.
//   - Items whose parent chain loops (an item being its own ancestor)
//     are attached to each other but never reached from the root, so the
//     whole cycle is dropped. The walk still terminates because every
//     node is appended to exactly one child list.
//
// Use [FlattenReport] to learn which ids were dropped.
//
// # Duplicate Ids
//
// Duplicate ids are unsupported but not rejected: every item still
// produces its own entry (or is dropped on its own terms), while parent
// lookups for a duplicated id resolve to whichever item sorted last.
func Flatten[T any, K comparable](items []T, id func(T) K, parentID func(T) (K, bool), less func(a, b T) bool) []Entry[T] {
	entries, _ := flatten(items, id, parentID, less)
	return entries
}

// FlattenReport behaves exactly like [Flatten] and additionally reports
// the ids of dropped items. The report is never required: callers that
// accept silent thinning should use Flatten directly.
func FlattenReport[T any, K comparable](items []T, id func(T) K, parentID func(T) (K, bool), less func(a, b T) bool) ([]Entry[T], Report[K]) {
	return flatten(items, id, parentID, less)
}

func flatten[T any, K comparable](items []T, id func(T) K, parentID func(T) (K, bool), less func(a, b T) bool) ([]Entry[T], Report[K]) {
	var report Report[K]

	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})

	// One node per item, plus an id lookup. Later items overwrite earlier
	// ones in the lookup when ids collide.
	nodes := make([]node[T], len(sorted))
	byID := make(map[K]*node[T], len(sorted))
	for i, it := range sorted {
		nodes[i].item = it
		byID[id(it)] = &nodes[i]
	}

	root := &node[T]{}
	for i, it := range sorted {
		pid, ok := parentID(it)
		if !ok {
			root.children = append(root.children, &nodes[i])
			continue
		}
		parent, found := byID[pid]
		if !found {
			report.Dangling = append(report.Dangling, id(it))
			continue
		}
		parent.children = append(parent.children, &nodes[i])
	}

	type frame struct {
		n     *node[T]
		depth int
	}
	entries := make([]Entry[T], 0, len(sorted))
	stack := make([]frame, 0, len(root.children))
	for i := len(root.children) - 1; i >= 0; i-- {
		stack = append(stack, frame{root.children[i], 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.n.emitted = true
		entries = append(entries, Entry[T]{Item: f.n.item, Depth: f.depth})
		for i := len(f.n.children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.n.children[i], f.depth + 1})
		}
	}

	// Attached but never reached from the root.
	for i := range nodes {
		if nodes[i].emitted {
			continue
		}
		it := nodes[i].item
		if pid, ok := parentID(it); ok {
			if _, found := byID[pid]; !found {
				continue // already reported as dangling
			}
		}
		report.Unrooted = append(report.Unrooted, id(it))
	}

	return entries, report
}
