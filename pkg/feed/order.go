package feed

import (
	"strings"

	"github.com/matzehuels/threadline/pkg/errors"
)

// Order names a sibling ordering for threading.
type Order string

// Supported orderings.
const (
	// OrderOldest sorts by creation time ascending. The default.
	OrderOldest Order = "oldest"

	// OrderNewest sorts by creation time descending.
	OrderNewest Order = "newest"

	// OrderTop sorts by score descending, breaking ties oldest-first.
	OrderTop Order = "top"
)

// Orders lists all supported orderings.
func Orders() []Order { return []Order{OrderOldest, OrderNewest, OrderTop} }

// ParseOrder resolves a user-supplied ordering name. The empty string maps
// to [OrderOldest].
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return OrderOldest, nil
	case OrderOldest:
		return OrderOldest, nil
	case OrderNewest:
		return OrderNewest, nil
	case OrderTop:
		return OrderTop, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOrder, "unknown ordering: %q (supported: oldest, newest, top)", s)
}

// Less returns the comparison function implementing the ordering.
// Unknown orderings fall back to oldest-first.
func (o Order) Less() func(a, b Record) bool {
	switch o {
	case OrderNewest:
		return func(a, b Record) bool { return b.Created.Before(a.Created) }
	case OrderTop:
		return func(a, b Record) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.Created.Before(b.Created)
		}
	default:
		return func(a, b Record) bool { return a.Created.Before(b.Created) }
	}
}
