package feed

import (
	"testing"
	"time"

	"github.com/matzehuels/threadline/pkg/errors"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Order
		wantErr bool
	}{
		{"empty defaults to oldest", "", OrderOldest, false},
		{"oldest", "oldest", OrderOldest, false},
		{"newest", "newest", OrderNewest, false},
		{"top", "top", OrderTop, false},
		{"case insensitive", "NEWEST", OrderNewest, false},
		{"trims whitespace", " top ", OrderTop, false},

		{"unknown", "best", "", true},
		{"typo", "oldset", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrder(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrder(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidOrder) {
					t.Errorf("ParseOrder(%q) returned wrong error code: %v", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseOrder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOrderLess(t *testing.T) {
	early := Record{ID: "early", Created: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), Score: 1}
	late := Record{ID: "late", Created: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), Score: 9}

	tests := []struct {
		name  string
		order Order
		a, b  Record
		want  bool
	}{
		{"oldest: earlier first", OrderOldest, early, late, true},
		{"oldest: later not first", OrderOldest, late, early, false},
		{"newest: later first", OrderNewest, late, early, true},
		{"newest: earlier not first", OrderNewest, early, late, false},
		{"top: higher score first", OrderTop, late, early, true},
		{"top: lower score not first", OrderTop, early, late, false},
		{"equal records are not less", OrderOldest, early, early, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.Less()(tt.a, tt.b); got != tt.want {
				t.Errorf("%s.Less()(%s, %s) = %v, want %v", tt.order, tt.a.ID, tt.b.ID, got, tt.want)
			}
		})
	}
}

func TestOrderTopTieBreaksOldest(t *testing.T) {
	a := Record{ID: "a", Created: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), Score: 5}
	b := Record{ID: "b", Created: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), Score: 5}

	less := OrderTop.Less()
	if !less(a, b) {
		t.Error("equal scores should order by creation time ascending")
	}
	if less(b, a) {
		t.Error("later record should not precede on equal score")
	}
}

func TestOrdersListsAll(t *testing.T) {
	got := Orders()
	if len(got) != 3 {
		t.Fatalf("Orders() returned %d orderings, want 3", len(got))
	}
	for _, o := range got {
		if _, err := ParseOrder(string(o)); err != nil {
			t.Errorf("Orders() contains unparseable ordering %q", o)
		}
	}
}
