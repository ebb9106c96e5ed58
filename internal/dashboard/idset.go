package dashboard

import (
	"sort"
)

// IDSet is an immutable set of ids. Every operation that changes membership
// returns a new set and leaves the receiver untouched. The zero value is an
// empty set.
type IDSet struct {
	m map[string]struct{}
}

func NewIDSet(ids ...string) IDSet {
	s := IDSet{}
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s.m[id]
	return ok
}

func (s IDSet) Len() int {
	return len(s.m)
}

func (s IDSet) With(id string) IDSet {
	if s.Has(id) {
		return s
	}
	next := s.clone(len(s.m) + 1)
	next.m[id] = struct{}{}
	return next
}

func (s IDSet) Without(id string) IDSet {
	if !s.Has(id) {
		return s
	}
	next := s.clone(len(s.m))
	delete(next.m, id)
	return next
}

func (s IDSet) Toggle(id string) IDSet {
	if s.Has(id) {
		return s.Without(id)
	}
	return s.With(id)
}

// Rename moves membership from oldID to newID. Sets without oldID are returned
// unchanged.
func (s IDSet) Rename(oldID, newID string) IDSet {
	if !s.Has(oldID) {
		return s
	}
	return s.Without(oldID).With(newID)
}

// IDs returns the members in ascending order.
func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) clone(capacity int) IDSet {
	m := make(map[string]struct{}, capacity)
	for id := range s.m {
		m[id] = struct{}{}
	}
	return IDSet{m: m}
}
