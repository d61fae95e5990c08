package movies

import (
	"cmp"
	"encoding/json"
	"maps"
	"slices"
)

// Set is an unordered collection of unique keys. Sets handed out by this
// package are never mutated after construction; Union always allocates.
type Set[K cmp.Ordered] map[K]struct{}

// IDSet is a set of integer identifiers (genres, production companies).
type IDSet = Set[int64]

// NewSet builds a set from the given keys.
func NewSet[K cmp.Ordered](keys ...K) Set[K] {
	s := make(Set[K], len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports whether k is a member of s.
func (s Set[K]) Contains(k K) bool {
	_, ok := s[k]
	return ok
}

// Len returns the number of members.
func (s Set[K]) Len() int {
	return len(s)
}

// Union returns a new set holding the members of both s and other.
func (s Set[K]) Union(other Set[K]) Set[K] {
	out := make(Set[K], len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Clone returns a shallow copy of s.
func (s Set[K]) Clone() Set[K] {
	if s == nil {
		return Set[K]{}
	}
	return maps.Clone(s)
}

// Sorted returns the members in ascending order.
func (s Set[K]) Sorted() []K {
	return slices.Sorted(maps.Keys(s))
}

// Equal reports whether s and other hold the same members.
func (s Set[K]) Equal(other Set[K]) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Contains(k) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array.
func (s Set[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}
