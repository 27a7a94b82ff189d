package analyzer

import (
	"encoding/json"
	"maps"
	"slices"
)

// List is an ordered collection with explicit presence. An absent list is
// omitted when serialized; a present list is written even when empty.
type List[T any] struct {
	items   []T
	present bool
}

// Some returns a present list holding items.
func Some[T any](items ...T) List[T] {
	return List[T]{items: items, present: true}
}

// None returns an absent list.
func None[T any]() List[T] {
	return List[T]{}
}

// listOf returns a present list for a non-empty slice and an absent one
// otherwise.
func listOf[T any](items []T) List[T] {
	if len(items) == 0 {
		return None[T]()
	}
	return Some(items...)
}

// Present reports whether the list is present.
func (l List[T]) Present() bool { return l.present }

// Items returns the elements. The slice must not be modified.
func (l List[T]) Items() []T { return l.items }

// Len returns the number of elements.
func (l List[T]) Len() int { return len(l.items) }

// IsZero reports whether the list is absent. encoding/json consults it for
// fields tagged omitzero.
func (l List[T]) IsZero() bool { return !l.present }

// MarshalJSON writes the elements as an array, or null when absent.
func (l List[T]) MarshalJSON() ([]byte, error) {
	if !l.present {
		return []byte("null"), nil
	}
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

// UnmarshalJSON reads an array; null yields an absent list.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = None[T]()
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = Some(items...)
	return nil
}

// Set is an unordered collection of distinct strings. The zero value is an
// empty set ready to use. Sets serialize as sorted arrays.
type Set struct {
	m map[string]struct{}
}

// NewSet returns a set holding items.
func NewSet(items ...string) Set {
	var s Set
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts item.
func (s *Set) Add(item string) {
	if s.m == nil {
		s.m = make(map[string]struct{})
	}
	s.m[item] = struct{}{}
}

// Merge inserts every item of other.
func (s *Set) Merge(other Set) {
	for it := range other.m {
		s.Add(it)
	}
}

// Has reports whether item is in the set.
func (s Set) Has(item string) bool {
	_, ok := s.m[item]
	return ok
}

// Len returns the number of items.
func (s Set) Len() int { return len(s.m) }

// IsZero reports whether the set is empty. Empty sets are absent.
func (s Set) IsZero() bool { return len(s.m) == 0 }

// Sorted returns the items in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s.m))
}

// MarshalJSON writes the items as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	items := s.Sorted()
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON reads an array of strings; null yields an empty set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}
