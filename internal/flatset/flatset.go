// Package flatset implements an ordered set backed by a sorted slice.
//
// Lookups are binary searches and iteration walks contiguous memory, at the
// price of linear-time insertion in the middle of the set. Appending values in
// increasing order is amortized constant time.
package flatset

import (
	"cmp"
	"slices"
)

// Set is an ordered set of distinct values. The zero value is not usable;
// create sets with New or NewFunc.
type Set[T any] struct {
	cmp    func(a, b T) int
	values []T
}

// New returns a set of elems ordered by cmp.Compare, with duplicates removed.
func New[T cmp.Ordered](elems ...T) *Set[T] {
	return NewFunc(cmp.Compare[T], elems...)
}

// NewFunc returns a set of elems ordered by compare, keeping the first of
// equivalent elems. compare must return a negative number when a < b, zero
// when they are equivalent and a positive number otherwise.
func NewFunc[T any](compare func(a, b T) int, elems ...T) *Set[T] {
	values := slices.Clone(elems)
	slices.SortStableFunc(values, compare)
	values = slices.CompactFunc(values, func(a, b T) bool { return compare(a, b) == 0 })
	return &Set[T]{cmp: compare, values: values}
}

// Insert adds v unless an equivalent value is present. It returns the index
// of the value in the set and whether it was inserted.
func (s *Set[T]) Insert(v T) (int, bool) {
	if n := len(s.values); n == 0 || s.cmp(s.values[n-1], v) < 0 {
		s.values = append(s.values, v)
		return n, true
	}
	i, found := slices.BinarySearchFunc(s.values, v, s.cmp)
	if found {
		return i, false
	}
	s.values = slices.Insert(s.values, i, v)
	return i, true
}

// Find returns the index of v and whether it is present.
func (s *Set[T]) Find(v T) (int, bool) {
	return slices.BinarySearchFunc(s.values, v, s.cmp)
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.Find(v)
	return ok
}

// LowerBound returns the index of the first value not less than v, or Len()
// if there is none.
func (s *Set[T]) LowerBound(v T) int {
	i, _ := slices.BinarySearchFunc(s.values, v, s.cmp)
	return i
}

// UpperBound returns the index of the first value greater than v, or Len()
// if there is none.
func (s *Set[T]) UpperBound(v T) int {
	i, found := slices.BinarySearchFunc(s.values, v, s.cmp)
	if found {
		i++
	}
	return i
}

// EqualRange returns LowerBound(v) and UpperBound(v). The range holds at most
// one value.
func (s *Set[T]) EqualRange(v T) (lo, hi int) {
	lo, found := slices.BinarySearchFunc(s.values, v, s.cmp)
	if found {
		return lo, lo + 1
	}
	return lo, lo
}

// At returns the i-th smallest value. It panics if i is out of range.
func (s *Set[T]) At(i int) T {
	return s.values[i]
}

func (s *Set[T]) Len() int {
	return len(s.values)
}

func (s *Set[T]) Empty() bool {
	return len(s.values) == 0
}

// Clear removes every value, keeping the allocated capacity.
func (s *Set[T]) Clear() {
	clear(s.values)
	s.values = s.values[:0]
}

// Erase removes v and reports whether it was present.
func (s *Set[T]) Erase(v T) bool {
	i, found := s.Find(v)
	if !found {
		return false
	}
	s.EraseAt(i)
	return true
}

// EraseAt removes the i-th smallest value. It panics if i is out of range.
func (s *Set[T]) EraseAt(i int) {
	s.values = slices.Delete(s.values, i, i+1)
}

// Values returns a copy of the values in increasing order.
func (s *Set[T]) Values() []T {
	return slices.Clone(s.values)
}

// Each calls fn on every value in increasing order until fn returns false.
func (s *Set[T]) Each(fn func(i int, v T) bool) {
	for i, v := range s.values {
		if !fn(i, v) {
			return
		}
	}
}

// Clone returns an independent copy of the set.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{cmp: s.cmp, values: slices.Clone(s.values)}
}

// Equal reports whether both sets hold equivalent values under s's ordering.
func (s *Set[T]) Equal(other *Set[T]) bool {
	return slices.EqualFunc(s.values, other.values, func(a, b T) bool { return s.cmp(a, b) == 0 })
}
