/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package sets provides a generic set type
package sets

import (
	"cmp"
	"maps"
	"slices"
)

// Set is a set of comparable values
type Set[T comparable] map[T]struct{}

// New returns a new Set holding vals
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	s.Add(vals...)
	return s
}

// Add inserts values into the set.
func (s Set[T]) Add(vals ...T) {
	for _, v := range vals {
		s[v] = struct{}{}
	}
}

// Remove deletes a value from the set.
func (s Set[T]) Remove(val T) {
	delete(s, val)
}

// Contains checks if a value is in the set.
func (s Set[T]) Contains(val T) bool {
	_, ok := s[val]
	return ok
}

// ContainsAll returns true if every value in vals is in the set
func (s Set[T]) ContainsAll(vals ...T) bool {
	for _, v := range vals {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}

// Len returns the number of elements in the set
func (s Set[T]) Len() int {
	return len(s)
}

// Keys returns the set elements as a slice in an unpredictable order.
func (s Set[T]) Keys() []T {
	out := make([]T, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// Clone returns a new independent copy of the set.
func (s Set[T]) Clone() Set[T] {
	return maps.Clone(s)
}

// Sorted returns the elements of an ordered set as a sorted slice
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := s.Keys()
	slices.Sort(out)
	return out
}
