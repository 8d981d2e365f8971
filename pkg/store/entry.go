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
package store

import (
	"time"

	"github.com/tasktrack/eks/pkg/util/atomicx"
)

// Cloner is implemented by values that hold references (maps, slices, pointers)
// and must be deep-copied when they cross the store boundary
type Cloner[V any] interface {
	Clone() V
}

// Entry is a point-in-time copy of a live entry and its timestamps
type Entry[V any] struct {
	Key        string
	Value      V
	CreatedAt  time.Time
	LastActive time.Time
}

type entry[V any] struct {
	key        string
	value      V
	createdAt  time.Time
	lastActive *atomicx.Time
	// seq orders entries by insertion and breaks eviction ties
	seq uint64
}

func newEntry[V any](key string, value V, now time.Time, seq uint64) *entry[V] {
	e := &entry[V]{
		key:        key,
		value:      value,
		createdAt:  now,
		lastActive: atomicx.NewTime(now),
		seq:        seq,
	}
	return e
}

// lessRecent reports whether a should be evicted before b
func lessRecent[V any](a, b *entry[V]) bool {
	la, lb := a.lastActive.Load(), b.lastActive.Load()
	if !la.Equal(lb) {
		return la.Before(lb)
	}
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.Before(b.createdAt)
	}
	return a.seq < b.seq
}

func cloneValue[V any](v V) V {
	if c, ok := any(v).(Cloner[V]); ok {
		return c.Clone()
	}
	return v
}
