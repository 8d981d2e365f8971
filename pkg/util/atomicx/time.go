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
// Package atomicx provides atomic wrappers for types not covered by sync/atomic
package atomicx

import (
	"sync/atomic"
	"time"
)

// NewTime returns a Time holding in
func NewTime(in time.Time) *Time {
	t := &Time{}
	t.Store(in)
	return t
}

// Time is a time.Time stored as UnixNano in an atomic.Int64. Monotonic clock
// readings are dropped on Store.
type Time struct {
	v atomic.Int64
}

// Load returns the stored time
func (d *Time) Load() time.Time {
	return time.Unix(0, d.v.Load())
}

// Store sets the stored time to d2
func (d *Time) Store(d2 time.Time) {
	d.v.Store(d2.UnixNano())
}

// StoreIfAfter stores d2 only when it is later than the current value, so
// concurrent writers with slightly skewed readings never move the time backwards.
// It returns the value held after the call.
func (d *Time) StoreIfAfter(d2 time.Time) time.Time {
	n := d2.UnixNano()
	for {
		cur := d.v.Load()
		if n <= cur {
			return time.Unix(0, cur)
		}
		if d.v.CompareAndSwap(cur, n) {
			return time.Unix(0, n)
		}
	}
}
