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
	"github.com/tasktrack/eks/pkg/store/metrics"
	"github.com/tasktrack/eks/pkg/store/status"
)

// Update atomically replaces the value under key with fn(current) and marks
// the entry active. fn receives a copy of the current value and must not
// retain it. It returns a copy of the stored value, or ErrNotFound when the
// key is absent or expired.
func (s *Store[V]) Update(key string, fn func(V) V) (V, error) {
	return s.update(key, nil, fn, "update")
}

// UpdateIf is Update guarded by pred: when pred(current) is false nothing is
// written and ErrConflict is returned. The check and the write are a single
// atomic step with respect to every other write to key.
func (s *Store[V]) UpdateIf(key string, pred func(V) bool, fn func(V) V) (V, error) {
	return s.update(key, pred, fn, "update_if")
}

// CompareAndUpdate replaces the value under key with newValue only when
// pred(current) holds. It returns nil when the swap occurred, ErrConflict
// when pred did not hold, and ErrNotFound when the key is absent or expired.
func (s *Store[V]) CompareAndUpdate(key string, pred func(V) bool, newValue V) error {
	_, err := s.update(key, pred, func(V) V { return s.clone(newValue) }, "compare_and_update")
	return err
}

// Upsert atomically writes fn(current, found) under key. found is false, and
// current the zero value, when no live entry exists; the result is then
// inserted as a new entry, subject to the size bound.
func (s *Store[V]) Upsert(key string, fn func(current V, found bool) V) (V, error) {
	var zero V
	if key == "" {
		return zero, ErrInvalidKey
	}
	nl, err := s.locker.Acquire(key)
	if err != nil {
		return zero, ErrInvalidKey
	}
	defer nl.Release()

	now := s.now()
	var cur V
	s.mtx.RLock()
	e, ok := s.entries[key]
	found := ok && !s.expired(e, now)
	if found {
		cur = s.clone(e.value)
	}
	s.mtx.RUnlock()

	nv := fn(cur, found)
	s.putLocked(key, nv, "upsert")
	return nv, nil
}

func (s *Store[V]) update(key string, pred func(V) bool, fn func(V) V,
	op string) (V, error) {
	var zero V
	nl, err := s.locker.Acquire(key)
	if err != nil {
		metrics.ObserveOperation(s.name, op, status.LookupStatusKeyMiss)
		return zero, ErrNotFound
	}
	defer nl.Release()

	now := s.now()
	s.mtx.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mtx.RUnlock()
		metrics.ObserveOperation(s.name, op, status.LookupStatusKeyMiss)
		return zero, ErrNotFound
	}
	if s.expired(e, now) {
		s.mtx.RUnlock()
		s.purge(key, e, now)
		metrics.ObserveOperation(s.name, op, status.LookupStatusExpired)
		return zero, ErrNotFound
	}
	cur := s.clone(e.value)
	s.mtx.RUnlock()

	// the named lock is held from here until the write, so no other writer
	// of key can interleave; pred and fn run outside the map lock.
	if pred != nil && !pred(cur) {
		metrics.ObserveOperation(s.name, op, status.LookupStatusConflict)
		metrics.ObserveEvent(s.name, "conflict", op, 1)
		return zero, ErrConflict
	}
	nv := fn(cur)

	now = s.now()
	s.mtx.Lock()
	if c, ok := s.entries[key]; !ok || c != e || s.expired(e, now) {
		// removed by a sweep or an eviction, or expired, while fn ran
		var purged bool
		if ok && c == e {
			delete(s.entries, key)
			purged = true
		}
		n := len(s.entries)
		s.mtx.Unlock()
		if purged {
			metrics.ObserveEvent(s.name, "expiration", "lazy", 1)
			metrics.ObserveSizeChange(s.name, n)
		}
		metrics.ObserveOperation(s.name, op, status.LookupStatusExpired)
		return zero, ErrNotFound
	}
	// fn may have placed caller-owned references in nv
	e.value = s.clone(nv)
	e.lastActive.Store(now)
	s.mtx.Unlock()

	metrics.ObserveOperation(s.name, op, status.LookupStatusOK)
	return nv, nil
}
