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
	"context"
	"sort"
	"time"

	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store/metrics"
)

// Sweep removes every expired entry and returns how many were removed.
// Candidates are collected under the read lock and removed under the write
// lock only if they are unchanged and still expired, so entries refreshed
// in between survive.
func (s *Store[V]) Sweep() int {
	start := time.Now()
	now := s.now()

	s.mtx.RLock()
	removals := make([]*entry[V], 0)
	for _, e := range s.entries {
		if s.expired(e, now) {
			removals = append(removals, e)
		}
	}
	s.mtx.RUnlock()

	if len(removals) == 0 {
		metrics.ObserveSweep(s.name, time.Since(start).Seconds())
		return 0
	}

	var removed int
	s.mtx.Lock()
	for _, e := range removals {
		if cur, ok := s.entries[e.key]; ok && cur == e && s.expired(e, now) {
			delete(s.entries, e.key)
			removed++
		}
	}
	n := len(s.entries)
	s.mtx.Unlock()

	metrics.ObserveSweep(s.name, time.Since(start).Seconds())
	metrics.ObserveEvent(s.name, "expiration", "sweep", removed)
	metrics.ObserveSizeChange(s.name, n)
	logger.Debug("store sweep completed",
		logging.Pairs{"storeName": s.name, "removed": removed, "remaining": n})
	return removed
}

// Snapshot returns copies of all live entries, ordered by key
func (s *Store[V]) Snapshot() []Entry[V] {
	now := s.now()
	s.mtx.RLock()
	out := make([]Entry[V], 0, len(s.entries))
	for k, e := range s.entries {
		if s.expired(e, now) {
			continue
		}
		out = append(out, Entry[V]{
			Key:        k,
			Value:      s.clone(e.value),
			CreatedAt:  e.createdAt,
			LastActive: e.lastActive.Load(),
		})
	}
	s.mtx.RUnlock()
	sort.Sort(entriesByKey[V](out))
	return out
}

// KeysMatching returns, in sorted order, the keys of live entries whose value
// satisfies pred. pred is evaluated against a point-in-time snapshot and
// outside of any store lock, so it may call back into the store.
func (s *Store[V]) KeysMatching(pred func(V) bool) []string {
	snap := s.Snapshot()
	keys := make([]string, 0, len(snap))
	for _, e := range snap {
		if pred == nil || pred(e.Value) {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// reaper periodically sweeps the store until ctx is canceled
func (s *Store[V]) reaper(ctx context.Context, interval time.Duration) {
	defer close(s.reaperDone)
REAPER:
	for {
		select {
		case <-ctx.Done():
			break REAPER
		case <-time.After(interval):
			s.Sweep()
		}
	}
	logger.Debug("store reaper exited", logging.Pairs{"storeName": s.name})
}

type entriesByKey[V any] []Entry[V]

// Len returns the number of elements in the subject slice
func (o entriesByKey[V]) Len() int {
	return len(o)
}

// Less returns true if i comes before j
func (o entriesByKey[V]) Less(i, j int) bool {
	return o[i].Key < o[j].Key
}

// Swap modifies the subject slice by swapping the values in indexes i and j
func (o entriesByKey[V]) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
}
