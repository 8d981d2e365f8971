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
// Package store implements the Expiring Keyed Store: a concurrency-safe
// map from key to value with sliding-window expiry, least-recently-active
// eviction under a size bound, and atomic read-modify-write operations.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tasktrack/eks/pkg/locks"
	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store/metrics"
	"github.com/tasktrack/eks/pkg/store/options"
	"github.com/tasktrack/eks/pkg/store/status"

	"github.com/google/uuid"
)

var (
	// ErrNotFound represents the error "key not found in store". It is returned
	// for absent and for expired keys alike.
	ErrNotFound = errors.New("key not found in store")
	// ErrConflict is returned by conditional updates whose precondition did not hold
	ErrConflict = errors.New("store precondition not met")
	// ErrInvalidKey is returned when an explicit key is required but empty
	ErrInvalidKey = errors.New("invalid store key")
)

// Option modifies a Store at construction
type Option[V any] func(*Store[V])

// WithClock sets the time source used for all timestamps and expiry decisions
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *Store[V]) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCloner sets the function used to copy values into and out of the store.
// Without it, values implementing Cloner are cloned and all others are
// copied by assignment.
func WithCloner[V any](clone func(V) V) Option[V] {
	return func(s *Store[V]) {
		if clone != nil {
			s.clone = clone
		}
	}
}

// Store is an Expiring Keyed Store holding values of type V
type Store[V any] struct {
	name    string
	options *options.Options
	now     func() time.Time
	clone   func(V) V

	mtx     sync.RWMutex
	entries map[string]*entry[V]
	// locker serializes read-modify-write sequences per key
	locker locks.NamedLocker
	seq    atomic.Uint64

	cancel     context.CancelFunc
	reaperDone chan struct{}
	closed     atomic.Bool
}

// New returns a new Store. The options are validated and copied; invalid
// options return an error wrapping errors.ErrInvalidOptions.
func New[V any](name string, o *options.Options, opts ...Option[V]) (*Store[V], error) {
	if o == nil {
		o = options.New()
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	s := &Store[V]{
		name:    name,
		options: o.Clone(),
		now:     time.Now,
		clone:   cloneValue[V],
		entries: make(map[string]*entry[V]),
		locker:  locks.NewNamedLocker(),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.ObserveMaxSize(name, o.MaxSize)
	metrics.ObserveSizeChange(name, 0)

	if o.ReapInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.reaperDone = make(chan struct{})
		go s.reaper(ctx, o.ReapInterval)
	} else {
		logger.Debug("store reaper was not started",
			logging.Pairs{"storeName": name, "reapInterval": o.ReapInterval.String()})
	}
	return s, nil
}

// Name returns the name of the Store
func (s *Store[V]) Name() string {
	return s.name
}

// Options returns a copy of the Store's options
func (s *Store[V]) Options() *options.Options {
	return s.options.Clone()
}

// Create inserts value under key and returns the key used. An empty key is
// replaced by a freshly generated random UUID.
func (s *Store[V]) Create(key string, value V) (string, error) {
	if key == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("could not create random key: %w", err)
		}
		key = id.String()
	}
	if err := s.put(key, value, "create"); err != nil {
		return "", err
	}
	return key, nil
}

// Put inserts or overwrites the value under key. Overwriting a live entry
// keeps its creation time and resets its last-active time.
func (s *Store[V]) Put(key string, value V) error {
	if key == "" {
		return ErrInvalidKey
	}
	return s.put(key, value, "put")
}

func (s *Store[V]) put(key string, value V, op string) error {
	nl, err := s.locker.Acquire(key)
	if err != nil {
		return ErrInvalidKey
	}
	defer nl.Release()
	s.putLocked(key, value, op)
	return nil
}

// putLocked writes value under key. The caller must hold the key's named lock.
func (s *Store[V]) putLocked(key string, value V, op string) {
	value = s.clone(value)
	now := s.now()

	s.mtx.Lock()
	if e, ok := s.entries[key]; ok {
		if !s.expired(e, now) {
			e.value = value
			e.lastActive.Store(now)
			s.mtx.Unlock()
			metrics.ObserveOperation(s.name, op, status.LookupStatusOK)
			return
		}
		delete(s.entries, key)
		metrics.ObserveEvent(s.name, "expiration", "lazy", 1)
	}
	evicted, expired := s.makeRoom(now)
	s.entries[key] = newEntry(key, value, now, s.seq.Add(1))
	n := len(s.entries)
	s.mtx.Unlock()

	if len(evicted) > 0 {
		logger.Debug("max store size reached. evicted least-recently-active entries",
			logging.Pairs{"storeName": s.name, "maxSize": s.options.MaxSize,
				"evicted": len(evicted)})
	}
	metrics.ObserveEvent(s.name, "eviction", "lru", len(evicted))
	metrics.ObserveEvent(s.name, "expiration", "capacity", expired)
	metrics.ObserveOperation(s.name, op, status.LookupStatusOK)
	metrics.ObserveSizeChange(s.name, n)
}

// makeRoom frees space for one insertion when the store is at its size bound.
// Expired entries are removed first; if that is not enough, the least-recently
// active entries are evicted. The caller must hold the write lock.
func (s *Store[V]) makeRoom(now time.Time) (evicted []string, expired int) {
	maxSize := s.options.MaxSize
	if maxSize <= 0 || len(s.entries) < maxSize {
		return nil, 0
	}
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
			expired++
		}
	}
	for len(s.entries) >= maxSize {
		var victim *entry[V]
		for _, e := range s.entries {
			if victim == nil || lessRecent(e, victim) {
				victim = e
			}
		}
		if victim == nil {
			break
		}
		delete(s.entries, victim.key)
		evicted = append(evicted, victim.key)
	}
	return evicted, expired
}

// Get returns a copy of the value stored under key. It returns ErrNotFound
// when the key is absent or expired; an expired entry is purged as a side
// effect. Get does not extend the entry's life.
func (s *Store[V]) Get(key string) (V, error) {
	e, err := s.lookup(key, "get", false)
	return e.Value, err
}

// GetEntry is Get, but also returns the entry's timestamps
func (s *Store[V]) GetEntry(key string) (Entry[V], error) {
	return s.lookup(key, "get_entry", false)
}

// Access is Get followed by Touch in a single lookup: a hit returns a copy
// of the value and marks the entry active now
func (s *Store[V]) Access(key string) (V, error) {
	e, err := s.lookup(key, "access", true)
	return e.Value, err
}

// CloneValue copies v the same way values are copied into and out of the Store
func (s *Store[V]) CloneValue(v V) V {
	return s.clone(v)
}

func (s *Store[V]) lookup(key, op string, touch bool) (Entry[V], error) {
	now := s.now()
	s.mtx.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mtx.RUnlock()
		metrics.ObserveOperation(s.name, op, status.LookupStatusKeyMiss)
		return Entry[V]{}, ErrNotFound
	}
	if s.expired(e, now) {
		s.mtx.RUnlock()
		s.purge(key, e, now)
		metrics.ObserveOperation(s.name, op, status.LookupStatusExpired)
		return Entry[V]{}, ErrNotFound
	}
	la := e.lastActive.Load()
	if touch {
		la = e.lastActive.StoreIfAfter(now)
	}
	out := Entry[V]{
		Key:        key,
		Value:      s.clone(e.value),
		CreatedAt:  e.createdAt,
		LastActive: la,
	}
	s.mtx.RUnlock()
	metrics.ObserveOperation(s.name, op, status.LookupStatusHit)
	return out, nil
}

// Touch marks a live entry as active now and returns true. It returns false
// for absent or expired keys, purging the latter.
func (s *Store[V]) Touch(key string) bool {
	now := s.now()
	s.mtx.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mtx.RUnlock()
		metrics.ObserveOperation(s.name, "touch", status.LookupStatusKeyMiss)
		return false
	}
	if s.expired(e, now) {
		s.mtx.RUnlock()
		s.purge(key, e, now)
		metrics.ObserveOperation(s.name, "touch", status.LookupStatusExpired)
		return false
	}
	// concurrent touches share the read lock
	e.lastActive.StoreIfAfter(now)
	s.mtx.RUnlock()
	metrics.ObserveOperation(s.name, "touch", status.LookupStatusHit)
	return true
}

// Invalidate removes the entry under key and reports whether a live entry existed
func (s *Store[V]) Invalidate(key string) bool {
	nl, err := s.locker.Acquire(key)
	if err != nil {
		return false
	}
	defer nl.Release()

	now := s.now()
	s.mtx.Lock()
	e, ok := s.entries[key]
	live := ok && !s.expired(e, now)
	if ok {
		delete(s.entries, key)
	}
	n := len(s.entries)
	s.mtx.Unlock()

	st := status.LookupStatusOK
	switch {
	case !ok:
		st = status.LookupStatusKeyMiss
	case !live:
		st = status.LookupStatusExpired
		metrics.ObserveEvent(s.name, "expiration", "lazy", 1)
	}
	metrics.ObserveOperation(s.name, "invalidate", st)
	if ok {
		metrics.ObserveSizeChange(s.name, n)
	}
	return live
}

// Len returns the number of live entries
func (s *Store[V]) Len() int {
	now := s.now()
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var n int
	for _, e := range s.entries {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// Close stops the background sweeper and releases all entries
func (s *Store[V]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
		<-s.reaperDone
	}
	s.mtx.Lock()
	s.entries = make(map[string]*entry[V])
	s.mtx.Unlock()
	metrics.ObserveSizeChange(s.name, 0)
	return nil
}

func (s *Store[V]) expired(e *entry[V], now time.Time) bool {
	return now.Sub(e.lastActive.Load()) >= s.options.TTL
}

// purge removes e from the map if it is still the entry stored under key and
// is still expired at now. An entry refreshed after the caller observed it is kept.
func (s *Store[V]) purge(key string, e *entry[V], now time.Time) bool {
	s.mtx.Lock()
	cur, ok := s.entries[key]
	removed := ok && cur == e && s.expired(e, now)
	if removed {
		delete(s.entries, key)
	}
	n := len(s.entries)
	s.mtx.Unlock()
	if removed {
		metrics.ObserveEvent(s.name, "expiration", "lazy", 1)
		metrics.ObserveSizeChange(s.name, n)
	}
	return removed
}
