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
// Package cache provides a size-bounded, read-through cache over an
// expiring keyed store
package cache

import (
	"context"
	"errors"
	"fmt"

	terr "github.com/tasktrack/eks/pkg/errors"
	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/store/metrics"
	"github.com/tasktrack/eks/pkg/store/options"

	"golang.org/x/sync/singleflight"
)

// StoreName is the default name of the store backing a Cache
const StoreName = "cache"

// DefaultMaxSize is the default bound on cached entries
const DefaultMaxSize = 1000

// ErrKNF represents the error "key not found in cache"
var ErrKNF = errors.New("key not found in cache")

// Loader fetches the value for key from the backing source on a cache miss
type Loader[V any] func(ctx context.Context, key string) (V, error)

// Cache is a bounded cache of values of type V. Misses are filled by the
// Loader; concurrent misses for the same key share a single load.
type Cache[V any] struct {
	store *store.Store[V]
	load  Loader[V]
	// sf prevents multiple goroutines from loading the same key simultaneously
	sf singleflight.Group
}

// DefaultOptions returns store options bounded to DefaultMaxSize entries
func DefaultOptions() *options.Options {
	o := options.New()
	o.MaxSize = DefaultMaxSize
	return o
}

// New returns a new Cache. o.MaxSize must be greater than zero. load may be
// nil, in which case the Cache only returns what was Set.
func New[V any](name string, o *options.Options, load Loader[V],
	opts ...store.Option[V]) (*Cache[V], error) {
	if o == nil || o.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: cache %s requires max_size greater than zero",
			terr.ErrInvalidOptions, name)
	}
	s, err := store.New[V](name, o, opts...)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{store: s, load: load}, nil
}

// Get returns the value cached under key, loading and caching it on a miss.
// A hit marks the entry as recently used. It returns ErrKNF on a miss when
// the Cache has no Loader.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, error) {
	v, err := c.store.Access(key)
	if err == nil {
		return v, nil
	}
	var zero V
	if c.load == nil {
		return zero, ErrKNF
	}
	val, err, shared := c.sf.Do(key, func() (any, error) {
		// a previous flight may have filled the key
		if v, err := c.store.Access(key); err == nil {
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := c.load(ctx, key)
		if err != nil {
			metrics.ObserveEvent(c.store.Name(), "load", "error", 1)
			logger.Debug("cache load failed",
				logging.Pairs{"storeName": c.store.Name(), "key": key, "detail": err.Error()})
			return zero, err
		}
		if err := c.store.Put(key, v); err != nil {
			return zero, err
		}
		metrics.ObserveEvent(c.store.Name(), "load", "ok", 1)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, _ = val.(V)
	if shared {
		// every caller of a shared flight gets its own copy
		v = c.store.CloneValue(v)
	}
	return v, nil
}

// Set caches value under key, evicting the least-recently-active entry
// when the Cache is full
func (c *Cache[V]) Set(key string, value V) error {
	return c.store.Put(key, value)
}

// Remove drops key from the Cache and reports whether it was cached
func (c *Cache[V]) Remove(key string) bool {
	c.sf.Forget(key)
	return c.store.Invalidate(key)
}

// Len returns the number of live cached entries
func (c *Cache[V]) Len() int {
	return c.store.Len()
}

// Store returns the store backing the Cache
func (c *Cache[V]) Store() *store.Store[V] {
	return c.store
}

// Close stops the Cache's background sweeper
func (c *Cache[V]) Close() error {
	return c.store.Close()
}
