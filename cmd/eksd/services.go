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
package main

import (
	"errors"
	"fmt"

	"github.com/tasktrack/eks/pkg/cache"
	"github.com/tasktrack/eks/pkg/config"
	"github.com/tasktrack/eks/pkg/discount"
	"github.com/tasktrack/eks/pkg/lockout"
	"github.com/tasktrack/eks/pkg/session"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/tasks"
	"github.com/tasktrack/eks/pkg/util/copiers"
)

// services holds the store-backed layers hosted by the daemon
type services struct {
	sessions  *session.Manager
	board     *tasks.Board
	cache     *cache.Cache[[]byte]
	discounts *discount.Manager
	lockout   *lockout.Tracker
	conf      *config.Config
}

// storeStatus describes the live state of one store
type storeStatus struct {
	Name       string `yaml:"name"`
	Entries    int    `yaml:"entries"`
	MaxSize    int    `yaml:"max_size"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

func newServices(conf *config.Config) (*services, error) {
	s := &services{conf: conf}
	var err error
	if s.sessions, err = session.New(conf.StoreOptions(session.StoreName)); err != nil {
		return nil, s.fail(err)
	}
	if s.board, err = tasks.New(conf.StoreOptions(tasks.StoreName)); err != nil {
		return nil, s.fail(err)
	}
	if s.cache, err = cache.New[[]byte](cache.StoreName,
		conf.StoreOptions(cache.StoreName), nil,
		store.WithCloner[[]byte](copiers.CopySlice[byte])); err != nil {
		return nil, s.fail(err)
	}
	if s.discounts, err = discount.New(conf.StoreOptions(discount.StoreName), nil); err != nil {
		return nil, s.fail(err)
	}
	if s.lockout, err = lockout.New(conf.StoreOptions(lockout.StoreName), nil); err != nil {
		return nil, s.fail(err)
	}
	return s, nil
}

// fail closes whatever was built before err occurred
func (s *services) fail(err error) error {
	return fmt.Errorf("could not start stores: %w", errors.Join(err, s.Close()))
}

// statuses returns the state of every store, ordered by name
func (s *services) statuses() []storeStatus {
	lens := map[string]func() int{
		session.StoreName:  s.sessions.Len,
		tasks.StoreName:    s.board.Len,
		cache.StoreName:    s.cache.Len,
		discount.StoreName: s.discounts.Len,
		lockout.StoreName:  s.lockout.Len,
	}
	out := make([]storeStatus, 0, len(lens))
	for _, name := range config.StoreNames() {
		f, ok := lens[name]
		if !ok {
			continue
		}
		st := storeStatus{Name: name, Entries: f()}
		if o := s.conf.StoreOptions(name); o != nil {
			st.MaxSize = o.MaxSize
			st.TTLSeconds = int(o.TTL.Seconds())
		}
		out = append(out, st)
	}
	return out
}

// Close stops every store's background sweeper
func (s *services) Close() error {
	var errs []error
	if s.sessions != nil {
		errs = append(errs, s.sessions.Close())
	}
	if s.board != nil {
		errs = append(errs, s.board.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.discounts != nil {
		errs = append(errs, s.discounts.Close())
	}
	if s.lockout != nil {
		errs = append(errs, s.lockout.Close())
	}
	return errors.Join(errs...)
}
