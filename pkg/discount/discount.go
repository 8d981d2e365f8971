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
// Package discount assigns per-user discounts that lapse after a week and
// maintains a blacklist of users who may not receive one
package discount

import (
	"math"
	"sync"
	"time"

	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/store/options"
	"github.com/tasktrack/eks/pkg/util/sets"
)

// StoreName is the name of the store backing a Manager
const StoreName = "discounts"

const (
	// DefaultExpiry is how long an assigned discount remains valid
	DefaultExpiry = 7 * 24 * time.Hour
	// DefaultBase is the discount assigned when no base is given
	DefaultBase = 0.1
	// EvenDayBonus is added to discounts assigned on even days of the month
	EvenDayBonus = 0.05
)

// Record is a user's assigned discount
type Record struct {
	Discount float64
	Assigned time.Time
}

// Manager assigns and looks up discounts
type Manager struct {
	store *store.Store[Record]
	now   func() time.Time

	mtx         sync.RWMutex
	blacklisted sets.Set[string]
}

// DefaultOptions returns store options with the default discount expiry
func DefaultOptions() *options.Options {
	o := options.New()
	o.TTLSeconds = int(DefaultExpiry / time.Second)
	o.TTL = DefaultExpiry
	return o
}

// New returns a new Manager. When o is nil, DefaultOptions are used; when now
// is nil, time.Now is used.
func New(o *options.Options, now func() time.Time) (*Manager, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if now == nil {
		now = time.Now
	}
	s, err := store.New[Record](StoreName, o, store.WithClock[Record](now))
	if err != nil {
		return nil, err
	}
	return &Manager{
		store:       s,
		now:         now,
		blacklisted: sets.New[string](),
	}, nil
}

// Assign computes and records a discount for userID from base and returns it.
// Blacklisted users always receive 0.
func (m *Manager) Assign(userID string, base float64) (float64, error) {
	// held across the write so a concurrent Blacklist cannot be overtaken
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if m.blacklisted.Contains(userID) {
		return 0, nil
	}
	now := m.now()
	d := Calculate(base, now)
	if err := m.store.Put(userID, Record{Discount: d, Assigned: now}); err != nil {
		return 0, err
	}
	return d, nil
}

// Discount returns userID's current discount, or 0 when none is assigned or
// it has lapsed
func (m *Manager) Discount(userID string) float64 {
	r, err := m.store.Get(userID)
	if err != nil {
		return 0
	}
	return r.Discount
}

// Blacklist prevents userID from receiving discounts and zeroes any discount
// already assigned
func (m *Manager) Blacklist(userID string) {
	m.mtx.Lock()
	m.blacklisted.Add(userID)
	m.mtx.Unlock()
	if _, err := m.store.Update(userID, func(r Record) Record {
		r.Discount = 0
		return r
	}); err == nil {
		logger.Info("discount revoked for blacklisted user",
			logging.Pairs{"userID": userID})
	}
}

// IsBlacklisted returns true if userID has been blacklisted
func (m *Manager) IsBlacklisted(userID string) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.blacklisted.Contains(userID)
}

// Len returns the number of live discounts
func (m *Manager) Len() int {
	return m.store.Len()
}

// Close stops the Manager's background sweeper
func (m *Manager) Close() error {
	return m.store.Close()
}

// Calculate returns base plus EvenDayBonus on even days of the month,
// rounded to two decimal places
func Calculate(base float64, day time.Time) float64 {
	if day.Day()%2 == 0 {
		base += EvenDayBonus
	}
	return math.Round(base*100) / 100
}
