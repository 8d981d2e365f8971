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
// Package lockout counts failed logins per account and locks accounts that
// fail too often
package lockout

import (
	"fmt"
	"time"

	terr "github.com/tasktrack/eks/pkg/errors"
	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/store/options"
)

// StoreName is the name of the store backing a Tracker
const StoreName = "lockout"

const (
	// MaxAttempts is the number of consecutive failures that locks an account
	MaxAttempts = 5
	// LockDuration is how long a locked account stays locked
	LockDuration = 30 * time.Minute
)

// Record is an account's failure history
type Record struct {
	Attempts    int
	LockedUntil time.Time
}

// Tracker records failed logins
type Tracker struct {
	store *store.Store[Record]
	now   func() time.Time
}

// DefaultOptions returns store options whose expiry outlasts a lock, so
// idle failure counts lapse after LockDuration
func DefaultOptions() *options.Options {
	o := options.New()
	o.TTLSeconds = int(LockDuration / time.Second)
	o.TTL = LockDuration
	return o
}

// ValidateOptions returns an error when o would let a record expire before
// its lock ends
func ValidateOptions(o *options.Options) error {
	if o.TTL < LockDuration {
		return fmt.Errorf("%w: store %s ttl %s is shorter than the lock duration %s",
			terr.ErrInvalidOptions, StoreName, o.TTL, LockDuration)
	}
	return nil
}

// New returns a new Tracker. When o is nil, DefaultOptions are used; when now
// is nil, time.Now is used.
func New(o *options.Options, now func() time.Time) (*Tracker, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := ValidateOptions(o); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	s, err := store.New[Record](StoreName, o, store.WithClock[Record](now))
	if err != nil {
		return nil, err
	}
	return &Tracker{store: s, now: now}, nil
}

// RecordFailure counts a failed login for user and returns the running
// count and whether the account is now locked. Failures while locked do not
// extend the lock; the count restarts once a lock has lapsed.
func (t *Tracker) RecordFailure(user string) (int, bool) {
	now := t.now()
	r, err := t.store.Upsert(user, func(r Record, found bool) Record {
		if !found {
			r = Record{}
		}
		if r.locked(now) {
			return r
		}
		if !r.LockedUntil.IsZero() {
			r = Record{}
		}
		r.Attempts++
		if r.Attempts >= MaxAttempts {
			r.LockedUntil = now.Add(LockDuration)
		}
		return r
	})
	if err != nil {
		return 0, false
	}
	locked := r.locked(now)
	if locked && r.Attempts == MaxAttempts {
		logger.Warn("account locked after repeated login failures",
			logging.Pairs{"user": user, "attempts": r.Attempts,
				"lockedUntil": r.LockedUntil.Format(time.RFC3339)})
	}
	return r.Attempts, locked
}

// Locked returns true if user is currently locked out
func (t *Tracker) Locked(user string) bool {
	r, err := t.store.Get(user)
	if err != nil {
		return false
	}
	return r.locked(t.now())
}

// Reset clears user's failure history, e.g. after a successful login
func (t *Tracker) Reset(user string) {
	t.store.Invalidate(user)
}

// Len returns the number of live tracked accounts
func (t *Tracker) Len() int {
	return t.store.Len()
}

// Close stops the Tracker's background sweeper
func (t *Tracker) Close() error {
	return t.store.Close()
}

func (r Record) locked(now time.Time) bool {
	return now.Before(r.LockedUntil)
}
