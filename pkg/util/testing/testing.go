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
// Package testing provides functionality for use when conducting tests
package testing

import (
	"errors"
	"sync"
	"time"
)

// Epoch2020 is the epoch value representing 1 January 2020 00:00:00 UTC
const Epoch2020 int64 = 1577836800

// Time2020 is the Time.Time representing 1 January 2020 00:00:00 UTC
var Time2020 = time.Unix(Epoch2020, 0)

// ErrTest is a Test Error
var ErrTest = errors.New("test error")

// Clock is a manually advanced time source for deterministic expiry tests
type Clock struct {
	mtx sync.Mutex
	t   time.Time
}

// NewClock returns a Clock set to start, or to Time2020 when start is zero
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = Time2020
	}
	return &Clock{t: start}
}

// Now returns the Clock's current time
func (c *Clock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.t
}

// Advance moves the Clock forward by d and returns the new time
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// Set moves the Clock to t
func (c *Clock) Set(t time.Time) {
	c.mtx.Lock()
	c.t = t
	c.mtx.Unlock()
}
