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
// Package locks provides named locks. A named lock exists only while at least
// one goroutine holds or is waiting on it, so an unbounded key space does not
// leak mutexes.
package locks

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// NamedLocker provides a locker for handling Named Locks
type NamedLocker interface {
	Acquire(string) (NamedLock, error)
	// Len returns the number of named locks currently held or awaited
	Len() int
}

type namedLocker struct {
	locks   map[string]*namedLock
	mapLock sync.RWMutex
}

// NewNamedLocker returns a new Named Locker
func NewNamedLocker() NamedLocker {
	return &namedLocker{
		locks: make(map[string]*namedLock),
	}
}

// NamedLock defines the interface for implementing Named Locks
type NamedLock interface {
	Release() error
}

func newNamedLock(name string, locker *namedLocker) *namedLock {
	return &namedLock{
		name:   name,
		locker: locker,
	}
}

type namedLock struct {
	sync.Mutex
	name      string
	queueSize atomic.Int32
	locker    *namedLocker
}

// Release releases the lock on the subject Named Lock
func (nl *namedLock) Release() error {
	if nl.name == "" || nl.locker == nil {
		return errInvalidLockName(nl.name)
	}
	qs := nl.queueSize.Add(-1)
	if qs == 0 {
		nl.locker.mapLock.Lock()
		// recheck queue size after getting the lock since another client
		// might have joined since the map lock was acquired
		if nl.queueSize.Load() == 0 {
			delete(nl.locker.locks, nl.name)
		}
		nl.locker.mapLock.Unlock()
	}
	nl.Unlock()
	return nil
}

// Acquire locks the named lock, and blocks until the lock is acquired
func (lk *namedLocker) Acquire(lockName string) (NamedLock, error) {
	if lockName == "" {
		return nil, errInvalidLockName(lockName)
	}
	lk.mapLock.RLock()
	nl, ok := lk.locks[lockName]
	if ok {
		nl.queueSize.Add(1)
		lk.mapLock.RUnlock()
	} else {
		lk.mapLock.RUnlock()
		lk.mapLock.Lock()
		// check again in case another goroutine created it first
		nl, ok = lk.locks[lockName]
		if !ok {
			nl = newNamedLock(lockName, lk)
			lk.locks[lockName] = nl
		}
		nl.queueSize.Add(1)
		lk.mapLock.Unlock()
	}

	nl.Lock()
	return nl, nil
}

func (lk *namedLocker) Len() int {
	lk.mapLock.RLock()
	defer lk.mapLock.RUnlock()
	return len(lk.locks)
}

func errInvalidLockName(name string) error {
	return fmt.Errorf("invalid lock name: %s", name)
}
