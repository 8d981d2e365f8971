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
package lockout

import (
	"testing"
	"time"

	terr "github.com/tasktrack/eks/pkg/errors"
	tu "github.com/tasktrack/eks/pkg/util/testing"

	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Tracker, *tu.Clock) {
	t.Helper()
	clock := tu.NewClock(time.Time{})
	o := DefaultOptions()
	o.ReapInterval = 0
	tr, err := New(o, clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr, clock
}

func TestNewRejectsTTLShorterThanLock(t *testing.T) {
	o := DefaultOptions()
	o.ReapInterval = 0
	o.TTL = LockDuration - time.Second
	o.TTLSeconds = int(o.TTL / time.Second)
	_, err := New(o, nil)
	require.ErrorIs(t, err, terr.ErrInvalidOptions)

	o.TTL = LockDuration
	tr, err := New(o, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Close())
}

func TestLocksAfterMaxAttempts(t *testing.T) {
	tr, clock := newTestTracker(t)
	for i := 1; i < MaxAttempts; i++ {
		n, locked := tr.RecordFailure("alice")
		require.Equal(t, i, n)
		require.False(t, locked)
		clock.Advance(time.Second)
	}
	n, locked := tr.RecordFailure("alice")
	require.Equal(t, MaxAttempts, n)
	require.True(t, locked)
	require.True(t, tr.Locked("alice"))
	require.False(t, tr.Locked("bob"))

	// failures while locked do not extend the lock
	clock.Advance(LockDuration / 2)
	n, locked = tr.RecordFailure("alice")
	require.Equal(t, MaxAttempts, n)
	require.True(t, locked)

	clock.Advance(LockDuration / 2)
	require.False(t, tr.Locked("alice"))

	// the count restarts after the lock lapses
	n, locked = tr.RecordFailure("alice")
	require.Equal(t, 1, n)
	require.False(t, locked)
}

func TestReset(t *testing.T) {
	tr, _ := newTestTracker(t)
	for i := 0; i < MaxAttempts; i++ {
		tr.RecordFailure("alice")
	}
	require.True(t, tr.Locked("alice"))
	tr.Reset("alice")
	require.False(t, tr.Locked("alice"))
	n, _ := tr.RecordFailure("alice")
	require.Equal(t, 1, n)
}

func TestIdleFailuresLapse(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.RecordFailure("alice")
	tr.RecordFailure("alice")
	clock.Advance(LockDuration)
	n, _ := tr.RecordFailure("alice")
	require.Equal(t, 1, n)
}
