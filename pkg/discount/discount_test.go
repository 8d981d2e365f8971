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
package discount

import (
	"testing"
	"time"

	tu "github.com/tasktrack/eks/pkg/util/testing"

	"github.com/stretchr/testify/require"
)

// the clock starts on an odd day of the month
func newTestManager(t *testing.T) (*Manager, *tu.Clock) {
	t.Helper()
	clock := tu.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	o := DefaultOptions()
	o.ReapInterval = 0
	m, err := New(o, clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, clock
}

func TestCalculate(t *testing.T) {
	odd := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	even := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 0.1, Calculate(0.1, odd))
	require.Equal(t, 0.15, Calculate(0.1, even))
	require.Equal(t, 0.12, Calculate(0.123, odd))
	require.Equal(t, 0.17, Calculate(0.123, even))
}

func TestAssignAndExpire(t *testing.T) {
	m, clock := newTestManager(t)
	require.Equal(t, 0.0, m.Discount("u1"))

	d, err := m.Assign("u1", DefaultBase)
	require.NoError(t, err)
	require.Equal(t, 0.1, d)
	require.Equal(t, 0.1, m.Discount("u1"))

	clock.Advance(DefaultExpiry - time.Second)
	require.Equal(t, 0.1, m.Discount("u1"))
	clock.Advance(time.Second)
	require.Equal(t, 0.0, m.Discount("u1"))

	// now on an even day
	d, err = m.Assign("u1", 0.2)
	require.NoError(t, err)
	require.Equal(t, 0.25, d)
}

func TestBlacklist(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Assign("u1", 0.3)
	require.NoError(t, err)
	require.False(t, m.IsBlacklisted("u1"))

	m.Blacklist("u1")
	require.True(t, m.IsBlacklisted("u1"))
	require.Equal(t, 0.0, m.Discount("u1"))

	d, err := m.Assign("u1", 0.3)
	require.NoError(t, err)
	require.Equal(t, 0.0, d)

	m.Blacklist("u2")
	require.True(t, m.IsBlacklisted("u2"))
	require.Equal(t, 0.0, m.Discount("u2"))
}
