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
package atomicx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTime(t *testing.T) {
	ts := time.Unix(0, 0)
	at := NewTime(ts)
	require.True(t, ts.Equal(at.Load()), "expected %v, got %v", ts, at.Load())
	// update the time and make sure it updates
	ts = time.Now()
	at.Store(ts)
	require.True(t, ts.Equal(at.Load()), "expected %v, got %v", ts, at.Load())
	// start from empty value
	at = &Time{}
	require.True(t, at.Load().Equal(time.Unix(0, 0)))
	ts = time.Unix(1, 23)
	at.Store(ts)
	require.True(t, ts.Equal(at.Load()), "expected %v, got %v", ts, at.Load())
}

func TestStoreIfAfter(t *testing.T) {
	base := time.Unix(100, 0)
	at := NewTime(base)

	got := at.StoreIfAfter(base.Add(-time.Second))
	require.True(t, got.Equal(base))
	require.True(t, at.Load().Equal(base))

	later := base.Add(time.Second)
	got = at.StoreIfAfter(later)
	require.True(t, got.Equal(later))
	require.True(t, at.Load().Equal(later))

	t.Run("concurrent", func(t *testing.T) {
		at := NewTime(base)
		var wg sync.WaitGroup
		for i := 1; i <= 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				at.StoreIfAfter(base.Add(time.Duration(i) * time.Millisecond))
			}(i)
		}
		wg.Wait()
		require.True(t, at.Load().Equal(base.Add(100*time.Millisecond)), "got %v", at.Load())
	})
}
