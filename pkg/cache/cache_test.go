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
package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	terr "github.com/tasktrack/eks/pkg/errors"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/store/options"
	"github.com/tasktrack/eks/pkg/util/copiers"
	tu "github.com/tasktrack/eks/pkg/util/testing"

	"github.com/stretchr/testify/require"
)

func testOptions(maxSize int) *options.Options {
	o := options.New()
	o.MaxSize = maxSize
	o.ReapInterval = 0
	return o
}

func TestNewRequiresMaxSize(t *testing.T) {
	_, err := New[string]("c", nil, nil)
	require.True(t, errors.Is(err, terr.ErrInvalidOptions))
	_, err = New[string]("c", testOptions(0), nil)
	require.True(t, errors.Is(err, terr.ErrInvalidOptions))

	o := testOptions(2)
	o.TTL = 0
	_, err = New[string]("c", o, nil)
	require.True(t, errors.Is(err, terr.ErrInvalidOptions))
}

func TestGetWithoutLoader(t *testing.T) {
	c, err := New[string](t.Name(), testOptions(2), nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrKNF)

	require.NoError(t, c.Set("k", "v"))
	v, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	require.True(t, c.Remove("k"))
	require.False(t, c.Remove("k"))
	require.Equal(t, 0, c.Len())
}

func TestReadThrough(t *testing.T) {
	var loads atomic.Int32
	load := func(_ context.Context, key string) (string, error) {
		loads.Add(1)
		if key == "bad" {
			return "", tu.ErrTest
		}
		return "value-" + key, nil
	}
	c, err := New[string](t.Name(), testOptions(2), load)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, "value-a", v)
	v, err = c.Get(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, "value-a", v)
	require.Equal(t, int32(1), loads.Load())

	_, err = c.Get(context.Background(), "bad")
	require.ErrorIs(t, err, tu.ErrTest)
	require.Equal(t, 1, c.Len())
}

func TestBoundedEviction(t *testing.T) {
	load := func(_ context.Context, key string) (int, error) { return len(key), nil }
	c, err := New[int](t.Name(), testOptions(2), load)
	require.NoError(t, err)
	defer c.Close()

	for _, k := range []string{"a", "bb", "ccc"} {
		_, err := c.Get(context.Background(), k)
		require.NoError(t, err)
	}
	require.Equal(t, 2, c.Len())
	require.Equal(t, []string{"bb", "ccc"}, c.Store().KeysMatching(nil))
}

func TestHitRefreshesRecency(t *testing.T) {
	clock := tu.NewClock(time.Time{})
	c, err := New[string](t.Name(), testOptions(2), nil,
		store.WithClock[string](clock.Now))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set("a", "1"))
	clock.Advance(time.Second)
	require.NoError(t, c.Set("b", "2"))
	clock.Advance(time.Second)
	_, err = c.Get(ctx, "a")
	require.NoError(t, err)
	clock.Advance(time.Second)
	require.NoError(t, c.Set("c", "3"))

	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, ErrKNF)
	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", v)
	require.Equal(t, []string{"a", "c"}, c.Store().KeysMatching(nil))
}

func TestByteSliceValuesAreCopied(t *testing.T) {
	load := func(_ context.Context, key string) ([]byte, error) {
		return []byte("loaded-" + key), nil
	}
	c, err := New[[]byte](t.Name(), testOptions(4), load,
		store.WithCloner[[]byte](copiers.CopySlice[byte]))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, c.Set("k", in))
	in[0] = 'X'
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'Y'
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))

	// loaded values are copied the same way
	got, err = c.Get(ctx, "l")
	require.NoError(t, err)
	got[0] = 'Z'
	got, err = c.Get(ctx, "l")
	require.NoError(t, err)
	require.Equal(t, "loaded-l", string(got))
}

func TestSharedLoadResultsAreCopied(t *testing.T) {
	release := make(chan struct{})
	load := func(_ context.Context, key string) ([]byte, error) {
		<-release
		return []byte("shared"), nil
	}
	c, err := New[[]byte](t.Name(), testOptions(4), load,
		store.WithCloner[[]byte](copiers.CopySlice[byte]))
	require.NoError(t, err)
	defer c.Close()

	const n = 8
	results := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k")
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, v := range results {
		v[0] = byte('0' + i)
	}
	for i, v := range results {
		require.Equal(t, byte('0'+i), v[0])
		require.Equal(t, "hared", string(v[1:]))
	}
	got, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "shared", string(got))
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	load := func(_ context.Context, key string) (string, error) {
		loads.Add(1)
		<-release
		return "v", nil
	}
	c, err := New[string](t.Name(), testOptions(10), load)
	require.NoError(t, err)
	defer c.Close()

	const n = 20
	var wg sync.WaitGroup
	var started sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			v, err := c.Get(context.Background(), "k")
			require.NoError(t, err)
			require.Equal(t, "v", v)
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	require.Equal(t, int32(1), loads.Load())
}

func TestCanceledContext(t *testing.T) {
	load := func(ctx context.Context, key string) (string, error) {
		return "v", nil
	}
	c, err := New[string](t.Name(), testOptions(2), load)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}
