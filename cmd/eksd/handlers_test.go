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
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tasktrack/eks/pkg/config"
	"github.com/tasktrack/eks/pkg/observability/logging"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func newTestServices(t *testing.T) (*config.Config, *services) {
	t.Helper()
	conf := config.NewConfig()
	svc, err := newServices(conf)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return conf, svc
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPingHandler(t *testing.T) {
	conf, svc := newTestServices(t)
	r := newRouter(conf, svc)
	w := get(t, r, "/ping")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
}

func TestStoresHandler(t *testing.T) {
	conf, svc := newTestServices(t)
	_, err := svc.sessions.Create("alice", nil)
	require.NoError(t, err)
	require.NoError(t, svc.cache.Set("k", []byte("v")))

	w := get(t, newRouter(conf, svc), "/stores")
	require.Equal(t, http.StatusOK, w.Code)

	var st []storeStatus
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &st))
	require.Len(t, st, 5)
	byName := make(map[string]storeStatus, len(st))
	for _, s := range st {
		byName[s.Name] = s
	}
	require.Equal(t, 1, byName["sessions"].Entries)
	require.Equal(t, 3600, byName["sessions"].TTLSeconds)
	require.Equal(t, 1, byName["cache"].Entries)
	require.Equal(t, 1000, byName["cache"].MaxSize)
	require.Equal(t, 0, byName["tasks"].Entries)
}

func TestServicesCacheCopiesValues(t *testing.T) {
	_, svc := newTestServices(t)
	in := []byte("abc")
	require.NoError(t, svc.cache.Set("k", in))
	in[0] = 'X'

	got, err := svc.cache.Get(context.Background(), "k")
	require.NoError(t, err)
	got[1] = 'Y'

	got, err = svc.cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestMetricsHandler(t *testing.T) {
	conf, svc := newTestServices(t)
	w := get(t, newRouter(conf, svc), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "eks_store_usage_objects")
}

func TestServe(t *testing.T) {
	conf, svc := newTestServices(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, l, newRouter(conf, svc), logging.NoopLogger())
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + l.Addr().String() + "/ping")
		return err == nil
	}, time.Second, 10*time.Millisecond)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, "pong", string(b))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	conf := config.NewConfig()
	conf.Metrics.ListenAddress = "127.0.0.1"
	conf.Metrics.ListenPort = 0
	conf.Logging.LogLevel = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, run(ctx, conf))
}
