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
package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	terr "github.com/tasktrack/eks/pkg/errors"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestNewConfig(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Validate())
	require.Equal(t, []string{"cache", "discounts", "lockout", "sessions", "tasks"}, StoreNames())
	require.Equal(t, time.Hour, c.Stores["sessions"].TTL)
	require.Equal(t, 7*24*time.Hour, c.Stores["discounts"].TTL)
	require.Equal(t, 30*time.Minute, c.Stores["lockout"].TTL)
	require.Equal(t, 1000, c.Stores["cache"].MaxSize)
	require.Equal(t, "info", c.Logging.LogLevel)
	require.Equal(t, 8481, c.Metrics.ListenPort)
	require.Equal(t, DefaultPingHandlerPath, c.Main.PingHandlerPath)
}

func TestStoreOptions(t *testing.T) {
	c := NewConfig()
	o := c.StoreOptions("sessions")
	require.NotNil(t, o)
	o.MaxSize = 99
	require.Equal(t, 0, c.Stores["sessions"].MaxSize)
	require.Nil(t, c.StoreOptions("nope"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"unknown store", func(c *Config) { c.Stores["bogus"] = c.StoreOptions("tasks") }, terr.ErrUnknownStoreName},
		{"missing store", func(c *Config) { delete(c.Stores, "tasks") }, terr.ErrMissingStoreConfig},
		{"zero ttl", func(c *Config) { c.Stores["sessions"].TTL = 0 }, terr.ErrInvalidOptions},
		{"unbounded cache", func(c *Config) { c.Stores["cache"].MaxSize = 0 }, terr.ErrInvalidOptions},
		{"short lockout ttl", func(c *Config) { c.Stores["lockout"].TTL = time.Minute }, terr.ErrInvalidOptions},
		{"bad port", func(c *Config) { c.Metrics.ListenPort = 70000 }, terr.ErrInvalidOptions},
		{"nil logging", func(c *Config) { c.Logging = nil }, terr.ErrInvalidOptions},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewConfig()
			test.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, test.err), err.Error())
		})
	}
}

func TestString(t *testing.T) {
	c := NewConfig()
	s := c.String()
	require.True(t, strings.Contains(s, "stores:"))
	require.True(t, strings.Contains(s, "ttl_seconds: 604800"))

	// the printed config loads back to an equivalent config
	c2 := NewConfig()
	require.NoError(t, c2.loadYAMLConfig(s))
	for _, name := range StoreNames() {
		require.True(t, c.Stores[name].Equal(c2.Stores[name]), name)
	}
	var m map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(s), &m))
}
