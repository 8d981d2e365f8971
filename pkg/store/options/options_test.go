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
package options

import (
	"errors"
	"testing"
	"time"

	terr "github.com/tasktrack/eks/pkg/errors"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestNew(t *testing.T) {
	o := New()
	require.Equal(t, time.Hour, o.TTL)
	require.Equal(t, 0, o.MaxSize)
	require.Equal(t, 3*time.Second, o.ReapInterval)
	require.NoError(t, o.Validate())
}

func TestClone(t *testing.T) {
	o := New()
	o.MaxSize = 20
	o2 := o.Clone()
	require.True(t, o.Equal(o2))
	o2.MaxSize = 21
	require.False(t, o.Equal(o2))
	require.False(t, o.Equal(nil))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero ttl", func(o *Options) { o.TTL = 0 }, true},
		{"negative ttl", func(o *Options) { o.TTL = -time.Second }, true},
		{"negative max size", func(o *Options) { o.MaxSize = -1 }, true},
		{"bounded", func(o *Options) { o.MaxSize = 2 }, false},
		{"negative reap interval", func(o *Options) { o.ReapInterval = -time.Millisecond }, true},
		{"no reaper", func(o *Options) { o.ReapInterval = 0 }, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o := New()
			test.mutate(o)
			err := o.Validate()
			if !test.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, terr.ErrInvalidOptions))
		})
	}
}

func TestUnmarshalYAML(t *testing.T) {
	o := &Options{}
	err := yaml.Unmarshal([]byte("ttl_seconds: 30\nmax_size: 500\n"), o)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, o.TTL)
	require.Equal(t, 500, o.MaxSize)
	// unset values keep their defaults
	require.Equal(t, DefaultReapIntervalMS, o.ReapIntervalMS)
	require.Equal(t, 3*time.Second, o.ReapInterval)

	o = &Options{}
	err = yaml.Unmarshal([]byte("ttl_seconds: -5\n"), o)
	require.NoError(t, err)
	require.Error(t, o.Validate())
}
