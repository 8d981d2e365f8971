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
package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	c := NewClock(time.Time{})
	require.True(t, c.Now().Equal(Time2020))

	got := c.Advance(1500 * time.Millisecond)
	require.Equal(t, Time2020.Add(1500*time.Millisecond), got)
	require.Equal(t, got, c.Now())

	c.Set(time.Unix(0, 0))
	require.Equal(t, int64(0), c.Now().Unix())
}
