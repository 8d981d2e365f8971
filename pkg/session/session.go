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
// Package session tracks authenticated user sessions that expire after a
// period of inactivity
package session

import (
	"time"

	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/store/options"
	"github.com/tasktrack/eks/pkg/util/copiers"
	"github.com/tasktrack/eks/pkg/util/sets"
)

// StoreName is the name of the store backing the session Manager
const StoreName = "sessions"

// DefaultExpiry is how long a session may sit idle before it expires
const DefaultExpiry = time.Hour

// Session is a user's authenticated session
type Session struct {
	UserID   string
	Metadata map[string]any
	// CreatedAt and LastActive are populated from the store on read
	CreatedAt  time.Time
	LastActive time.Time
}

// Clone returns a copy of the Session. Metadata is copied deeply through
// nested maps and slices; pointers stored in it are shared.
func (s Session) Clone() Session {
	c := s
	c.Metadata = copiers.DeepCopyMap(s.Metadata)
	return c
}

// Manager creates, looks up and expires Sessions
type Manager struct {
	store *store.Store[Session]
}

// DefaultOptions returns store options with the default session expiry
func DefaultOptions() *options.Options {
	o := options.New()
	o.TTLSeconds = int(DefaultExpiry / time.Second)
	o.TTL = DefaultExpiry
	return o
}

// New returns a new Manager. When o is nil, DefaultOptions are used.
func New(o *options.Options, opts ...store.Option[Session]) (*Manager, error) {
	if o == nil {
		o = DefaultOptions()
	}
	s, err := store.New[Session](StoreName, o, opts...)
	if err != nil {
		return nil, err
	}
	return &Manager{store: s}, nil
}

// Create starts a new session for userID and returns its id
func (m *Manager) Create(userID string, metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	id, err := m.store.Create("", Session{UserID: userID, Metadata: metadata})
	if err != nil {
		return "", err
	}
	logger.Debug("session created", logging.Pairs{"userID": userID, "sessionID": id})
	return id, nil
}

// Get returns a copy of the session, or store.ErrNotFound when the session
// is unknown or expired. Get does not extend the session.
func (m *Manager) Get(id string) (Session, error) {
	e, err := m.store.GetEntry(id)
	if err != nil {
		return Session{}, err
	}
	s := e.Value
	s.CreatedAt = e.CreatedAt
	s.LastActive = e.LastActive
	return s, nil
}

// Touch extends the life of a live session and reports whether it was live
func (m *Manager) Touch(id string) bool {
	return m.store.Touch(id)
}

// UpdateMetadata sets metadata[key] = value on a live session and extends it.
// value is copied like the rest of the session's Metadata.
func (m *Manager) UpdateMetadata(id, key string, value any) error {
	_, err := m.store.Update(id, func(s Session) Session {
		if s.Metadata == nil {
			s.Metadata = make(map[string]any)
		}
		s.Metadata[key] = value
		return s
	})
	return err
}

// Invalidate ends a session and reports whether it was live
func (m *Manager) Invalidate(id string) bool {
	return m.store.Invalidate(id)
}

// InvalidateUser ends every live session belonging to userID and returns
// how many were ended
func (m *Manager) InvalidateUser(userID string) int {
	var n int
	for _, id := range m.SessionsForUser(userID) {
		if m.store.Invalidate(id) {
			n++
		}
	}
	if n > 0 {
		logger.Debug("user sessions invalidated",
			logging.Pairs{"userID": userID, "count": n})
	}
	return n
}

// SessionsForUser returns the sorted ids of userID's live sessions
func (m *Manager) SessionsForUser(userID string) []string {
	return m.store.KeysMatching(func(s Session) bool {
		return s.UserID == userID
	})
}

// ActiveUserIDs returns the sorted, distinct user ids holding a live session
func (m *Manager) ActiveUserIDs() []string {
	ids := sets.New[string]()
	for _, e := range m.store.Snapshot() {
		ids.Add(e.Value.UserID)
	}
	return sets.Sorted(ids)
}

// Cleanup removes all expired sessions and returns how many were removed
func (m *Manager) Cleanup() int {
	return m.store.Sweep()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	return m.store.Len()
}

// Store returns the store backing the Manager
func (m *Manager) Store() *store.Store[Session] {
	return m.store
}

// Close stops the Manager's background sweeper
func (m *Manager) Close() error {
	return m.store.Close()
}
