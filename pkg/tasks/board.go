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
// Package tasks tracks Tasks whose status moves through a fixed lifecycle.
// Status changes are conditional writes, so two clients racing to move the
// same Task cannot both succeed.
package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/tasktrack/eks/pkg/observability/logging"
	"github.com/tasktrack/eks/pkg/observability/logging/logger"
	"github.com/tasktrack/eks/pkg/store"
	"github.com/tasktrack/eks/pkg/store/options"

	"github.com/google/uuid"
)

// StoreName is the name of the store backing a Board
const StoreName = "tasks"

// DefaultExpiry is how long a Task may go untouched before it is dropped
const DefaultExpiry = 24 * time.Hour

// Board holds Tasks keyed by ID
type Board struct {
	store *store.Store[Task]
}

// DefaultOptions returns store options with the default Task expiry
func DefaultOptions() *options.Options {
	o := options.New()
	o.TTLSeconds = int(DefaultExpiry / time.Second)
	o.TTL = DefaultExpiry
	return o
}

// New returns a new Board. When o is nil, DefaultOptions are used.
func New(o *options.Options, opts ...store.Option[Task]) (*Board, error) {
	if o == nil {
		o = DefaultOptions()
	}
	s, err := store.New[Task](StoreName, o, opts...)
	if err != nil {
		return nil, err
	}
	return &Board{store: s}, nil
}

// Add validates t and stores it under t.ID, or under a generated id when
// t.ID is empty. It returns the id. Adding a Task with the id of a live
// Task replaces it.
func (b *Board) Add(t Task) (string, error) {
	if err := t.normalize(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return b.store.Create(t.ID, t)
}

// Get returns a copy of the Task, or store.ErrNotFound
func (b *Board) Get(id string) (Task, error) {
	return b.store.Get(id)
}

// Remove deletes the Task and reports whether it existed
func (b *Board) Remove(id string) bool {
	return b.store.Invalidate(id)
}

// Transition moves the Task from status from to status to. It returns
// ErrInvalidTransition when the move is not permitted, store.ErrConflict when
// the Task is no longer in status from, and store.ErrNotFound when the Task
// does not exist.
func (b *Board) Transition(id string, from, to Status) error {
	if !from.Valid() || !to.Valid() || !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	_, err := b.store.UpdateIf(id,
		func(t Task) bool { return t.Status == from },
		func(t Task) Task {
			t.Status = to
			return t
		})
	if errors.Is(err, store.ErrConflict) {
		logger.Debug("task transition lost race",
			logging.Pairs{"taskID": id, "from": from.String(), "to": to.String()})
	}
	return err
}

// SetPriority changes the Task's priority
func (b *Board) SetPriority(id string, p Priority) (Task, error) {
	if !p.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
	return b.store.Update(id, func(t Task) Task {
		t.Priority = p
		return t
	})
}

// Assign sets the user the Task is assigned to. An empty userID unassigns it.
func (b *Board) Assign(id, userID string) (Task, error) {
	return b.store.Update(id, func(t Task) Task {
		t.AssignedTo = userID
		return t
	})
}

// ByStatus returns the sorted ids of Tasks in status s
func (b *Board) ByStatus(s Status) []string {
	return b.Find(Filter{Status: s})
}

// ByOwner returns the sorted ids of Tasks owned by ownerID
func (b *Board) ByOwner(ownerID string) []string {
	return b.Find(Filter{OwnerID: ownerID})
}

// Find returns the sorted ids of Tasks matching f
func (b *Board) Find(f Filter) []string {
	return b.store.KeysMatching(f.Match)
}

// Len returns the number of live Tasks
func (b *Board) Len() int {
	return b.store.Len()
}

// Store returns the store backing the Board
func (b *Board) Store() *store.Store[Task] {
	return b.store
}

// Close stops the Board's background sweeper
func (b *Board) Close() error {
	return b.store.Close()
}
