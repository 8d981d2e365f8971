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
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tasktrack/eks/pkg/util/copiers"
	"github.com/tasktrack/eks/pkg/util/sets"
)

// Status is the lifecycle state of a Task
type Status string

const (
	// StatusTodo is a Task that has not been started
	StatusTodo Status = "todo"
	// StatusInProgress is a Task being worked on
	StatusInProgress Status = "in_progress"
	// StatusDone is a completed Task
	StatusDone Status = "done"
	// StatusCancelled is a Task that will not be completed
	StatusCancelled Status = "cancelled"
)

// Priority is the urgency of a Task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// MinTitleLength is the minimum length of a trimmed Task title
const MinTitleLength = 3

var (
	// ErrInvalidTitle is returned when a title is shorter than MinTitleLength
	ErrInvalidTitle = fmt.Errorf("title must be at least %d characters long", MinTitleLength)
	// ErrInvalidStatus is returned for an unknown Status
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority is returned for an unknown Priority
	ErrInvalidPriority = errors.New("invalid task priority")
	// ErrInvalidTransition is returned when a Status change is not permitted
	ErrInvalidTransition = errors.New("invalid task status transition")
)

// transitions lists the permitted status changes
var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusTodo, StatusDone, StatusCancelled},
}

// Valid returns true if s is a known Status
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanTransition returns true if a Task may move from s to to
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// ParseStatus returns the Status named by s
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid returns true if p is a known Priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority returns the Priority named by s
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Task is a unit of work tracked on a Board
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	OwnerID     string
	AssignedTo  string
	Tags        []string
	DueDate     time.Time
}

// Clone returns a copy of the Task with its own Tags slice
func (t Task) Clone() Task {
	c := t
	c.Tags = copiers.CopySlice(t.Tags)
	return c
}

// HasTags returns true if the Task carries every tag in tags
func (t Task) HasTags(tags ...string) bool {
	return sets.New(t.Tags...).ContainsAll(tags...)
}

// normalize trims the title, applies default status and priority and
// parses both, so "In_Progress" is stored as StatusInProgress
func (t *Task) normalize() error {
	t.Title = strings.TrimSpace(t.Title)
	if len(t.Title) < MinTitleLength {
		return ErrInvalidTitle
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	var err error
	if t.Status, err = ParseStatus(string(t.Status)); err != nil {
		return err
	}
	if t.Priority, err = ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	return nil
}

// Filter selects Tasks; zero-valued fields match everything
type Filter struct {
	Status     Status
	Priority   Priority
	OwnerID    string
	AssignedTo string
	Tags       []string
	DueBefore  time.Time
	DueAfter   time.Time
}

// Match returns true if t satisfies every set field of f. A Task must carry
// all of f.Tags.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if len(f.Tags) > 0 && !t.HasTags(f.Tags...) {
		return false
	}
	if !f.DueBefore.IsZero() && (t.DueDate.IsZero() || !t.DueDate.Before(f.DueBefore)) {
		return false
	}
	if !f.DueAfter.IsZero() && (t.DueDate.IsZero() || !t.DueDate.After(f.DueAfter)) {
		return false
	}
	return true
}
