package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Domain entity: no gin, mongo, postgres or redis in here.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields carries user-supplied task fields. A nil pointer means "not supplied".
type Fields struct {
	Title       *string
	Description *string
	Status      *Status
}

// NewTask builds an unsaved task from create input. Status defaults to pending.
func NewTask(f Fields) Task {
	t := Task{Status: StatusPending}
	return t.Apply(f)
}

// Apply returns a copy of t with the supplied fields replaced and text trimmed.
func (t Task) Apply(f Fields) Task {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	return t
}

// Timestamp precision matches the coarsest backend (Mongo stores milliseconds).
const timestampPrecision = time.Millisecond

// Now truncates t to stored precision in UTC.
func Now(t time.Time) time.Time {
	return t.UTC().Truncate(timestampPrecision)
}

// NextUpdatedAt returns the updatedAt to store after a mutation at now.
// The result is always strictly after prev, even when the clock has not
// advanced past stored precision.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = Now(now)
	if !now.After(prev) {
		return prev.Add(timestampPrecision)
	}
	return now
}
