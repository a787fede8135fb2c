package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfirmationRequired rejects a client approval whose explicit
	// final-confirmation flag was not set.
	ErrConfirmationRequired = errors.New("client approval requires explicit final confirmation")

	// ErrEmptyNote rejects a revision entry whose note trims to nothing.
	ErrEmptyNote = errors.New("revision note must not be empty")

	// ErrNoEntries rejects a revision request compiled from a session that
	// holds no entries.
	ErrNoEntries = errors.New("cannot request revisions without at least one entry")
)

// InvalidTransitionError reports a (status, decision) pair outside the
// workflow transition table. The pair is never silently coerced.
type InvalidTransitionError struct {
	Status   TaskStatus
	Decision Decision
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: decision %q is not defined from status %q", e.Decision, e.Status)
}

// NotAuthorizedError reports an action attempted by a role that does not
// currently hold the task.
type NotAuthorizedError struct {
	Role     Role
	Required Role
	Action   string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("role %q may not %s: task is held by %q", e.Role, e.Action, e.Required)
}

// TaskNotReviewableError reports an attempt to open a review session on a
// task outside the reviewable statuses.
type TaskNotReviewableError struct {
	Status TaskStatus
}

func (e *TaskNotReviewableError) Error() string {
	return fmt.Sprintf("task is not reviewable in status %q", e.Status)
}

// SessionAlreadyOpenError reports a second session opened on a task that
// already has one in progress.
type SessionAlreadyOpenError struct {
	TaskID string
}

func (e *SessionAlreadyOpenError) Error() string {
	return fmt.Sprintf("a review session is already open for task %s", e.TaskID)
}

// SessionNotTerminalError reports a close attempt on a session that has not
// reached a terminal state. Open sessions cannot be discarded silently.
type SessionNotTerminalError struct {
	State string
}

func (e *SessionNotTerminalError) Error() string {
	return fmt.Sprintf("session in state %q is not terminal; approve, request revisions, or abandon it first", e.State)
}

// SessionNotOpenError reports a capture or terminal action on a session that
// is no longer open.
type SessionNotOpenError struct {
	State string
}

func (e *SessionNotOpenError) Error() string {
	return fmt.Sprintf("session is %q, not open", e.State)
}

// StaleTaskError reports an optimistic-concurrency conflict: the stored
// revision cycle advanced after the transition was computed. The caller must
// re-read the task and retry the whole transition.
type StaleTaskError struct {
	TaskID string
}

func (e *StaleTaskError) Error() string {
	return fmt.Sprintf("task %s changed since the transition was computed", e.TaskID)
}
