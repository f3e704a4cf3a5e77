// Package activity keeps a hash-chained, append-only log of changes made to
// the board, with an in-process bus for live subscribers.
package activity

import (
	"context"
	"errors"
	"time"
)

// Event types appended by the task recorder.
const (
	TaskSeeded      = "task.seeded"
	TaskCreated     = "task.created"
	TaskUpdated     = "task.updated"
	TaskCompleted   = "task.completed"
	TaskReactivated = "task.reactivated"
	TaskDeleted     = "task.deleted"
)

// Event is a single entry in the activity log.
type Event struct {
	ID        string         `json:"id"`        // UUID v7 (time-ordered)
	Type      string         `json:"type"`      // e.g. "task.completed"
	Timestamp time.Time      `json:"timestamp"` // when the change happened
	TaskID    int            `json:"task_id"`
	Content   map[string]any `json:"content"`
	Hash      string         `json:"hash"`      // SHA-256 of canonical form
	PrevHash  string         `json:"prev_hash"` // hash chain link
}

// ErrChainBroken is returned by VerifyChain when a link or hash does not match.
var ErrChainBroken = errors.New("activity chain broken")

// Appender records events.
type Appender interface {
	Append(ctx context.Context, eventType string, taskID int, content map[string]any) (*Event, error)
}

// Log is the contract for activity persistence.
type Log interface {
	Appender
	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
	// Since returns up to limit events appended after afterID, oldest first.
	Since(ctx context.Context, afterID string, limit int) ([]Event, error)
	Count(ctx context.Context) (int, error)
	VerifyChain(ctx context.Context) error
	EnsureTable(ctx context.Context) error
}
