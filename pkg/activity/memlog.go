package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemLog is an in-memory Log. It is the default when no database is configured.
type MemLog struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemLog creates an empty MemLog.
func NewMemLog() *MemLog {
	return &MemLog{}
}

// EnsureTable is a no-op for the in-memory log.
func (l *MemLog) EnsureTable(context.Context) error { return nil }

// Append creates and stores a new event, extending the hash chain.
func (l *MemLog) Append(_ context.Context, eventType string, taskID int, content map[string]any) (*Event, error) {
	if content == nil {
		content = map[string]any{}
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var prevHash string
	if n := len(l.events); n > 0 {
		prevHash = l.events[n-1].Hash
	}
	e := Event{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      eventType,
		Timestamp: time.Now().Truncate(time.Microsecond),
		TaskID:    taskID,
		Content:   content,
		PrevHash:  prevHash,
	}
	e.Hash = computeHash(prevHash, e.ID, e.Type, e.TaskID, e.Timestamp, contentJSON)
	l.events = append(l.events, e)
	return &e, nil
}

// Recent returns up to limit events, newest first.
func (l *MemLog) Recent(_ context.Context, limit int) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []Event{}
	for i := len(l.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.events[i])
	}
	return out, nil
}

// Since returns up to limit events after afterID, oldest first. An unknown
// afterID yields no events.
func (l *MemLog) Since(_ context.Context, afterID string, limit int) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []Event{}
	start := -1
	for i, e := range l.events {
		if e.ID == afterID {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return out, nil
	}
	for _, e := range l.events[start:] {
		if len(out) >= limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns the number of events.
func (l *MemLog) Count(context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events), nil
}

// VerifyChain walks the log in order and checks every link and hash.
func (l *MemLog) VerifyChain(context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	prevHash := ""
	for i, e := range l.events {
		if err := verifyEvent(i, e, prevHash); err != nil {
			return err
		}
		prevHash = e.Hash
	}
	return nil
}

func verifyEvent(i int, e Event, prevHash string) error {
	if e.PrevHash != prevHash {
		return fmt.Errorf("event %d (%s): prev_hash mismatch: got %s, want %s: %w", i, e.ID, e.PrevHash, prevHash, ErrChainBroken)
	}
	contentJSON, err := json.Marshal(e.Content)
	if err != nil {
		return fmt.Errorf("event %d (%s): marshal content: %w", i, e.ID, err)
	}
	if want := computeHash(prevHash, e.ID, e.Type, e.TaskID, e.Timestamp, contentJSON); e.Hash != want {
		return fmt.Errorf("event %d (%s): hash mismatch: got %s, want %s: %w", i, e.ID, e.Hash, want, ErrChainBroken)
	}
	return nil
}
