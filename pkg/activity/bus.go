package activity

import (
	"context"
	"slices"
	"sync"
)

// Filter selects the events a subscriber receives. The zero Filter
// matches everything.
type Filter struct {
	Types  []string // event types to keep; empty keeps all
	TaskID int      // task to follow; 0 follows every task
}

// Match reports whether e passes the filter.
func (f Filter) Match(e *Event) bool {
	if f.TaskID != 0 && e.TaskID != f.TaskID {
		return false
	}
	return len(f.Types) == 0 || slices.Contains(f.Types, e.Type)
}

// Bus wraps a Log and pushes every appended event to the subscribers
// whose filter it matches.
type Bus struct {
	Log
	mu   sync.RWMutex
	subs map[chan *Event]Filter
}

// NewBus creates a Bus over log.
func NewBus(log Log) *Bus {
	return &Bus{
		Log:  log,
		subs: make(map[chan *Event]Filter),
	}
}

// Append writes through to the log, then notifies matching subscribers.
// A subscriber whose buffer is full misses the event.
func (b *Bus) Append(ctx context.Context, eventType string, taskID int, content map[string]any) (*Event, error) {
	e, err := b.Log.Append(ctx, eventType, taskID, content)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, f := range b.subs {
		if !f.Match(e) {
			continue
		}
		select {
		case ch <- e:
		default:
		}
	}
	return e, nil
}

// Subscribe registers a subscriber for events matching f and returns its
// buffered channel.
func (b *Bus) Subscribe(f Filter) chan *Event {
	ch := make(chan *Event, 64)
	b.mu.Lock()
	b.subs[ch] = f
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan *Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Subscribers returns the number of live subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
