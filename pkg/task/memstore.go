package task

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is the process-local task store. State lives only as long as
// the value does. All operations serialize on a single mutex.
type MemStore struct {
	mu     sync.Mutex
	tasks  []Task
	nextID int
}

// NewMemStore creates a MemStore holding the given tasks in order.
// Tasks with a zero ID are numbered after the highest explicit ID.
func NewMemStore(seed ...Task) (*MemStore, error) {
	s := &MemStore{nextID: 1}
	seen := make(map[int]bool, len(seed))
	for _, t := range seed {
		if t.ID == 0 {
			continue
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("seed task %d: %w", t.ID, ErrDuplicateID)
		}
		seen[t.ID] = true
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	for _, t := range seed {
		if t.ID == 0 {
			t.ID = s.nextID
			s.nextID++
		}
		s.tasks = append(s.tasks, t)
	}
	return s, nil
}

// Initialize inserts the "Initial Setup" task with id 1 when the store is
// empty. Later creates still draw from the counter, which never drops below 2
// once the seed exists.
func (s *MemStore) Initialize(_ context.Context) (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) > 0 {
		return Task{}, false, nil
	}
	t := Task{
		ID:          1,
		Title:       SeedTitle,
		Description: SeedDescription,
		Persona:     SeedPersona,
		Group:       1,
	}
	s.tasks = append(s.tasks, t)
	if s.nextID < 2 {
		s.nextID = 2
	}
	return t, true, nil
}

// All returns every task in store order.
func (s *MemStore) All(_ context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(Task) bool { return true }), nil
}

// Active returns the incomplete tasks of the lowest incomplete group.
// It is empty when nothing is left to do.
func (s *MemStore) Active(_ context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := ActiveGroup(s.tasks)
	if !ok {
		return []Task{}, nil
	}
	return s.filterLocked(func(t Task) bool { return !t.Completed && t.Group == group }), nil
}

// Completed returns every completed task.
func (s *MemStore) Completed(_ context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(func(t Task) bool { return t.Completed }), nil
}

// Count returns the number of tasks.
func (s *MemStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks), nil
}

// CompleteByID marks the task with the given id completed and applies the
// group advancement rule.
func (s *MemStore) CompleteByID(_ context.Context, id int) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked(s.indexLocked(func(t Task) bool { return t.ID == id })), nil
}

// CompleteByTitle is CompleteByID keyed on an exact title match. The first
// task in store order wins when titles repeat.
func (s *MemStore) CompleteByTitle(_ context.Context, title string) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked(s.indexLocked(func(t Task) bool { return t.Title == title })), nil
}

// Create appends a new incomplete task.
func (s *MemStore) Create(_ context.Context, nt NewTask) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(nt), nil
}

// Update merges p over the task with the given id. The id itself never changes.
func (s *MemStore) Update(_ context.Context, id int, p Patch) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(func(t Task) bool { return t.ID == id })
	if i < 0 {
		return NotFound, nil
	}
	p.apply(&s.tasks[i])
	return Applied, nil
}

// Delete removes the task with the given id.
func (s *MemStore) Delete(_ context.Context, id int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(func(t Task) bool { return t.ID == id })
	if i < 0 {
		return NotFound, nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return Applied, nil
}

func (s *MemStore) insertLocked(nt NewTask) Task {
	t := Task{
		ID:          s.nextID,
		Title:       nt.Title,
		Description: nt.Description,
		Persona:     nt.Persona,
		Group:       nt.Group,
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t
}

// completeLocked completes the task at index i. When that leaves its group
// with no incomplete task, the first incomplete task of the next group is
// set incomplete again (reactivated).
func (s *MemStore) completeLocked(i int) Completion {
	if i < 0 {
		return Completion{Outcome: NotFound}
	}
	t := &s.tasks[i]
	t.Completed = true
	c := Completion{Outcome: Applied, Task: *t}

	for _, other := range s.tasks {
		if other.Group == t.Group && !other.Completed {
			return c
		}
	}
	for j := range s.tasks {
		next := &s.tasks[j]
		if next.Group == t.Group+1 && !next.Completed {
			next.Completed = false
			r := *next
			c.Reactivated = &r
			break
		}
	}
	return c
}

func (s *MemStore) indexLocked(match func(Task) bool) int {
	for i, t := range s.tasks {
		if match(t) {
			return i
		}
	}
	return -1
}

func (s *MemStore) filterLocked(keep func(Task) bool) []Task {
	out := []Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
