package task

import (
	"context"
	"errors"
)

// Task is a single card on the board.
type Task struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Persona     string `json:"persona" yaml:"persona"`
	Group       int    `json:"group" yaml:"group"`         // sequencing lane, lower unlocks first
	Completed   bool   `json:"completed" yaml:"completed"`
}

// NewTask holds the fields supplied when creating a task.
type NewTask struct {
	Title       string
	Description string
	Persona     string
	Group       int
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Persona     *string `json:"persona,omitempty"`
	Group       *int    `json:"group,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Persona == nil && p.Group == nil && p.Completed == nil
}

func (p Patch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Persona != nil {
		t.Persona = *p.Persona
	}
	if p.Group != nil {
		t.Group = *p.Group
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Outcome reports whether a lookup-based mutation touched anything.
type Outcome int

const (
	NotFound Outcome = iota // no task matched; nothing changed
	Applied                 // a task matched and was mutated
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "not_found"
}

// Completion is the result of completing a task.
type Completion struct {
	Outcome Outcome
	Task    Task
	// Reactivated is the first incomplete task of the next group when the
	// completed task closed out its own group.
	Reactivated *Task
}

// ErrDuplicateID is returned when seeding a store with two tasks sharing an id.
var ErrDuplicateID = errors.New("duplicate task id")

// Seed task inserted by Initialize when the store is empty.
const (
	SeedTitle       = "Initial Setup"
	SeedDescription = "This is the initial task"
	SeedPersona     = "Intern"
)

// Store is the contract for the task collection.
type Store interface {
	// Initialize inserts the seed task when the store is empty. It returns
	// the inserted task and whether it did so.
	Initialize(ctx context.Context) (seed Task, seeded bool, err error)

	All(ctx context.Context) ([]Task, error)
	Active(ctx context.Context) ([]Task, error)
	Completed(ctx context.Context) ([]Task, error)
	Count(ctx context.Context) (int, error)

	CompleteByID(ctx context.Context, id int) (Completion, error)
	CompleteByTitle(ctx context.Context, title string) (Completion, error)
	Create(ctx context.Context, nt NewTask) (Task, error)
	Update(ctx context.Context, id int, p Patch) (Outcome, error)
	Delete(ctx context.Context, id int) (Outcome, error)
}
