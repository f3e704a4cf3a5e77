package task

import (
	"context"

	"github.com/charmbracelet/log"

	"taskboard/pkg/activity"
)

// Recorder wraps a Store and appends an activity event for every mutation
// that matched a task. Append failures are logged and never fail the mutation.
type Recorder struct {
	Store
	events activity.Appender
	logger *log.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store, events activity.Appender, logger *log.Logger) *Recorder {
	return &Recorder{Store: store, events: events, logger: logger}
}

// Initialize seeds the wrapped store and records the seed task.
func (r *Recorder) Initialize(ctx context.Context) (Task, bool, error) {
	t, seeded, err := r.Store.Initialize(ctx)
	if err != nil || !seeded {
		return t, seeded, err
	}
	r.record(ctx, activity.TaskSeeded, t.ID, taskContent(t))
	return t, true, nil
}

func (r *Recorder) CompleteByID(ctx context.Context, id int) (Completion, error) {
	c, err := r.Store.CompleteByID(ctx, id)
	if err != nil {
		return c, err
	}
	r.recordCompletion(ctx, c)
	return c, nil
}

func (r *Recorder) CompleteByTitle(ctx context.Context, title string) (Completion, error) {
	c, err := r.Store.CompleteByTitle(ctx, title)
	if err != nil {
		return c, err
	}
	r.recordCompletion(ctx, c)
	return c, nil
}

func (r *Recorder) Create(ctx context.Context, nt NewTask) (Task, error) {
	t, err := r.Store.Create(ctx, nt)
	if err != nil {
		return t, err
	}
	r.record(ctx, activity.TaskCreated, t.ID, taskContent(t))
	return t, nil
}

func (r *Recorder) Update(ctx context.Context, id int, p Patch) (Outcome, error) {
	o, err := r.Store.Update(ctx, id, p)
	if err != nil || o != Applied {
		return o, err
	}
	r.record(ctx, activity.TaskUpdated, id, patchContent(p))
	return o, nil
}

func (r *Recorder) Delete(ctx context.Context, id int) (Outcome, error) {
	o, err := r.Store.Delete(ctx, id)
	if err != nil || o != Applied {
		return o, err
	}
	r.record(ctx, activity.TaskDeleted, id, nil)
	return o, nil
}

func (r *Recorder) recordCompletion(ctx context.Context, c Completion) {
	if c.Outcome != Applied {
		return
	}
	r.record(ctx, activity.TaskCompleted, c.Task.ID, map[string]any{"title": c.Task.Title, "group": c.Task.Group})
	if c.Reactivated != nil {
		r.record(ctx, activity.TaskReactivated, c.Reactivated.ID, map[string]any{
			"title":        c.Reactivated.Title,
			"group":        c.Reactivated.Group,
			"completed_by": c.Task.ID,
		})
	}
}

func (r *Recorder) record(ctx context.Context, eventType string, taskID int, content map[string]any) {
	if _, err := r.events.Append(ctx, eventType, taskID, content); err != nil {
		r.logger.Warn("record activity", "type", eventType, "task_id", taskID, "err", err)
	}
}

func taskContent(t Task) map[string]any {
	return map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"persona":     t.Persona,
		"group":       t.Group,
	}
}

func patchContent(p Patch) map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Persona != nil {
		m["persona"] = *p.Persona
	}
	if p.Group != nil {
		m["group"] = *p.Group
	}
	if p.Completed != nil {
		m["completed"] = *p.Completed
	}
	return m
}
