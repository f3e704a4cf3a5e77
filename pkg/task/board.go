package task

// Board is the three-column view of the collection.
type Board struct {
	ToDo       []Task `json:"todo"`
	InProgress []Task `json:"in_progress"`
	Completed  []Task `json:"completed"`
}

// ActiveGroup returns the lowest group among incomplete tasks.
// ok is false when every task is complete (or there are none).
func ActiveGroup(tasks []Task) (group int, ok bool) {
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if !ok || t.Group < group {
			group = t.Group
			ok = true
		}
	}
	return group, ok
}

// Partition splits tasks into board columns, preserving input order
// within each column.
func Partition(tasks []Task) Board {
	b := Board{ToDo: []Task{}, InProgress: []Task{}, Completed: []Task{}}
	group, ok := ActiveGroup(tasks)
	for _, t := range tasks {
		switch {
		case t.Completed:
			b.Completed = append(b.Completed, t)
		case ok && t.Group == group:
			b.InProgress = append(b.InProgress, t)
		default:
			b.ToDo = append(b.ToDo, t)
		}
	}
	return b
}
