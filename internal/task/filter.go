package task

import "strings"

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

func (f StatusFilter) IsValid() bool {
	switch f {
	case StatusAll, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

// Query selects a derived view of the collection. Search is a
// case-insensitive substring match on task text only.
type Query struct {
	Status StatusFilter
	Search string
}

// Filter recomputes the view on demand; it never mutates the canonical
// collection or its order.
func (s *Store) Filter(q Query) []Task {
	status := q.Status
	if !status.IsValid() {
		status = StatusAll
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	var out []Task
	for i := range s.tasks {
		t := s.tasks[i]
		switch status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}
