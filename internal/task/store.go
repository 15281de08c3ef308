// Package task owns the ordered task collection for the signed-in user.
// The collection is fully materialized in memory for the session; every
// mutation persists the whole collection through the storage adapter.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prio/internal/event"
	"prio/internal/progress"
	"prio/internal/storage"
)

// ErrEmptyText rejects creates and edits with blank text before any state
// changes.
var ErrEmptyText = errors.New("task text is required")

// Rewarder receives progression signals from the store. The progression
// engine implements it; tests may substitute a stub.
type Rewarder interface {
	AwardXP(ctx context.Context, amount int, reason string) error
	CheckStreak(ctx context.Context, now time.Time) error
}

type CreateInput struct {
	Text     string
	Priority Priority
	Category Category
	DueDate  *time.Time
}

type Store struct {
	kv      storage.Store
	bus     *event.Bus
	rewards Rewarder
	userID  string

	tasks   []Task
	pending int

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

func NewStore(kv storage.Store, bus *event.Bus, rewards Rewarder, userID string) *Store {
	return &Store{
		kv:      kv,
		bus:     bus,
		rewards: rewards,
		userID:  userID,
		now:     time.Now,
	}
}

// SetClock pins the store's notion of now.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Load reads the full collection for the user. A missing or malformed
// record self-heals to an empty collection.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.TasksKey(s.userID))
	if errors.Is(err, storage.ErrNotFound) {
		s.tasks = nil
		s.recount()
		return nil
	}
	if err != nil {
		return err
	}

	var tasks []Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		tasks = nil
	}
	for i := range tasks {
		normalize(&tasks[i])
	}
	s.tasks = tasks
	s.recount()
	return nil
}

// Save overwrites the stored collection and refreshes the pending-count
// summary for display collaborators.
func (s *Store) Save(ctx context.Context) error {
	raw, err := json.Marshal(s.tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, storage.TasksKey(s.userID), raw); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.recount()
	return nil
}

// normalize enforces the stored-record invariants on load: CompletedAt is
// non-nil iff Completed, and subtasks are never a nil slice.
func normalize(t *Task) {
	if !t.Completed {
		t.CompletedAt = nil
	} else if t.CompletedAt == nil {
		ts := t.CreatedAt
		t.CompletedAt = &ts
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
}

func (s *Store) recount() {
	n := 0
	for i := range s.tasks {
		if !s.tasks[i].Completed {
			n++
		}
	}
	s.pending = n
}

// PendingCount is the incomplete-task summary, recomputed on every save.
func (s *Store) PendingCount() int { return s.pending }

func (s *Store) Len() int { return len(s.tasks) }

// All returns a copy of the canonical collection, newest first.
func (s *Store) All() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns a copy of the task, or nil when absent.
func (s *Store) Get(id int64) *Task {
	t := s.find(id)
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func (s *Store) find(id int64) *Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

// nextID derives a millisecond id, bumping past collisions so several
// creations within the same millisecond stay unique.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	for s.find(id) != nil {
		id++
	}
	return id
}

func (s *Store) nextSubtaskID(t *Task, now time.Time) int64 {
	id := now.UnixMilli()
	for {
		taken := false
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		id++
	}
}

// previewLen bounds the text carried on task.created events.
const previewLen = 20

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "…"
}

// Create validates, prepends the new task (newest first), persists and
// raises the creation reward.
func (s *Store) Create(ctx context.Context, in CreateInput) (*Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	prio := in.Priority
	if !prio.IsValid() {
		prio = DefaultPriority
	}
	cat := in.Category
	if !cat.IsValid() {
		cat = DefaultCategory
	}

	now := s.now()
	t := Task{
		ID:        s.nextID(now),
		UserID:    s.userID,
		Text:      text,
		Priority:  prio,
		Category:  cat,
		DueDate:   in.DueDate,
		Subtasks:  []Subtask{},
		CreatedAt: now,
	}
	s.tasks = append([]Task{t}, s.tasks...)

	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	s.bus.Publish(event.TaskCreated{Preview: preview(text)})
	if err := s.rewards.AwardXP(ctx, progress.XPTaskCreated, "goal set"); err != nil {
		return nil, err
	}

	cp := t
	return &cp, nil
}

// Toggle flips completion. Completing stamps CompletedAt, awards XP and
// counts toward the daily streak; un-completing clears the stamp but never
// revokes XP already granted (deliberate asymmetry, not a bug).
// Unknown ids are a no-op and return nil.
func (s *Store) Toggle(ctx context.Context, id int64) (*Task, error) {
	t := s.find(id)
	if t == nil {
		return nil, nil
	}

	now := s.now()
	if !t.Completed {
		t.Completed = true
		ts := now
		t.CompletedAt = &ts
		if err := s.Save(ctx); err != nil {
			return nil, err
		}
		s.bus.Publish(event.TaskCompleted{TaskID: t.ID, Text: t.Text})
		if err := s.rewards.AwardXP(ctx, progress.XPTaskCompleted, "objective confirmed"); err != nil {
			return nil, err
		}
		if err := s.rewards.CheckStreak(ctx, now); err != nil {
			return nil, err
		}
	} else {
		t.Completed = false
		t.CompletedAt = nil
		if err := s.Save(ctx); err != nil {
			return nil, err
		}
	}

	cp := *t
	return &cp, nil
}

// Edit replaces the task text in place, preserving every other field.
func (s *Store) Edit(ctx context.Context, id int64, newText string) (*Task, error) {
	text := strings.TrimSpace(newText)
	if text == "" {
		return nil, ErrEmptyText
	}
	t := s.find(id)
	if t == nil {
		return nil, nil
	}
	t.Text = text
	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

// Delete removes the task and, implicitly, its subtasks. Reports whether
// anything was removed; unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			if err := s.Save(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Reorder moves the element at from to position to, both indices into the
// canonical (unfiltered) collection. Display collaborators must translate
// filtered positions before calling. Out-of-range indices are a no-op.
func (s *Store) Reorder(ctx context.Context, from, to int) error {
	n := len(s.tasks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return nil
	}
	moved := s.tasks[from]
	rest := append(s.tasks[:from], s.tasks[from+1:]...)
	s.tasks = append(rest[:to], append([]Task{moved}, rest[to:]...)...)
	return s.Save(ctx)
}

// IndexOf returns the canonical position of a task id, or -1.
func (s *Store) IndexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddSubtask appends to the parent's subtask sequence (insertion order is
// display order). A missing parent is a no-op and returns nil.
func (s *Store) AddSubtask(ctx context.Context, taskID int64, text string) (*Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	t := s.find(taskID)
	if t == nil {
		return nil, nil
	}

	sub := Subtask{ID: s.nextSubtaskID(t, s.now()), Text: text}
	t.Subtasks = append(t.Subtasks, sub)
	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	if err := s.rewards.AwardXP(ctx, progress.XPSubtaskCreated, "sub-objective mapped"); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ToggleSubtask flips a subtask; completing one earns the smaller award.
func (s *Store) ToggleSubtask(ctx context.Context, taskID, subID int64) (*Subtask, error) {
	t := s.find(taskID)
	if t == nil {
		return nil, nil
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID != subID {
			continue
		}
		t.Subtasks[i].Completed = !t.Subtasks[i].Completed
		completed := t.Subtasks[i].Completed
		if err := s.Save(ctx); err != nil {
			return nil, err
		}
		if completed {
			if err := s.rewards.AwardXP(ctx, progress.XPSubtaskCompleted, "sub-objective confirmed"); err != nil {
				return nil, err
			}
		}
		cp := t.Subtasks[i]
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) DeleteSubtask(ctx context.Context, taskID, subID int64) (bool, error) {
	t := s.find(taskID)
	if t == nil {
		return false, nil
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			if err := s.Save(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// MarkNotified flags a task after its deadline alert has been handed off,
// so the alert fires once. Persists immediately.
func (s *Store) MarkNotified(ctx context.Context, id int64) error {
	t := s.find(id)
	if t == nil {
		return nil
	}
	t.Notified = true
	return s.Save(ctx)
}

// Export renders the full collection as pretty-printed JSON. Pure read.
func (s *Store) Export() ([]byte, error) {
	out, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	return out, nil
}
