package task

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"prio/internal/event"
	"prio/internal/progress"
	"prio/internal/storage"
	"prio/internal/user"
)

// stubRewarder records progression signals without any state machine.
type stubRewarder struct {
	awards  []int
	reasons []string
	streaks int
}

func (r *stubRewarder) AwardXP(_ context.Context, amount int, reason string) error {
	r.awards = append(r.awards, amount)
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *stubRewarder) CheckStreak(context.Context, time.Time) error {
	r.streaks++
	return nil
}

func (r *stubRewarder) total() int {
	sum := 0
	for _, a := range r.awards {
		sum += a
	}
	return sum
}

func newTestStore(t *testing.T) (*Store, *stubRewarder, storage.Store, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := storage.Open(ctx, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	kv := storage.NewKV(db)
	rewards := &stubRewarder{}
	s := NewStore(kv, event.NewBus(), rewards, "u-test")
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	cleanup := func() {
		_ = db.Close()
	}
	return s, rewards, kv, cleanup
}

// pinClock makes every call to now() advance by a millisecond so ids stay
// distinct and ordering is deterministic.
func pinClock(s *Store, start time.Time) {
	cur := start
	s.SetClock(func() time.Time {
		cur = cur.Add(time.Millisecond)
		return cur
	})
}

func mustCreate(t *testing.T, s *Store, text string) *Task {
	t.Helper()
	created, err := s.Create(context.Background(), CreateInput{Text: text})
	if err != nil {
		t.Fatalf("create %q: %v", text, err)
	}
	return created
}

func TestCreateRejectsBlankText(t *testing.T) {
	s, rewards, _, cleanup := newTestStore(t)
	defer cleanup()

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := s.Create(context.Background(), CreateInput{Text: text}); err != ErrEmptyText {
			t.Fatalf("Create(%q) err=%v, want ErrEmptyText", text, err)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("len=%d, want 0 after rejected creates", s.Len())
	}
	if len(rewards.awards) != 0 {
		t.Fatalf("awards=%v, want none", rewards.awards)
	}
}

func TestCreatePrependsNewestFirst(t *testing.T) {
	s, rewards, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	mustCreate(t, s, "first")
	mustCreate(t, s, "second")
	mustCreate(t, s, "third")

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("len=%d, want 3", len(all))
	}
	if all[0].Text != "third" || all[1].Text != "second" || all[2].Text != "first" {
		t.Fatalf("order=%q/%q/%q, want newest first", all[0].Text, all[1].Text, all[2].Text)
	}
	if all[0].Priority != DefaultPriority || all[0].Category != DefaultCategory {
		t.Fatalf("defaults=%q/%q, want %q/%q", all[0].Priority, all[0].Category, DefaultPriority, DefaultCategory)
	}
	for _, a := range rewards.awards {
		if a != progress.XPTaskCreated {
			t.Fatalf("award=%d, want %d per create", a, progress.XPTaskCreated)
		}
	}
}

func TestToggleCompleteAndBack(t *testing.T) {
	s, rewards, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	created := mustCreate(t, s, "write report")
	ctx := context.Background()

	done, err := s.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("completed=%v completedAt=%v, want both set", done.Completed, done.CompletedAt)
	}
	if rewards.streaks != 1 {
		t.Fatalf("streak checks=%d, want 1", rewards.streaks)
	}
	wantXP := progress.XPTaskCreated + progress.XPTaskCompleted
	if rewards.total() != wantXP {
		t.Fatalf("xp total=%d, want %d", rewards.total(), wantXP)
	}

	// Un-completing clears the stamp but keeps the XP already granted.
	undone, err := s.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle back: %v", err)
	}
	if undone.Completed || undone.CompletedAt != nil {
		t.Fatalf("completed=%v completedAt=%v, want both cleared", undone.Completed, undone.CompletedAt)
	}
	if rewards.total() != wantXP {
		t.Fatalf("xp total=%d after un-complete, want unchanged %d", rewards.total(), wantXP)
	}
	if s.PendingCount() != 1 {
		t.Fatalf("pending=%d, want 1", s.PendingCount())
	}
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	s, rewards, _, cleanup := newTestStore(t)
	defer cleanup()

	got, err := s.Toggle(context.Background(), 424242)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got != nil {
		t.Fatalf("got=%#v, want nil for unknown id", got)
	}
	if len(rewards.awards) != 0 || rewards.streaks != 0 {
		t.Fatalf("rewards touched on unknown id: %v / %d", rewards.awards, rewards.streaks)
	}
}

func TestEditReplacesTextOnly(t *testing.T) {
	s, _, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	created := mustCreate(t, s, "draft mail")
	ctx := context.Background()

	if _, err := s.Edit(ctx, created.ID, "  "); err != ErrEmptyText {
		t.Fatalf("Edit blank err=%v, want ErrEmptyText", err)
	}

	edited, err := s.Edit(ctx, created.ID, "send mail")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if edited.Text != "send mail" {
		t.Fatalf("text=%q, want %q", edited.Text, "send mail")
	}
	if edited.ID != created.ID || !edited.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("edit changed identity: %d/%v vs %d/%v",
			edited.ID, edited.CreatedAt, created.ID, created.CreatedAt)
	}
}

func TestDelete(t *testing.T) {
	s, _, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	a := mustCreate(t, s, "keep")
	b := mustCreate(t, s, "drop")
	ctx := context.Background()

	removed, err := s.Delete(ctx, b.ID)
	if err != nil || !removed {
		t.Fatalf("Delete=%v/%v, want true/nil", removed, err)
	}
	removed, err = s.Delete(ctx, b.ID)
	if err != nil || removed {
		t.Fatalf("second Delete=%v/%v, want false/nil", removed, err)
	}
	if s.Len() != 1 || s.Get(a.ID) == nil {
		t.Fatalf("survivor missing; len=%d", s.Len())
	}
}

func TestReorder(t *testing.T) {
	s, _, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	mustCreate(t, s, "a")
	mustCreate(t, s, "b")
	mustCreate(t, s, "c") // order is now c, b, a
	ctx := context.Background()

	if err := s.Reorder(ctx, 2, 0); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	all := s.All()
	if all[0].Text != "a" || all[1].Text != "c" || all[2].Text != "b" {
		t.Fatalf("order=%q/%q/%q, want a/c/b", all[0].Text, all[1].Text, all[2].Text)
	}

	// Out-of-range moves are a no-op.
	if err := s.Reorder(ctx, 0, 9); err != nil {
		t.Fatalf("Reorder out of range: %v", err)
	}
	if got := s.All(); got[0].Text != "a" {
		t.Fatalf("order changed on out-of-range move: %q", got[0].Text)
	}
}

func TestFilter(t *testing.T) {
	s, _, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	mustCreate(t, s, "Buy milk")
	report := mustCreate(t, s, "Write REPORT")
	mustCreate(t, s, "Call dentist")
	if _, err := s.Toggle(ctx, report.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if got := s.Filter(Query{Status: StatusActive}); len(got) != 2 {
		t.Fatalf("active=%d, want 2", len(got))
	}
	if got := s.Filter(Query{Status: StatusCompleted}); len(got) != 1 || got[0].ID != report.ID {
		t.Fatalf("completed filter wrong: %#v", got)
	}

	// Search is case-insensitive and combines with status.
	got := s.Filter(Query{Status: StatusAll, Search: "report"})
	if len(got) != 1 || got[0].ID != report.ID {
		t.Fatalf("search=%#v, want the report task", got)
	}
	if got := s.Filter(Query{Status: StatusActive, Search: "report"}); len(got) != 0 {
		t.Fatalf("active+search=%d, want 0", len(got))
	}

	// An invalid status falls back to all.
	if got := s.Filter(Query{Status: "bogus"}); len(got) != 3 {
		t.Fatalf("invalid status=%d, want 3", len(got))
	}

	// Filtering never touches the canonical order.
	all := s.All()
	if all[0].Text != "Call dentist" {
		t.Fatalf("canonical head=%q, want %q", all[0].Text, "Call dentist")
	}
}

func TestSubtaskLifecycle(t *testing.T) {
	s, rewards, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	parent := mustCreate(t, s, "plan trip")

	if _, err := s.AddSubtask(ctx, parent.ID, " "); err != ErrEmptyText {
		t.Fatalf("AddSubtask blank err=%v, want ErrEmptyText", err)
	}

	sub, err := s.AddSubtask(ctx, parent.ID, "book flights")
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if sub == nil || sub.Completed {
		t.Fatalf("sub=%#v, want fresh incomplete subtask", sub)
	}

	before := rewards.total()
	toggled, err := s.ToggleSubtask(ctx, parent.ID, sub.ID)
	if err != nil {
		t.Fatalf("ToggleSubtask: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("subtask not completed")
	}
	if rewards.total() != before+progress.XPSubtaskCompleted {
		t.Fatalf("xp=%d, want +%d on subtask completion", rewards.total()-before, progress.XPSubtaskCompleted)
	}

	// Toggling back awards nothing.
	before = rewards.total()
	if _, err := s.ToggleSubtask(ctx, parent.ID, sub.ID); err != nil {
		t.Fatalf("ToggleSubtask back: %v", err)
	}
	if rewards.total() != before {
		t.Fatalf("xp granted on un-complete: %d", rewards.total()-before)
	}

	removed, err := s.DeleteSubtask(ctx, parent.ID, sub.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteSubtask=%v/%v, want true/nil", removed, err)
	}
	if got := s.Get(parent.ID); len(got.Subtasks) != 0 {
		t.Fatalf("subtasks=%d, want 0", len(got.Subtasks))
	}

	// Missing parent is a quiet no-op.
	if got, err := s.AddSubtask(ctx, 99999, "orphan"); err != nil || got != nil {
		t.Fatalf("AddSubtask orphan=%#v/%v, want nil/nil", got, err)
	}
}

func TestLoadSelfHealsMalformedRecord(t *testing.T) {
	s, _, kv, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := kv.Set(ctx, storage.TasksKey("u-test"), []byte(`{broken`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("len=%d, want 0 after malformed record", s.Len())
	}
}

func TestLoadNormalizesStoredInvariants(t *testing.T) {
	s, _, kv, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// completedAt on an incomplete task must be dropped; completed without a
	// stamp gets one; nil subtasks become an empty slice.
	raw := []byte(`[
		{"id": 1, "userId": "u-test", "text": "stale stamp", "completed": false,
		 "completedAt": "2025-03-01T10:00:00Z", "createdAt": "2025-02-28T10:00:00Z"},
		{"id": 2, "userId": "u-test", "text": "no stamp", "completed": true,
		 "createdAt": "2025-02-28T11:00:00Z"}
	]`)
	if err := kv.Set(ctx, storage.TasksKey("u-test"), raw); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	stale := s.Get(1)
	if stale.CompletedAt != nil {
		t.Fatalf("stale completedAt survived: %v", stale.CompletedAt)
	}
	noStamp := s.Get(2)
	if noStamp.CompletedAt == nil {
		t.Fatalf("completed task left without a stamp")
	}
	if stale.Subtasks == nil || noStamp.Subtasks == nil {
		t.Fatalf("subtasks left nil after load")
	}
}

func TestMarkNotifiedPersists(t *testing.T) {
	s, _, kv, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created := mustCreate(t, s, "submit form")
	if err := s.MarkNotified(ctx, created.ID); err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}

	fresh := NewStore(kv, event.NewBus(), &stubRewarder{}, "u-test")
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := fresh.Get(created.ID); got == nil || !got.Notified {
		t.Fatalf("notified flag not persisted: %#v", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	s, _, _, cleanup := newTestStore(t)
	defer cleanup()
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	mustCreate(t, s, "alpha")
	mustCreate(t, s, "beta")

	out, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var back []Task
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("export not valid JSON: %v", err)
	}
	if len(back) != 2 || back[0].Text != "beta" {
		t.Fatalf("export=%d tasks head=%q, want 2 with beta first", len(back), back[0].Text)
	}
}

// TestCompletionRunProgression wires the real progression engine behind the
// store: one create plus five completions lands at 1050 XP and exactly one
// level-up.
func TestCompletionRunProgression(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := storage.Open(ctx, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	kv := storage.NewKV(db)
	bus := event.NewBus()
	u := &user.User{ID: "u-run", Name: "Commander", Level: 1}
	eng := progress.NewEngine(kv, bus, u)

	levelUps := 0
	bus.Subscribe(func(e event.Event) {
		if _, ok := e.(event.LevelUp); ok {
			levelUps++
		}
	})

	s := NewStore(kv, bus, eng, "u-run")
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	pinClock(s, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	first := mustCreate(t, s, "objective 1")
	ids := []int64{first.ID}
	for i := 2; i <= 5; i++ {
		created, err := s.Create(ctx, CreateInput{Text: "objective"})
		if err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		ids = append(ids, created.ID)
	}
	// Four of the creates are free seeds for this run; only the first grant
	// should count, so rewind the extras.
	if err := eng.ApplyPenalty(ctx, 4*progress.XPTaskCreated); err != nil {
		t.Fatalf("rewind: %v", err)
	}

	for _, id := range ids {
		if _, err := s.Toggle(ctx, id); err != nil {
			t.Fatalf("toggle %d: %v", id, err)
		}
	}

	if u.XP != 1050 {
		t.Fatalf("xp=%d, want 1050", u.XP)
	}
	if u.Level != 2 {
		t.Fatalf("level=%d, want 2", u.Level)
	}
	if levelUps != 1 {
		t.Fatalf("level.up events=%d, want 1", levelUps)
	}
}
