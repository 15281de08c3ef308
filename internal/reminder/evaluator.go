// Package reminder computes which tasks deserve a deadline alert and owns
// the recurring background checks. Delivery itself belongs to subscribers.
package reminder

import (
	"context"
	"time"

	"prio/internal/event"
	"prio/internal/task"
)

// Lookahead is the alert window before a due date.
const Lookahead = time.Hour

// Evaluator scans the collection for incomplete tasks due within the
// lookahead window that have not been flagged yet. Flagging persists
// before the event goes out, so a re-run after the same now produces zero
// additional deliveries.
type Evaluator struct {
	tasks *task.Store
	bus   *event.Bus
}

func NewEvaluator(tasks *task.Store, bus *event.Bus) *Evaluator {
	return &Evaluator{tasks: tasks, bus: bus}
}

// Run evaluates against the supplied now and returns how many alerts were
// raised.
func (ev *Evaluator) Run(ctx context.Context, now time.Time) (int, error) {
	horizon := now.Add(Lookahead)

	raised := 0
	for _, t := range ev.tasks.All() {
		if t.Completed || t.Notified || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if !due.After(now) || due.After(horizon) {
			continue
		}
		if err := ev.tasks.MarkNotified(ctx, t.ID); err != nil {
			return raised, err
		}
		ev.bus.Publish(event.DeadlineImminent{TaskID: t.ID, Text: t.Text, DueAt: due})
		raised++
	}
	return raised, nil
}
