// Package event is the contract by which the task store and the progression
// engine report notable occurrences to presentation collaborators. Delivery
// is synchronous and best-effort: a failing subscriber never aborts the core
// mutation that raised the event.
package event

import "time"

type Event interface {
	EventName() string
}

// TaskCreated carries a truncated preview of the new task's text for
// ticker-style collaborators.
type TaskCreated struct {
	Preview string
}

func (TaskCreated) EventName() string { return "task.created" }

type TaskCompleted struct {
	TaskID int64
	Text   string
}

func (TaskCompleted) EventName() string { return "task.completed" }

type XPAwarded struct {
	Amount int
	Reason string
}

func (XPAwarded) EventName() string { return "xp.awarded" }

type LevelUp struct {
	Level int
}

func (LevelUp) EventName() string { return "level.up" }

type StreakChanged struct {
	Streak int
	Broken bool
}

func (StreakChanged) EventName() string { return "streak.changed" }

type DeadlineImminent struct {
	TaskID int64
	Text   string
	DueAt  time.Time
}

func (DeadlineImminent) EventName() string { return "deadline.imminent" }

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(Event)) {
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(e Event) {
	for _, fn := range b.subs {
		deliver(fn, e)
	}
}

// deliver isolates subscriber panics; the publishing operation is already
// persisted by the time events go out.
func deliver(fn func(Event), e Event) {
	defer func() {
		_ = recover()
	}()
	fn(e)
}
