package reminder

import (
	"context"
	"time"
)

// ScanInterval is how often the deadline evaluator re-runs.
const ScanInterval = 15 * time.Minute

// dailyReminderHour is the local hour for the streak nudge.
const dailyReminderHour = 23

// Scheduler drives the recurring checks: the deadline scan and the daily
// streak reminder. Callbacks run to completion before the next tick; there
// is no parallelism to guard against. Stop tears the timers down so they
// cannot leak across session boundaries.
type Scheduler struct {
	eval *Evaluator

	// streakNudge fires at the daily reminder hour when today's activity
	// has not been counted yet.
	streakNudge func(now time.Time)

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(eval *Evaluator, streakNudge func(now time.Time)) *Scheduler {
	return &Scheduler{
		eval:        eval,
		streakNudge: streakNudge,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start runs the loop until Stop is called or ctx is cancelled. An initial
// deadline scan fires immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	_, _ = s.eval.Run(ctx, time.Now())

	scan := time.NewTicker(ScanInterval)
	defer scan.Stop()

	daily := time.NewTimer(untilNextDaily(time.Now()))
	defer daily.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-scan.C:
			_, _ = s.eval.Run(ctx, time.Now())
		case <-daily.C:
			now := time.Now()
			if s.streakNudge != nil {
				s.streakNudge(now)
			}
			daily.Reset(untilNextDaily(now))
		}
	}
}

// Stop halts the loop and waits for the in-flight callback to finish.
func (s *Scheduler) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

// untilNextDaily returns the duration until the next local reminder hour.
func untilNextDaily(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), dailyReminderHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
