// Package app wires a session together: instance lock, storage, event bus,
// stores and external collaborators. CLI commands and the TUI build on it.
package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/flock"

	"prio/internal/event"
	"prio/internal/notify"
	"prio/internal/progress"
	"prio/internal/reminder"
	"prio/internal/storage"
	"prio/internal/task"
	"prio/internal/user"
)

type Config struct {
	// DBPath overrides the resolved database location when non-empty.
	DBPath string
}

type App struct {
	DB       *sql.DB
	KV       *storage.KV
	Bus      *event.Bus
	Session  *user.Session
	Notifier *notify.Notifier

	// Populated by LoadSession.
	User     *user.User
	Progress *progress.Engine
	Tasks    *task.Store

	lock *flock.Flock
}

// Open acquires the single-instance lock and the database. No user state
// is loaded yet; call LoadSession (or Session.SignIn first).
func Open(ctx context.Context, cfg Config) (*App, error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = storage.ResolveDBPath()
		if err != nil {
			return nil, err
		}
	}

	lock, err := storage.AcquireLock(path)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	kv := storage.NewKV(db)
	return &App{
		DB:       db,
		KV:       kv,
		Bus:      event.NewBus(),
		Session:  user.NewSession(kv),
		Notifier: notify.NewNotifier(),
		lock:     lock,
	}, nil
}

// LoadSession materializes the signed-in user's state: progression engine
// (with the gamification-record override), the full task collection, and
// the day-boundary streak check. Returns user.ErrNoUser when signed out.
func (a *App) LoadSession(ctx context.Context) error {
	u, err := a.Session.Current(ctx)
	if err != nil {
		return err
	}
	a.User = u

	a.Progress = progress.NewEngine(a.KV, a.Bus, u)
	if err := a.Progress.Load(ctx); err != nil {
		return err
	}

	a.Tasks = task.NewStore(a.KV, a.Bus, a.Progress, u.ID)
	if err := a.Tasks.Load(ctx); err != nil {
		return err
	}

	a.subscribeNotifier()
	return a.Progress.CheckStreak(ctx, time.Now())
}

// subscribeNotifier routes the outward-facing events to desktop delivery.
func (a *App) subscribeNotifier() {
	a.Bus.Subscribe(func(e event.Event) {
		switch ev := e.(type) {
		case event.LevelUp:
			_ = a.Notifier.SendLevelUp(ev.Level)
		case event.DeadlineImminent:
			_ = a.Notifier.SendDeadline(ev.Text, ev.DueAt)
		}
	})
}

// NewScheduler builds the background check loop for this session.
func (a *App) NewScheduler() *reminder.Scheduler {
	eval := reminder.NewEvaluator(a.Tasks, a.Bus)
	return reminder.NewScheduler(eval, func(now time.Time) {
		if a.Progress != nil && !a.Progress.CountedToday(now) {
			_ = a.Notifier.SendStreakReminder(a.User.Streak)
		}
	})
}

// Close releases the database and the instance lock.
func (a *App) Close() error {
	var first error
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			first = err
		}
	}
	if a.lock != nil {
		_ = a.lock.Unlock()
	}
	return first
}
