// Package progress owns the XP/level/streak state machine for the active
// user. Every mutation persists both the profile record and the
// gamification record before raising events.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prio/internal/event"
	"prio/internal/storage"
	"prio/internal/user"
)

type Engine struct {
	store storage.Store
	bus   *event.Bus
	user  *user.User
}

func NewEngine(store storage.Store, bus *event.Bus, u *user.User) *Engine {
	return &Engine{store: store, bus: bus, user: u}
}

func (e *Engine) User() *user.User { return e.user }

// Load applies the gamification record on top of the profile's xp/level
// copy. The gamification record is written on every award, so it is the
// fresher of the two; a missing or malformed record falls back to the
// profile values, which DecodeUser has already coerced to sane defaults.
func (e *Engine) Load(ctx context.Context) error {
	raw, err := e.store.Get(ctx, storage.GamificationKey(e.user.ID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	rec, err := user.DecodeProgress(raw)
	if err != nil {
		return nil
	}
	e.user.XP = rec.XP
	e.user.Level = rec.Level
	return nil
}

// AwardXP adds a non-negative amount and runs a single level-up check.
// A grant that crosses two thresholds at once advances one level only; the
// next award catches up.
func (e *Engine) AwardXP(ctx context.Context, amount int, reason string) error {
	if amount < 0 {
		amount = 0
	}
	e.user.XP += amount

	leveled := false
	if e.user.XP >= XPForLevel(e.user.Level+1) {
		e.user.Level++
		leveled = true
	}

	if err := e.save(ctx); err != nil {
		return err
	}
	e.bus.Publish(event.XPAwarded{Amount: amount, Reason: reason})
	if leveled {
		e.bus.Publish(event.LevelUp{Level: e.user.Level})
	}
	return nil
}

// ApplyPenalty subtracts from xp, floored at 0. Level never decreases.
func (e *Engine) ApplyPenalty(ctx context.Context, amount int) error {
	if amount < 0 {
		amount = 0
	}
	e.user.XP -= amount
	if e.user.XP < 0 {
		e.user.XP = 0
	}
	return e.save(ctx)
}

// CheckStreak records today's qualifying activity. It is idempotent within
// a calendar day: the LastActiveDate stamp guards re-entry from session
// load, task completions and the daily reminder alike.
func (e *Engine) CheckStreak(ctx context.Context, now time.Time) error {
	today := now.Format(user.DayFormat)
	if e.user.LastActiveDate == today {
		return nil
	}

	yesterday := now.AddDate(0, 0, -1).Format(user.DayFormat)
	broken := false
	switch e.user.LastActiveDate {
	case "":
		e.user.Streak = 1
	case yesterday:
		e.user.Streak++
	default:
		broken = e.user.Streak > 0
		e.user.Streak = 1
	}

	e.user.LastActiveDate = today
	if err := e.save(ctx); err != nil {
		return err
	}
	e.bus.Publish(event.StreakChanged{Streak: e.user.Streak, Broken: broken})
	return nil
}

// CountedToday reports whether today's activity has already been recorded.
func (e *Engine) CountedToday(now time.Time) bool {
	return e.user.LastActiveDate == now.Format(user.DayFormat)
}

// Rank derives the display rank for the current level.
func (e *Engine) Rank() Rank {
	return RankForLevel(e.user.Level)
}

// save writes the profile record and the gamification record. There is no
// transaction spanning the two; both loads tolerate a stale counterpart.
func (e *Engine) save(ctx context.Context) error {
	rawUser, err := json.Marshal(e.user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := e.store.Set(ctx, storage.CurrentUserKey, rawUser); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	rec := user.ProgressRecord{XP: e.user.XP, Level: e.user.Level}
	rawRec, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode gamification record: %w", err)
	}
	if err := e.store.Set(ctx, storage.GamificationKey(e.user.ID), rawRec); err != nil {
		return fmt.Errorf("save gamification record: %w", err)
	}
	return nil
}
