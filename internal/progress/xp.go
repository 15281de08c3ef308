package progress

import "math"

const (
	// levelBaseXP and levelGrowth define the curve: level 2 costs 1000 XP
	// and every later level costs 1.5x the previous delta. The exact base,
	// exponent and floor must not drift or saved data stops matching.
	levelBaseXP = 1000.0
	levelGrowth = 1.5
)

// Fixed awards from the reward table.
const (
	XPTaskCreated      = 50
	XPTaskCompleted    = 200
	XPSubtaskCreated   = 20
	XPSubtaskCompleted = 50
	XPFocusCycle       = 100

	// FocusPenaltyPerSecond drains XP while a protected focus session is
	// abandoned.
	FocusPenaltyPerSecond = 10
)

// XPForLevel returns the total XP threshold required to reach the given
// level. Level 1 (and below) requires 0.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(levelBaseXP * math.Pow(levelGrowth, float64(level-2))))
}

// LevelProgress reports how far into the current level band xp sits, for
// progress-bar collaborators. span is 0-safe for display math.
func LevelProgress(xp, level int) (into, span int) {
	prev := XPForLevel(level)
	next := XPForLevel(level + 1)
	into = xp - prev
	if into < 0 {
		into = 0
	}
	span = next - prev
	if into > span {
		into = span
	}
	return into, span
}

// Rank is a display-only label derived from level; it is never persisted.
type Rank struct {
	Name     string
	MinLevel int
}

// Ranks is ordered by ascending MinLevel.
var Ranks = []Rank{
	{Name: "TRAINEE", MinLevel: 1},
	{Name: "SPECIALIST", MinLevel: 5},
	{Name: "COMMANDER", MinLevel: 10},
	{Name: "ELITE", MinLevel: 20},
	{Name: "LEGEND", MinLevel: 50},
}

// RankForLevel returns the highest-threshold rank whose MinLevel <= level.
func RankForLevel(level int) Rank {
	r := Ranks[0]
	for _, cand := range Ranks {
		if level >= cand.MinLevel {
			r = cand
		}
	}
	return r
}
