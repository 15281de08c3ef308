package user

import (
	"encoding/json"
	"strconv"
	"time"
)

// DayFormat is the civil-date layout used for streak bookkeeping.
const DayFormat = "2006-01-02"

// User is the signed-in account plus its progression state. The profile
// fields are display attributes; xp/level/streak belong to the progression
// engine and are persisted after every mutation.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`

	XP             int    `json:"xp"`
	Level          int    `json:"level"`
	Streak         int    `json:"streak"`
	LastActiveDate string `json:"lastActiveDate,omitempty"`
}

// sanitize applies the defaulting rules for malformed persisted state:
// xp >= 0, level >= 1, streak >= 0, LastActiveDate a valid civil date.
func (u *User) sanitize() {
	if u.XP < 0 {
		u.XP = 0
	}
	if u.Level < 1 {
		u.Level = 1
	}
	if u.Streak < 0 {
		u.Streak = 0
	}
	if u.LastActiveDate != "" {
		if _, err := time.Parse(DayFormat, u.LastActiveDate); err != nil {
			u.LastActiveDate = ""
		}
	}
}

// looseInt tolerates duck-typed numerics in stored records: numbers,
// numeric strings, null and garbage all decode, with garbage collapsing
// to zero instead of propagating an error.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*n = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = looseInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = looseInt(f)
		return nil
	}
	*n = 0
	return nil
}

// userRecord is the stored shape of a User.
type userRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Picture        string   `json:"picture,omitempty"`
	XP             looseInt `json:"xp"`
	Level          looseInt `json:"level"`
	Streak         looseInt `json:"streak"`
	LastActiveDate string   `json:"lastActiveDate,omitempty"`
}

// DecodeUser parses a stored profile record, coercing malformed numeric
// fields to their defaults. Only a completely unreadable record (or one
// without an id) is an error.
func DecodeUser(raw []byte) (*User, error) {
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, ErrNoUser
	}
	u := &User{
		ID:             rec.ID,
		Name:           rec.Name,
		Email:          rec.Email,
		Picture:        rec.Picture,
		XP:             int(rec.XP),
		Level:          int(rec.Level),
		Streak:         int(rec.Streak),
		LastActiveDate: rec.LastActiveDate,
	}
	u.sanitize()
	return u, nil
}

// ProgressRecord is the gamification_data_<id> subset. It is written on
// every XP mutation and wins over the profile record's copy on load.
type ProgressRecord struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// DecodeProgress parses a stored gamification record with the same
// tolerance as DecodeUser.
func DecodeProgress(raw []byte) (ProgressRecord, error) {
	var rec struct {
		XP    looseInt `json:"xp"`
		Level looseInt `json:"level"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ProgressRecord{}, err
	}
	out := ProgressRecord{XP: int(rec.XP), Level: int(rec.Level)}
	if out.XP < 0 {
		out.XP = 0
	}
	if out.Level < 1 {
		out.Level = 1
	}
	return out, nil
}
