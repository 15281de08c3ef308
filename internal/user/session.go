package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"prio/internal/storage"
)

// ErrNoUser means no account is signed in.
var ErrNoUser = errors.New("no user signed in")

// Session manages the currentUser record. Signing out discards only the
// pointer record; per-user task and gamification records stay behind for
// the next sign-in.
type Session struct {
	store storage.Store
}

func NewSession(store storage.Store) *Session {
	return &Session{store: store}
}

// Current loads the signed-in user, or ErrNoUser.
func (s *Session) Current(ctx context.Context) (*User, error) {
	raw, err := s.store.Get(ctx, storage.CurrentUserKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, err
	}
	u, err := DecodeUser(raw)
	if err != nil {
		// An unreadable profile is treated as signed out rather than fatal.
		return nil, ErrNoUser
	}
	return u, nil
}

// SignIn creates a fresh account and makes it current. The id is opaque,
// stable and never reused.
func (s *Session) SignIn(ctx context.Context, name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Commander"
	}
	u := &User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: strings.TrimSpace(email),
		Level: 1,
	}
	if err := s.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Save persists the profile record.
func (s *Session) Save(ctx context.Context, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, storage.CurrentUserKey, raw); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// SignOut ends the session. Stored per-user records remain.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.CurrentUserKey); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Theme returns the user's stored theme preference, or "" when unset.
func (s *Session) Theme(ctx context.Context, userID string) (string, error) {
	raw, err := s.store.Get(ctx, storage.ThemeKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Session) SetTheme(ctx context.Context, userID, theme string) error {
	return s.store.Set(ctx, storage.ThemeKey(userID), []byte(theme))
}
