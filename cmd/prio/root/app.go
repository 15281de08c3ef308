package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"prio/internal/app"
	"prio/internal/user"
)

func openApp(ctx context.Context) (*app.App, func(), error) {
	a, err := app.Open(ctx, app.Config{DBPath: dbPath})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = a.Close()
	}
	return a, cleanup, nil
}

// openSession opens the app and materializes the signed-in user's state.
// Toast printing is wired before the session loads so the day's first
// streak event is visible.
func openSession(ctx context.Context, out io.Writer) (*app.App, func(), error) {
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return nil, nil, err
	}
	subscribeToasts(a.Bus, out)

	if err := a.LoadSession(ctx); err != nil {
		cleanup()
		if errors.Is(err, user.ErrNoUser) {
			return nil, nil, fmt.Errorf("no user signed in; run 'prio login' first")
		}
		return nil, nil, err
	}
	return a, cleanup, nil
}

// openSessionQuiet loads the session without toast printing, for the TUI
// which renders state itself.
func openSessionQuiet(ctx context.Context) (*app.App, func(), error) {
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := a.LoadSession(ctx); err != nil {
		cleanup()
		if errors.Is(err, user.ErrNoUser) {
			return nil, nil, fmt.Errorf("no user signed in; run 'prio login' first")
		}
		return nil, nil, err
	}
	return a, cleanup, nil
}
