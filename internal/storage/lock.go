package storage

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked means another prio process already owns the data directory.
var ErrLocked = errors.New("another prio instance is already running")

// AcquireLock takes the single-instance lock next to the DB file. All state
// is single-writer; a second process must fail fast instead of interleaving
// full-collection overwrites.
func AcquireLock(dbPath string) (*flock.Flock, error) {
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return lock, nil
}
