package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nightlyone/lockfile"

	"github.com/footprint-tools/cmdtree/internal/paths"
)

// ErrLockTimeout is returned when another process keeps the rc lock for
// longer than LockTimeout.
var ErrLockTimeout = errors.New("config: lock timeout")

// LockTimeout bounds how long Locked waits for the rc lock.
var LockTimeout = 5 * time.Second

const lockPoll = 50 * time.Millisecond

func lockPath() (string, error) {
	rc, err := paths.ConfigFilePath()
	if err != nil {
		return "", err
	}
	return filepath.Abs(rc + ".lock")
}

// Locked runs fn while holding the pid lock file next to the rc file.
// Locks left by processes that are gone are taken over.
func Locked(fn func() error) error {
	path, err := lockPath()
	if err != nil {
		return err
	}
	lock, err := lockfile.New(path)
	if err != nil {
		return fmt.Errorf("config: lock %s: %w", path, err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		err := lock.TryLock()
		if err == nil {
			break
		}
		var temp interface{ Temporary() bool }
		if !errors.As(err, &temp) || !temp.Temporary() {
			return fmt.Errorf("config: lock %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		time.Sleep(lockPoll)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
