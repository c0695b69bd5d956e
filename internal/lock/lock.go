// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package lock makes sure only a single upload runs at any time.
package lock

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/offen/obsutil-adapter/internal/errwrap"
)

// ErrContention is returned when another run currently holds the lock.
var ErrContention = errors.New("the upload process is executing")

// Acquire takes an exclusive lock on the given lockfile without waiting.
// The lock is held until the caller invokes the returned release func,
// or until the process exits. In case another process holds the lock,
// ErrContention is returned.
func Acquire(lockfile string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(lockfile), 0o755); err != nil {
		return nil, errwrap.Wrap(err, "error creating lockfile directory")
	}

	fileLock := flock.New(lockfile)
	acquired, err := fileLock.TryLock()
	if err != nil {
		return nil, errwrap.Wrap(err, "error trying lock")
	}
	if !acquired {
		return nil, errwrap.Wrapf(ErrContention, "lockfile %s is held by another process", lockfile)
	}
	return fileLock.Unlock, nil
}
