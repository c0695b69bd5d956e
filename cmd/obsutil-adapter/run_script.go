// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/lock"
)

// step moves the run into next once fn returns without error.
type step struct {
	next runState
	fn   func(context.Context) error
}

// runScript instantiates a new script object and orchestrates an upload
// run. To ensure it runs mutually exclusive a file lock is acquired before
// anything else happens. The run stops at the first failing step and any
// panic within the script is recovered and returned as an error.
func runScript(ctx context.Context, settings *Settings, out io.Writer, opts ...scriptOption) (err error) {
	defer func() {
		if derr := recover(); derr != nil {
			fmt.Printf("%s: %s\n", derr, debug.Stack())
			asErr, ok := derr.(error)
			if ok {
				err = errwrap.Wrap(asErr, "unexpected panic running script")
			} else {
				err = errwrap.Wrapf(nil, "%v", derr)
			}
		}
	}()

	s := newScript(settings, out, opts...)

	unlock, lockErr := lock.Acquire(settings.LockFile)
	if lockErr != nil {
		s.logger.Error("The upload process is executing, the script will exit")
		return errwrap.Wrap(lockErr, "error acquiring file lock")
	}
	defer func() {
		if derr := unlock(); derr != nil {
			err = errors.Join(err, errwrap.Wrap(derr, "error releasing file lock"))
		}
	}()
	s.stats.State = stateGuardChecked

	if initErr := s.init(); initErr != nil {
		return errwrap.Wrap(initErr, "error instantiating script")
	}

	scriptErr := s.run(ctx, []step{
		{stateConfigValidated, s.validateConfig},
		{stateToolPrepared, s.prepareTool},
		{stateSentinelsEnsured, s.ensureSentinels},
		{stateCleaned, s.cleanArchive},
		{stateUploaded, s.upload},
	})

	hookErr := s.runHooks(outcome{
		State:       s.stats.State,
		FailedAfter: s.stats.FailedAfter,
		Err:         scriptErr,
	})
	if hookErr != nil {
		if scriptErr != nil {
			return errwrap.Wrapf(
				nil,
				"error %v executing the script followed by %v calling the registered hooks",
				scriptErr,
				hookErr,
			)
		}
		return errwrap.Wrap(
			hookErr,
			"the script ran successfully, but an error occurred calling the registered hooks",
		)
	}
	if scriptErr != nil {
		return errwrap.Wrap(scriptErr, "error running script")
	}
	return nil
}

// run executes the given steps in order. The first failing step moves the
// run into the failed state, there is no way back.
func (s *script) run(ctx context.Context, steps []step) error {
	for _, st := range steps {
		if err := st.fn(ctx); err != nil {
			s.stats.FailedAfter = s.stats.State
			s.stats.State = stateFailed
			return err
		}
		s.stats.State = st.next
	}
	s.stats.State = stateDone
	s.logger.Info("Upload script finished")
	return nil
}
