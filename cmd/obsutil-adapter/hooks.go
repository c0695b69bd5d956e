// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"cmp"
	"errors"
	"slices"

	"github.com/offen/obsutil-adapter/internal/errwrap"
)

// outcome is what hooks get to know about a finished run.
type outcome struct {
	State       runState
	FailedAfter runState
	Err         error
}

func (o outcome) failed() bool {
	return o.Err != nil || o.State == stateFailed
}

// hook is an action queued until the run has reached a final state.
type hook struct {
	level  hookLevel
	action func(o outcome) error
}

type hookLevel int

const (
	hookLevelPlumbing hookLevel = iota
	hookLevelError
	hookLevelInfo
)

var hookLevels = map[string]hookLevel{
	"info":  hookLevelInfo,
	"error": hookLevelError,
}

// fires reports whether a hook at level l runs for the given outcome when
// hooks up to configured are enabled. Plumbing always runs, error hooks
// only for failed runs and info hooks only for successful ones.
func (l hookLevel) fires(o outcome, configured hookLevel) bool {
	if l > configured {
		return false
	}
	switch l {
	case hookLevelError:
		return o.failed()
	case hookLevelInfo:
		return !o.failed()
	default:
		return true
	}
}

// registerHook adds the given action at the given level.
func (s *script) registerHook(level hookLevel, action func(o outcome) error) {
	s.hooks = append(s.hooks, hook{level, action})
}

// runHooks runs the hooks firing for the given outcome, plumbing first. In
// case a hook fails, the remaining hooks still run before the joined
// errors are returned.
func (s *script) runHooks(o outcome) error {
	slices.SortStableFunc(s.hooks, func(a, b hook) int {
		return cmp.Compare(a.level, b.level)
	})
	var actionErrors []error
	for _, h := range s.hooks {
		if !h.level.fires(o, s.hookLevel) {
			continue
		}
		if actionErr := h.action(o); actionErr != nil {
			actionErrors = append(actionErrors, errwrap.Wrapf(actionErr, "error running hook after %s", o.State))
		}
	}
	if len(actionErrors) != 0 {
		return errors.Join(actionErrors...)
	}
	return nil
}
