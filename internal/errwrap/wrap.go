// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package errwrap

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Wrap wraps the given error using the given message while prepending
// the name of the calling function. Passing a nil error creates a new
// error from the message alone.
func Wrap(err error, msg string) error {
	return wrap(err, msg)
}

// Wrapf is like Wrap but formats the message.
func Wrapf(err error, format string, args ...any) error {
	return wrap(err, fmt.Sprintf(format, args...))
}

func wrap(err error, msg string) error {
	withCaller := fmt.Sprintf("%s: %s", caller(3), msg)
	if err == nil {
		return errors.New(withCaller)
	}
	return fmt.Errorf("%s: %w", withCaller, err)
}

// caller returns the package qualified name of the function skip frames
// up the stack, e.g. `runconfig.(*Validator).Validate`.
func caller(skip int) string {
	pc := make([]uintptr, 1)
	if runtime.Callers(skip+1, pc) == 0 {
		return "unknown"
	}
	frame, _ := runtime.CallersFrames(pc).Next()
	chunks := strings.Split(frame.Function, "/")
	return chunks[len(chunks)-1]
}

// Unwrap receives an error and returns the innermost error in the chain.
func Unwrap(err error) error {
	if err == nil {
		return nil
	}
	for {
		u := errors.Unwrap(err)
		if u == nil {
			break
		}
		err = u
	}
	return err
}
