// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package executor runs shell command lines and captures their output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrStderr is returned when a command wrote to stderr and the caller asked
// for stderr output to be treated as failure.
var ErrStderr = errors.New("command wrote to stderr")

// Result is the outcome of a single command invocation.
type Result struct {
	Output   []byte
	Stderr   []byte
	ExitCode int
}

// HadStderr reports whether the command wrote anything to stderr.
func (r *Result) HadStderr() bool {
	return len(r.Stderr) != 0
}

func (r *Result) String() string {
	return string(r.Output)
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, cmd *Command, opts ...Option) (*Result, error)
}

type runOptions struct {
	trim          bool
	stderrIsError bool
}

// Option configures a single invocation.
type Option func(*runOptions)

// KeepWhitespace returns stdout exactly as written by the command.
func KeepWhitespace() Option {
	return func(o *runOptions) {
		o.trim = false
	}
}

// AllowStderr stops stderr output from being treated as failure.
func AllowStderr() Option {
	return func(o *runOptions) {
		o.stderrIsError = false
	}
}

// Shell runs commands through an in-process POSIX shell interpreter.
// External programs are spawned as regular child processes.
type Shell struct {
	logger  *slog.Logger
	dir     string
	timeout time.Duration
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithDir sets the working directory commands are run in.
func WithDir(dir string) ShellOption {
	return func(s *Shell) {
		s.dir = dir
	}
}

// WithTimeout bounds the duration of every invocation. Zero waits forever.
func WithTimeout(timeout time.Duration) ShellOption {
	return func(s *Shell) {
		s.timeout = timeout
	}
}

// NewShell creates a Shell logging to the given logger.
func NewShell(logger *slog.Logger, opts ...ShellOption) *Shell {
	s := &Shell{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the given command and waits for it to finish. By default,
// stdout is trimmed and any stderr output makes the invocation fail. The
// exit code is reported in the result but never causes an error by itself.
func (s *Shell) Run(ctx context.Context, cmd *Command, opts ...Option) (*Result, error) {
	o := runOptions{trim: true, stderrIsError: true}
	for _, opt := range opts {
		opt(&o)
	}

	line, err := cmd.Line()
	if err != nil {
		return nil, errwrap.Wrap(err, "error assembling command line")
	}
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, errwrap.Wrapf(err, "error parsing command `%s`", line)
	}

	var stdout, stderr bytes.Buffer
	runnerOpts := []interp.RunnerOption{interp.StdIO(nil, &stdout, &stderr)}
	if s.dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(s.dir))
	}
	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return nil, errwrap.Wrap(err, "error creating shell interpreter")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	code, err := exitCode(ctx, runner.Run(ctx, file))
	if err != nil {
		return nil, errwrap.Wrapf(err, "error running command `%s`", line)
	}
	result := &Result{ExitCode: code}

	result.Stderr = stderr.Bytes()
	result.Output = stdout.Bytes()
	if o.trim {
		result.Output = bytes.TrimSpace(result.Output)
	}

	if o.stderrIsError && result.HadStderr() {
		s.logger.Error(
			fmt.Sprintf("Execute command %s failed! Failed reason: %s", line, bytes.TrimSpace(result.Stderr)),
		)
		return result, errwrap.Wrapf(ErrStderr, "error executing `%s`", line)
	}

	s.logger.Debug(fmt.Sprintf("Execute command %s success!", line), "exit_code", result.ExitCode)
	return result, nil
}

// exitCode interprets the error returned by the interpreter. A non-zero
// exit status is not an error. The context is only blamed in case the run
// did not succeed, a command finishing right at the deadline keeps its
// result.
func exitCode(ctx context.Context, runErr error) (int, error) {
	if runErr == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, errwrap.Wrap(ctxErr, "command did not finish")
	}
	var status interp.ExitStatus
	if errors.As(runErr, &status) {
		return int(status), nil
	}
	return 0, runErr
}
