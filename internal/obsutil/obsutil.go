// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package obsutil drives the obsutil command line tool.
package obsutil

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/cosiner/argv"
	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/executor"
)

// Tool wraps obsutil invocations.
type Tool struct {
	command []string
	runner  executor.Runner
	logger  *slog.Logger
}

// New creates a Tool. The given command line is split into words, which
// allows wrappers like `sudo -u obs ./obsutil`.
func New(commandLine string, runner executor.Runner, logger *slog.Logger) (*Tool, error) {
	args, err := argv.Argv(commandLine, nil, nil)
	if err != nil {
		return nil, errwrap.Wrapf(err, "error parsing argv from `%s`", commandLine)
	}
	if len(args) != 1 || len(args[0]) == 0 {
		return nil, errwrap.Wrapf(nil, "expected a single command, got `%s`", commandLine)
	}
	return &Tool{
		command: args[0],
		runner:  runner,
		logger:  logger,
	}, nil
}

func (t *Tool) cmd(args ...string) *executor.Command {
	return executor.New(t.command[0], t.command[1:]...).Arg(args...)
}

// BucketExists lists all buckets and reports whether the given name
// appears in the listing as a whole word.
func (t *Tool) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if bucket == "" {
		return false, nil
	}
	result, err := t.runner.Run(ctx, t.cmd("ls"))
	if err != nil {
		return false, errwrap.Wrap(err, "error listing buckets")
	}
	return matchWord(result.String(), bucket), nil
}

// matchWord mimics `grep -w`: the match must be bordered by the start or
// end of a line or by a character that is not a letter, digit or underscore.
func matchWord(output, word string) bool {
	re := regexp.MustCompile(`(?m)(^|\W)` + regexp.QuoteMeta(word) + `(\W|$)`)
	return re.MatchString(output)
}
