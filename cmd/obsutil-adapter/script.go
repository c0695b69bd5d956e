// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"io"
	"log/slog"
	"os"
	"text/template"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/executor"
	"github.com/offen/obsutil-adapter/internal/obsutil"
	"github.com/offen/obsutil-adapter/internal/runconfig"
)

// runState names the steps of a run in the order they are reached.
type runState string

const (
	stateInit             runState = "init"
	stateGuardChecked     runState = "guard-checked"
	stateConfigValidated  runState = "config-validated"
	stateToolPrepared     runState = "tool-prepared"
	stateSentinelsEnsured runState = "sentinels-ensured"
	stateCleaned          runState = "cleaned"
	stateUploaded         runState = "uploaded"
	stateDone             runState = "done"
	stateFailed           runState = "failed"
)

// script holds all the stateful information required to orchestrate a
// single upload run.
type script struct {
	settings  *Settings
	logger    *slog.Logger
	runner    executor.Runner
	tool      *obsutil.Tool
	now       func() time.Time
	sender    *router.ServiceRouter
	template  *template.Template
	hooks     []hook
	hookLevel hookLevel

	stats *Stats

	c *runconfig.RunConfig
}

type scriptOption func(*script)

// withRunner replaces the shell used for running commands.
func withRunner(r executor.Runner) scriptOption {
	return func(s *script) {
		s.runner = r
	}
}

// withClock replaces the source of the current time.
func withClock(now func() time.Time) scriptOption {
	return func(s *script) {
		s.now = now
	}
}

// newScript creates a script logging to out. Log output is also kept in
// memory so it can be passed to notifications.
func newScript(settings *Settings, out io.Writer, opts ...scriptOption) *script {
	logOut, logBuffer := buffer(out)
	s := &script{
		settings: settings,
		logger:   newLogger(logOut, settings.LogLevel.Level),
		now:      time.Now,
		stats: &Stats{
			State:     stateInit,
			LogOutput: logBuffer,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stats.StartTime = s.now()
	return s
}

// init creates all resources needed for talking to obsutil and third party
// notification services. It does not touch the filesystem.
func (s *script) init() error {
	s.registerHook(hookLevelPlumbing, func(outcome) error {
		s.stats.EndTime = s.now()
		s.stats.TookTime = s.stats.EndTime.Sub(s.stats.StartTime)
		return nil
	})

	s.hookLevel = hookLevels[s.settings.NotificationLevel.String()]
	if len(s.settings.NotificationURLs) > 0 {
		sender, err := shoutrrr.CreateSender(s.settings.NotificationURLs...)
		if err != nil {
			return errwrap.Wrap(err, "error creating sender")
		}
		s.sender = sender

		tmpl, err := parseNotificationTemplates()
		if err != nil {
			return errwrap.Wrap(err, "error parsing templates")
		}
		s.template = tmpl

		s.registerHook(hookLevelError, func(o outcome) error {
			return s.notifyFailure(o.Err)
		})
		s.registerHook(hookLevelInfo, func(outcome) error {
			return s.notifySuccess()
		})
	}

	if s.runner == nil {
		workDir := s.settings.WorkDir
		if workDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return errwrap.Wrap(err, "error determining working directory")
			}
			workDir = wd
		}
		s.runner = executor.NewShell(
			s.logger,
			executor.WithDir(workDir),
			executor.WithTimeout(s.settings.CommandTimeout),
		)
	}

	tool, err := obsutil.New(s.settings.ToolCommand, s.runner, s.logger)
	if err != nil {
		return errwrap.Wrap(err, "error creating obsutil client")
	}
	s.tool = tool
	return nil
}
