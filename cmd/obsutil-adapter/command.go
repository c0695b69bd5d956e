// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/robfig/cron/v3"
)

type command struct {
	logger   *slog.Logger
	out      io.Writer
	settings *Settings
	closeLog func() error
	cr       *cron.Cron
	exit     func(int)
}

func newCommand() *command {
	return &command{
		logger:   slog.New(slog.NewTextHandler(os.Stdout, nil)),
		out:      os.Stdout,
		closeLog: noop,
		exit:     os.Exit,
	}
}

// init sources the settings and redirects all further log output into the
// rotated log file.
func (c *command) init(envFile string) error {
	settings, err := sourceSettings(envFile)
	if err != nil {
		return errwrap.Wrap(err, "error sourcing settings")
	}
	c.settings = settings

	out, closeLog, err := openLog(settings)
	if err != nil {
		return errwrap.Wrap(err, "error opening log")
	}
	c.out = out
	c.closeLog = closeLog
	c.logger = newLogger(out, settings.LogLevel.Level)
	return nil
}

// runAsCommand executes a single upload run and then returns.
func (c *command) runAsCommand(ctx context.Context) error {
	if err := runScript(ctx, c.settings, c.out); err != nil {
		return errwrap.Wrap(err, "error running script")
	}
	return nil
}

// runInForeground starts the program as a long running process, triggering
// an upload run on the configured schedule until SIGTERM or SIGINT is
// received.
func (c *command) runInForeground(ctx context.Context) error {
	c.cr = cron.New(cron.WithParser(scheduleParser))

	if err := c.schedule(ctx); err != nil {
		return errwrap.Wrap(err, "error scheduling")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	c.cr.Start()

	<-ctx.Done()
	c.logger.Info("Received stop signal, waiting for running upload to finish")
	<-c.cr.Stop().Done()
	return nil
}

func (c *command) schedule(ctx context.Context) error {
	expression := c.settings.Schedule
	if _, err := c.cr.AddFunc(expression, func() {
		c.logger.Info(fmt.Sprintf("Now running script on schedule %s", expression))
		if err := runScript(ctx, c.settings, c.out); err != nil {
			c.logger.Error(
				fmt.Sprintf(
					"Unexpected error running schedule %s: %v",
					expression,
					errwrap.Unwrap(err),
				),
				"error",
				err,
			)
		}
	}); err != nil {
		return errwrap.Wrapf(err, "error adding schedule %s", expression)
	}

	c.logger.Info(fmt.Sprintf("Successfully scheduled upload from %s with expression %s", c.settings.source, expression))
	if ok := checkCronSchedule(expression); !ok {
		c.logger.Warn(
			fmt.Sprintf("Scheduled cron expression %s will never run, is this intentional?", expression),
		)
	}
	return nil
}

// must exits the program when passed an error. It should be the only
// place where the application exits forcefully.
func (c *command) must(err error) {
	if err == nil {
		return
	}
	c.logger.Error(
		fmt.Sprintf("Fatal error running command: %v", errwrap.Unwrap(err)),
		"error",
		err,
	)
	_ = c.closeLog()
	c.exit(1)
}
