// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 10
	logMaxBackups = 4
)

// openLog creates the log directory and returns a writer targeting both
// stdout and the rotated log file.
func openLog(s *Settings) (io.Writer, func() error, error) {
	if err := os.MkdirAll(s.LogDir, 0o755); err != nil {
		return nil, noop, errwrap.Wrapf(err, "error creating log directory %s", s.LogDir)
	}
	rotating := &lumberjack.Logger{
		Filename:   s.LogFile(),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
	}
	return io.MultiWriter(os.Stdout, rotating), rotating.Close, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	).With("pid", os.Getpid())
}
