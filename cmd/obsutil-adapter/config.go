// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileName       = "obsutil_adapter.log"
	checkpointDir     = ".obsutil_checkpoint"
	outputDir         = ".obsutil_output"
	defaultEnvFile    = "/etc/obsutil-adapter/adapter.env"
	settingsSourceEnv = "environment"
)

// Settings holds all process level configuration values that are expected
// to be set by users. The run configuration itself lives in ConfigFile.
type Settings struct {
	ConfigFile        string            `envconfig:"OBSUTIL_ADAPTER_CONFIG" default:"obsutil_adapter.cfg"`
	ToolCommand       string            `envconfig:"OBSUTIL_COMMAND" default:"./obsutil"`
	ToolSettingsFile  string            `envconfig:"OBSUTIL_CONFIG" default:"/root/.obsutilconfig"`
	WorkDir           string            `envconfig:"OBSUTIL_WORKDIR"`
	LogDir            string            `envconfig:"LOG_DIR" default:"/var/log/huawei/obsutil_adapter"`
	LogLevel          LogLevel          `envconfig:"LOG_LEVEL" default:"info"`
	LockFile          string            `envconfig:"LOCK_FILE" default:"/var/lock/obsutil_adapter.lock"`
	CommandTimeout    time.Duration     `envconfig:"COMMAND_TIMEOUT" default:"0"`
	Schedule          string            `envconfig:"SCHEDULE" default:"@every 1h"`
	NotificationURLs  []string          `envconfig:"NOTIFICATION_URLS"`
	NotificationLevel NotificationLevel `envconfig:"NOTIFICATION_LEVEL" default:"error"`
	UploadExclude     string            `envconfig:"UPLOAD_EXCLUDE" default:"*.obsutiladapter"`

	source string
}

// LogFile is shared by the adapter and the output of obsutil.
func (s *Settings) LogFile() string {
	return filepath.Join(s.LogDir, logFileName)
}

// CheckpointDir is where obsutil keeps its resume state.
func (s *Settings) CheckpointDir() string {
	return filepath.Join(s.LogDir, checkpointDir)
}

// OutputDir is where obsutil writes its result lists.
func (s *Settings) OutputDir() string {
	return filepath.Join(s.LogDir, outputDir)
}

type LogLevel struct {
	Level slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "debug":
		l.Level = slog.LevelDebug
	case "info", "":
		l.Level = slog.LevelInfo
	case "warn", "warning":
		l.Level = slog.LevelWarn
	case "error":
		l.Level = slog.LevelError
	default:
		return fmt.Errorf("config: error decoding log level %s", v)
	}
	return nil
}

type NotificationLevel string

func (n *NotificationLevel) UnmarshalText(text []byte) error {
	v := string(text)
	if _, ok := hookLevels[v]; !ok {
		return fmt.Errorf("config: error decoding notification level %s", v)
	}
	*n = NotificationLevel(v)
	return nil
}

func (n NotificationLevel) String() string {
	return string(n)
}
