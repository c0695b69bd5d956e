// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package runconfig loads and validates the configuration of an upload run.
package runconfig

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// RunConfig holds the validated configuration of a single run.
type RunConfig struct {
	// OBSPath is the bucket name optionally followed by a prefix.
	OBSPath string
	// RetryTimes is handed to obsutil as its maximum retry count.
	RetryTimes int
	// ModifiedInterval excludes files modified within this many minutes.
	ModifiedInterval int
	// ReserveTime is the number of minutes archived files are kept.
	ReserveTime int
	BackupPaths []string
	ArchivePath string
}

// Bucket returns the first segment of the configured obs path.
func (c *RunConfig) Bucket() string {
	return strings.Split(c.OBSPath, "/")[0]
}

// ValidationError describes the first invalid setting that was found.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BucketChecker reports whether a bucket exists.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// Validator turns a configuration file into a RunConfig.
type Validator struct {
	buckets BucketChecker
	logger  *slog.Logger
}

// NewValidator creates a Validator looking up buckets using the given checker.
func NewValidator(buckets BucketChecker, logger *slog.Logger) *Validator {
	return &Validator{buckets: buckets, logger: logger}
}

func (v *Validator) fail(field string, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if field == "" {
		v.logger.Error(msg)
	} else {
		v.logger.Error(msg, "field", field)
	}
	return &ValidationError{Field: field, Message: msg, Err: err}
}

// Validate loads the file at path and checks all values in order, returning
// on the first invalid one. The archive directory is created when missing,
// which is the only side effect. A file that does not exist loads as empty
// and fails on the first missing value.
func (v *Validator) Validate(ctx context.Context, path string) (*RunConfig, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, v.fail("", err, "Some param is wrong, please check: %v", err)
	}

	c := &RunConfig{}
	if c.OBSPath, err = lookup(file, "obs", "obs_path"); err != nil {
		return nil, v.fail("obs_path", err, "Some param is wrong, please check: %v", err)
	}
	if c.OBSPath == "" {
		return nil, v.fail("obs_path", nil, "The param obs_path is empty")
	}

	exists, err := v.buckets.BucketExists(ctx, c.Bucket())
	if err != nil {
		return nil, v.fail("obs_path", err, "Error listing buckets: %v", err)
	}
	if !exists {
		return nil, v.fail("obs_path", nil, "Bucket name %s not found", c.Bucket())
	}

	for _, field := range []struct {
		name   string
		target *int
	}{
		{"retry_times", &c.RetryTimes},
		{"modified_interval", &c.ModifiedInterval},
		{"reserve_time", &c.ReserveTime},
	} {
		value, err := lookupInt(file, "base", field.name)
		if err != nil {
			return nil, v.fail(field.name, err, "Some param is wrong, please check: %v", err)
		}
		if value < 0 {
			return nil, v.fail(field.name, nil, "the param %s is incorrect", field.name)
		}
		*field.target = value
	}

	rawBackupPaths, err := lookup(file, "directory", "backup_path")
	if err != nil {
		return nil, v.fail("backup_path", err, "Some param is wrong, please check: %v", err)
	}
	for _, p := range strings.Split(rawBackupPaths, ",") {
		p = strings.TrimSpace(p)
		if !filepath.IsAbs(p) {
			return nil, v.fail("backup_path", nil, "The backup path `%s` is not an absolute path", p)
		}
		c.BackupPaths = append(c.BackupPaths, p)
	}

	if c.ArchivePath, err = lookup(file, "directory", "backup_archive"); err != nil {
		return nil, v.fail("backup_archive", err, "Some param is wrong, please check: %v", err)
	}
	c.ArchivePath = strings.TrimSpace(c.ArchivePath)
	if !filepath.IsAbs(c.ArchivePath) {
		return nil, v.fail("backup_archive", nil, "The archive path `%s` is not an absolute path", c.ArchivePath)
	}

	if _, err := os.Stat(c.ArchivePath); os.IsNotExist(err) {
		v.logger.Warn(fmt.Sprintf("The directory %s does not exist, create it", c.ArchivePath))
		if err := os.MkdirAll(c.ArchivePath, 0o755); err != nil {
			return nil, v.fail("backup_archive", err, "Error creating directory %s: %v", c.ArchivePath, err)
		}
	}
	if fi, err := os.Stat(c.ArchivePath); err != nil || !fi.IsDir() {
		return nil, v.fail("backup_archive", err, "The archive path %s is not a directory", c.ArchivePath)
	}

	if c.ArchivePath == "/" {
		return nil, v.fail("backup_archive", nil, "The archive path should not be /")
	}

	for _, backupPath := range c.BackupPaths {
		if fi, err := os.Stat(backupPath); err != nil || !fi.IsDir() {
			return nil, v.fail("backup_path", err, "The directory %s does not exist", backupPath)
		}
		entries, err := os.ReadDir(backupPath)
		if err != nil {
			return nil, v.fail("backup_path", err, "Error reading directory %s: %v", backupPath, err)
		}
		if len(entries) == 0 {
			return nil, v.fail("backup_path", nil, "The directory %s is empty", backupPath)
		}
		if backupPath == "/" {
			return nil, v.fail("backup_path", nil, "The backup path should not be /")
		}
		// Plain substring checks, so /data/bk1 also rejects /data/bk10.
		if strings.Contains(c.ArchivePath, backupPath) {
			return nil, v.fail(
				"backup_path", nil,
				"The archive folder %s should not inside the backup folder %s", c.ArchivePath, backupPath,
			)
		}
		if strings.Contains(backupPath, c.ArchivePath) {
			return nil, v.fail(
				"backup_path", nil,
				"The backup folder %s should not inside the archive folder %s", backupPath, c.ArchivePath,
			)
		}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, v.fail("", err, "The %s does not exist", path)
	}

	v.logger.Info("Check config success")
	return c, nil
}

func lookup(file *ini.File, section, key string) (string, error) {
	s, err := file.GetSection(section)
	if err != nil {
		return "", err
	}
	k, err := s.GetKey(key)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

func lookupInt(file *ini.File, section, key string) (int, error) {
	s, err := file.GetSection(section)
	if err != nil {
		return 0, err
	}
	k, err := s.GetKey(key)
	if err != nil {
		return 0, err
	}
	// decimal only, ini's own parsing would read 010 as octal
	return strconv.Atoi(strings.TrimSpace(k.String()))
}
