// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/obsutil"
	"github.com/offen/obsutil-adapter/internal/retention"
	"github.com/offen/obsutil-adapter/internal/runconfig"
	"github.com/offen/obsutil-adapter/internal/sentinel"
	"github.com/offen/obsutil-adapter/internal/timepath"
)

var errTransferFailed = errors.New("obsutil reported a failed upload")

// validateConfig loads the run configuration, which every later step
// depends on.
func (s *script) validateConfig(ctx context.Context) error {
	c, err := runconfig.NewValidator(s.tool, s.logger).Validate(ctx, s.settings.ConfigFile)
	if err != nil {
		s.logger.Error("Check config failed, exit script")
		return errwrap.Wrap(err, "error validating configuration")
	}
	s.c = c
	return nil
}

// prepareTool points obsutil's retries and logs at the configured values.
func (s *script) prepareTool(ctx context.Context) error {
	if err := s.tool.PrepareSettings(ctx, s.settings.ToolSettingsFile, s.c.RetryTimes, s.settings.LogDir); err != nil {
		return errwrap.Wrap(err, "error preparing obsutil settings")
	}
	return nil
}

// ensureSentinels makes sure every leaf directory of the backup trees
// survives being archived by obsutil.
func (s *script) ensureSentinels(context.Context) error {
	created, err := sentinel.Ensure(s.c.BackupPaths, s.logger)
	s.stats.Sentinels = uint(created)
	if err != nil {
		return errwrap.Wrap(err, "error creating marker files")
	}
	return nil
}

// cleanArchive removes archived files that exceeded the reserve time.
// Backup sources are never swept.
func (s *script) cleanArchive(context.Context) error {
	stats, err := retention.DeleteAged(s.c.ArchivePath, s.c.ReserveTime, s.now(), s.logger)
	if stats != nil {
		s.stats.Retention = RetentionStats{Total: stats.Total, Pruned: stats.Pruned}
	}
	if err != nil {
		return errwrap.Wrap(err, "error pruning archive")
	}
	return nil
}

// upload runs obsutil once for all backup paths. Uploaded files are moved
// into the archive directory by obsutil itself.
func (s *script) upload(ctx context.Context) error {
	s.logger.Info("Start to upload files")
	now := s.now()

	subPath := timepath.RemoteSubPath(now)
	s.logger.Info(fmt.Sprintf("Generate obs path success:%s", subPath))
	cutoff := timepath.UploadCutoff(now, s.c.ModifiedInterval)
	s.logger.Info(fmt.Sprintf("Upload files before %s (UTC)", cutoff))

	opts := obsutil.CopyOptions{
		Sources:       s.c.BackupPaths,
		Destination:   obsutil.Destination(s.c.OBSPath, subPath),
		ArchiveDir:    s.c.ArchivePath,
		CheckpointDir: s.settings.CheckpointDir(),
		OutputDir:     s.settings.OutputDir(),
		Cutoff:        cutoff,
		Exclude:       cmp.Or(s.settings.UploadExclude, sentinel.ExcludePattern),
		Excluded:      []string{sentinel.Name},
		LogFile:       s.settings.LogFile(),
	}
	s.stats.Upload = UploadStats{
		Sources:     opts.Sources,
		Destination: opts.Destination,
		Cutoff:      cutoff,
	}

	sources := strings.Join(opts.Sources, ",")
	status, err := s.tool.Copy(ctx, opts)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Upload %s failed", sources))
		return errwrap.Wrap(err, "error running obsutil")
	}
	s.stats.Upload.Status = status
	if status != "0" {
		s.logger.Error(fmt.Sprintf("Upload %s failed", sources), "status", status)
		return errwrap.Wrapf(errTransferFailed, "obsutil exited with status %s", status)
	}

	s.logger.Info(fmt.Sprintf("Upload %s to obs success", sources))
	s.logger.Info("Upload files finished")
	return nil
}
