// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package obsutil

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/executor"
)

// PartThreshold is the size above which obsutil uploads files in parts,
// and the size of each part. 1 GiB.
const PartThreshold = 1 << 30

// CopyOptions holds everything required to assemble an upload.
type CopyOptions struct {
	Sources       []string
	Destination   string
	ArchiveDir    string
	CheckpointDir string
	OutputDir     string
	// Cutoff is the upper bound of the modification time filter, formatted
	// as YYYYMMDDHHMMSS in UTC.
	Cutoff string
	// Exclude is passed to obsutil as is. It has to be a valid pattern
	// matching every name in Excluded.
	Exclude  string
	Excluded []string
	LogFile  string
}

// Destination returns the obs URL of the given prefix below base.
func Destination(base, prefix string) string {
	return "obs://" + path.Join(base, prefix)
}

// CheckExclude makes sure the exclude pattern is valid and matches every
// given file name, so none of them is ever uploaded.
func CheckExclude(pattern string, names ...string) error {
	if !doublestar.ValidatePattern(pattern) {
		return errwrap.Wrapf(doublestar.ErrBadPattern, "invalid exclude pattern `%s`", pattern)
	}
	for _, name := range names {
		if !doublestar.MatchUnvalidated(pattern, name) {
			return errwrap.Wrapf(nil, "exclude pattern `%s` does not match %s", pattern, name)
		}
	}
	return nil
}

// CopyCommand assembles the obsutil invocation uploading all sources in
// a single pass. The tool's output is appended to the log file and the
// exit status of obsutil is echoed last.
func (t *Tool) CopyCommand(o CopyOptions) (*executor.Command, error) {
	if len(o.Sources) == 0 {
		return nil, errwrap.Wrap(nil, "no sources given")
	}
	for _, source := range o.Sources {
		if source == "" || strings.Contains(source, ",") {
			return nil, errwrap.Wrapf(nil, "invalid source `%s`", source)
		}
	}
	if err := CheckExclude(o.Exclude, o.Excluded...); err != nil {
		return nil, errwrap.Wrap(err, "error checking exclude pattern")
	}

	cmd := t.cmd(
		"cp",
		strings.Join(o.Sources, ","),
		o.Destination,
		"-arcDir="+o.ArchiveDir,
		fmt.Sprintf("-threshold=%d", PartThreshold),
		fmt.Sprintf("-ps=%d", PartThreshold),
		"-cpd="+o.CheckpointDir,
		"-o="+o.OutputDir,
		"-msm=1",
		"-f",
		"-r",
		"-vlength",
		"-timeRange=*-"+o.Cutoff,
		"-exclude="+o.Exclude,
	)
	cmd.Op(">>").Arg(o.LogFile).Op("2>&1", ";").Arg("echo").Op("$?")
	return cmd, nil
}

// Copy runs the upload and returns the exit status echoed by the shell.
// obsutil reports progress on stderr, so stderr output is not a failure.
func (t *Tool) Copy(ctx context.Context, o CopyOptions) (string, error) {
	cmd, err := t.CopyCommand(o)
	if err != nil {
		return "", errwrap.Wrap(err, "error assembling upload command")
	}
	t.logger.Info(fmt.Sprintf("Upload command: %s", cmd))
	result, err := t.runner.Run(ctx, cmd, executor.AllowStderr())
	if err != nil {
		return "", errwrap.Wrap(err, "error running upload command")
	}
	status := result.String()
	t.logger.Info(fmt.Sprintf("Return code is: %s", status))
	return status, nil
}
