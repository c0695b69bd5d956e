// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package obsutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/executor"
	"github.com/otiai10/copy"
)

// ErrSettingsMissing is returned when obsutil has never been configured on
// this host.
var ErrSettingsMissing = errors.New("obsutil settings file does not exist")

// defaultLogPath is the directory obsutil writes its logs to out of the box.
const defaultLogPath = "/root"

// PristineSuffix is appended to the settings file name for the copy that
// is kept before the file is patched for the first time.
const PristineSuffix = ".orig"

// PrepareSettings patches obsutil's own settings file in place, setting
// the maximum retry count and moving its log files into logDir. Each
// change is a separate sed invocation.
func (t *Tool) PrepareSettings(ctx context.Context, settingsFile string, retryTimes int, logDir string) error {
	if _, err := os.Stat(settingsFile); err != nil {
		if os.IsNotExist(err) {
			t.logger.Error("Check obsutil config failed, exit script", "file", settingsFile)
			return errwrap.Wrapf(ErrSettingsMissing, "error checking %s", settingsFile)
		}
		return errwrap.Wrapf(err, "error checking %s", settingsFile)
	}

	if err := keepPristine(settingsFile); err != nil {
		return errwrap.Wrap(err, "error keeping pristine settings")
	}

	setRetry := executor.New(
		"sed", "-i", fmt.Sprintf(`/maxRetryCount=/ c\maxRetryCount=%d`, retryTimes), settingsFile,
	)
	if _, err := t.runner.Run(ctx, setRetry); err != nil {
		t.logger.Error(fmt.Sprintf("Set retry_times to %d failed", retryTimes))
		return errwrap.Wrapf(err, "error setting retry count to %d", retryTimes)
	}

	setLogDir := executor.New(
		"sed", "-i", fmt.Sprintf("s@%s@%s@", defaultLogPath, logDir), settingsFile,
	)
	if _, err := t.runner.Run(ctx, setLogDir); err != nil {
		t.logger.Error(fmt.Sprintf("Set obsutil log directory to %s failed", logDir))
		return errwrap.Wrapf(err, "error setting log directory to %s", logDir)
	}

	t.logger.Info("Check obsutil config success")
	return nil
}

// keepPristine copies the settings file next to itself unless such a copy
// already exists.
func keepPristine(settingsFile string) error {
	pristine := settingsFile + PristineSuffix
	if _, err := os.Stat(pristine); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errwrap.Wrapf(err, "error checking for %s", pristine)
	}
	if err := copy.Copy(settingsFile, pristine, copy.Options{PreserveTimes: true}); err != nil {
		return errwrap.Wrapf(err, "error copying %s", settingsFile)
	}
	return nil
}
