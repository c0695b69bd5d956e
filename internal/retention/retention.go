// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package retention removes files that exceeded their retention period.
package retention

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/offen/obsutil-adapter/internal/errwrap"
)

// Stats describes the outcome of a single sweep.
type Stats struct {
	Total  uint
	Pruned uint
}

// DeleteAged walks the tree rooted at directory and deletes every regular
// file whose modification time is more than reserveMinutes before now.
// Directories are left in place. Deletion cannot be undone.
func DeleteAged(directory string, reserveMinutes int, now time.Time, logger *slog.Logger) (*Stats, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, errwrap.Wrapf(err, "error reading directory %s", directory)
	}
	stats := &Stats{}
	if len(entries) == 0 {
		logger.Info(fmt.Sprintf("The directory %s is empty, no file to be deleted.", directory))
		return stats, nil
	}

	reserve := int64(reserveMinutes) * 60
	if err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return errwrap.Wrapf(err, "error calling stat on file %s", path)
		}
		stats.Total++
		if now.Unix()-fi.ModTime().Unix() <= reserve {
			return nil
		}
		logger.Info(
			fmt.Sprintf("The file %s is modified more than %d minute(s) ago, it will be deleted.", path, reserveMinutes),
		)
		if err := os.Remove(path); err != nil {
			return errwrap.Wrapf(err, "error deleting file %s", path)
		}
		stats.Pruned++
		return nil
	}); err != nil {
		return stats, errwrap.Wrap(err, "error walking filesystem tree")
	}

	logger.Info(
		fmt.Sprintf("Pruned %d out of %d file(s) in %s.", stats.Pruned, stats.Total, directory),
	)
	return stats, nil
}
