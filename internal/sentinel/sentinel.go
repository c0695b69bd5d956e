// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package sentinel places marker files in leaf directories of backup trees.
// obsutil moves uploaded files into the archive directory, which would leave
// empty directories behind that are then deleted or make the next upload
// fail. A marker keeps every leaf directory non-empty. Markers are never
// uploaded and never removed.
package sentinel

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Name is the reserved file name of a marker.
const Name = ".obsutiladapter"

// ExcludePattern matches markers when passed to obsutil's exclude flag.
const ExcludePattern = "*" + Name

// Error is returned when a marker cannot be created.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sentinel: error creating file in %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Ensure walks all given trees and creates a marker in each directory
// that has no subdirectories and does not contain a marker yet. It
// returns the number of markers that have been created. Markers created
// before a failure are kept.
func Ensure(roots []string, logger *slog.Logger) (int, error) {
	var created int
	for _, root := range roots {
		if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			leaf, hasMarker, err := inspect(path)
			if err != nil {
				return err
			}
			if !leaf || hasMarker {
				return nil
			}
			marker := filepath.Join(path, Name)
			f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE, 0o644)
			if err != nil {
				logger.Error(fmt.Sprintf("Create file error in %s: %v", marker, err))
				return &Error{Path: marker, Err: err}
			}
			if err := f.Close(); err != nil {
				return &Error{Path: marker, Err: err}
			}
			created++
			return nil
		}); err != nil {
			return created, err
		}
	}
	logger.Info("Check folder finished", "markers_created", created)
	return created, nil
}

// inspect reports whether the directory has no subdirectories and whether
// it already contains a marker. Symlinks pointing at directories count as
// subdirectories.
func inspect(dir string) (leaf bool, hasMarker bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, false, err
	}
	leaf = true
	for _, entry := range entries {
		if entry.Name() == Name {
			hasMarker = true
		}
		if entry.IsDir() {
			leaf = false
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if fi, err := os.Stat(filepath.Join(dir, entry.Name())); err == nil && fi.IsDir() {
				leaf = false
			}
		}
	}
	return leaf, hasMarker, nil
}
