// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/obsutil"
	"github.com/offen/obsutil-adapter/internal/runconfig"
	"github.com/offen/obsutil-adapter/internal/sentinel"
)

// checkConfig validates the run configuration without touching obsutil's
// settings, the backup trees or the archive.
func checkConfig(ctx context.Context, settings *Settings, out io.Writer, opts ...scriptOption) (*runconfig.RunConfig, error) {
	s := newScript(settings, out, opts...)
	if err := s.init(); err != nil {
		return nil, errwrap.Wrap(err, "error instantiating script")
	}
	exclude := cmp.Or(settings.UploadExclude, sentinel.ExcludePattern)
	if err := obsutil.CheckExclude(exclude, sentinel.Name); err != nil {
		s.logger.Error(fmt.Sprintf("The upload exclude pattern %s would upload marker files", exclude))
		return nil, errwrap.Wrap(err, "error checking upload exclude pattern")
	}
	if err := s.validateConfig(ctx); err != nil {
		return nil, err
	}
	s.logger.Info(fmt.Sprintf("Configuration %s is valid", settings.ConfigFile))
	return s.c, nil
}

// printConfig writes the resolved settings and the validated run
// configuration to w, one field per line.
func printConfig(ctx context.Context, settings *Settings, logOut, w io.Writer, opts ...scriptOption) error {
	c, err := checkConfig(ctx, settings, logOut, opts...)
	if err != nil {
		return errwrap.Wrap(err, "error checking configuration")
	}

	// insert line breaks before each field name, assuming field names start with uppercase letters
	formatter := regexp.MustCompile(`\s([A-Z])`)
	fmt.Fprintf(w, "source=%s\n", settings.source)
	fmt.Fprintf(w, "%s\n", formatter.ReplaceAllString(fmt.Sprintf("%+v", *settings), "\n$1"))
	fmt.Fprintf(w, "config=%s\n", settings.ConfigFile)
	fmt.Fprintf(w, "%s\n", formatter.ReplaceAllString(fmt.Sprintf("%+v", *c), "\n$1"))
	return nil
}
