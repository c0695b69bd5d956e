// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

// Package timepath derives time based values used for uploading.
package timepath

import (
	"time"

	"github.com/leekchan/timeutil"
)

const (
	subPathLayout = "%Y%m/%d"
	cutoffLayout  = "%Y%m%d%H%M%S"
)

// RemoteSubPath returns the remote prefix for the local date of now,
// e.g. `202403/07`.
func RemoteSubPath(now time.Time) string {
	local := now.Local()
	return timeutil.Strftime(&local, subPathLayout)
}

// UploadCutoff returns the UTC time modifiedInterval minutes before now in
// the time range format of obsutil. Files modified after the cutoff are
// considered to be still in progress.
func UploadCutoff(now time.Time, modifiedInterval int) string {
	cutoff := now.UTC().Add(-time.Duration(modifiedInterval) * time.Minute)
	return timeutil.Strftime(&cutoff, cutoffLayout)
}
