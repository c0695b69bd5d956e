// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"time"
)

// RetentionStats describes the sweep of the archive directory
type RetentionStats struct {
	Total  uint
	Pruned uint
}

// UploadStats describes the invocation of obsutil
type UploadStats struct {
	Sources     []string
	Destination string
	Cutoff      string
	Status      string
}

// Stats global stats regarding a single run
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	TookTime  time.Duration
	// State is the last state the run reached. FailedAfter is set to the
	// last successful state in case the run failed.
	State       runState
	FailedAfter runState
	LogOutput   *bytes.Buffer
	Sentinels   uint
	Retention   RetentionStats
	Upload      UploadStats
}
