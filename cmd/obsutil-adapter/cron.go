// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts standard expressions with an optional leading
// seconds field as well as descriptors like @every.
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// checkCronSchedule detects whether the given cron expression will actually
// ever be executed or not.
func checkCronSchedule(expression string) (ok bool) {
	defer func() {
		if err := recover(); err != nil {
			ok = false
		}
	}()
	sched, err := scheduleParser.Parse(expression)
	if err != nil {
		ok = false
		return
	}
	// zero means the schedule has no future activation
	ok = !sched.Next(time.Now()).IsZero()
	return
}
