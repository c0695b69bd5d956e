// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	_ "embed"
	"errors"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/offen/obsutil-adapter/internal/errwrap"
	"github.com/offen/obsutil-adapter/internal/runconfig"
)

//go:embed notifications.tmpl
var defaultNotifications string

// NotificationData data to be passed to the notification templates
type NotificationData struct {
	Error    error
	Settings *Settings
	Config   *runconfig.RunConfig
	Stats    *Stats
}

// notify sends a notification using the given title and body templates.
// Automatically creates notification data, adding the given error
func (s *script) notify(titleTemplate string, bodyTemplate string, err error) error {
	params := NotificationData{
		Error:    err,
		Settings: s.settings,
		Config:   s.c,
		Stats:    s.stats,
	}

	titleBuf := &bytes.Buffer{}
	if err := s.template.ExecuteTemplate(titleBuf, titleTemplate, params); err != nil {
		return errwrap.Wrapf(err, "error executing %s template", titleTemplate)
	}

	bodyBuf := &bytes.Buffer{}
	if err := s.template.ExecuteTemplate(bodyBuf, bodyTemplate, params); err != nil {
		return errwrap.Wrapf(err, "error executing %s template", bodyTemplate)
	}

	if err := s.sendNotification(strings.TrimSpace(titleBuf.String()), bodyBuf.String()); err != nil {
		return errwrap.Wrap(err, "error sending notification")
	}
	return nil
}

// notifyFailure sends a notification about a failed run
func (s *script) notifyFailure(err error) error {
	return s.notify("title_failure", "body_failure", err)
}

// notifySuccess sends a notification about a successful run
func (s *script) notifySuccess() error {
	return s.notify("title_success", "body_success", nil)
}

// sendNotification sends a notification to all configured third party services
func (s *script) sendNotification(title, body string) error {
	var errs []error
	for _, result := range s.sender.Send(body, &types.Params{"title": title}) {
		if result != nil {
			errs = append(errs, result)
		}
	}
	if len(errs) != 0 {
		return errwrap.Wrap(errors.Join(errs...), "error sending message")
	}
	return nil
}

var templateHelpers = template.FuncMap{
	"formatTime": formatTime,
	"hostname":   hostname,
	"join":       strings.Join,
	"env":        os.Getenv,
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown host"
	}
	return name
}

func parseNotificationTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateHelpers).Parse(defaultNotifications)
	if err != nil {
		return nil, errwrap.Wrap(err, "unable to parse default notifications templates")
	}
	return tmpl, nil
}
