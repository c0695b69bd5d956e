package main

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/offen/obsutil-adapter/internal/runconfig"
)

func TestRunHooks(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name        string
		level       hookLevel
		outcome     outcome
		expected    []string
		expectError bool
	}{
		{
			"error level on success",
			hookLevelError,
			outcome{State: stateDone},
			[]string{"plumbing"},
			false,
		},
		{
			"error level on failure",
			hookLevelError,
			outcome{State: stateFailed, FailedAfter: stateCleaned, Err: boom},
			[]string{"plumbing", "error"},
			true,
		},
		{
			"info level on success",
			hookLevelInfo,
			outcome{State: stateDone},
			[]string{"plumbing", "info"},
			false,
		},
		{
			"info level on failure",
			hookLevelInfo,
			outcome{State: stateFailed, FailedAfter: stateGuardChecked, Err: boom},
			[]string{"plumbing", "error"},
			true,
		},
		{
			"plumbing only",
			hookLevelPlumbing,
			outcome{State: stateFailed, Err: boom},
			[]string{"plumbing"},
			false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var called []string
			s := &script{hookLevel: test.level}
			s.registerHook(hookLevelInfo, func(outcome) error {
				called = append(called, "info")
				return nil
			})
			s.registerHook(hookLevelError, func(o outcome) error {
				called = append(called, "error")
				if o.Err != test.outcome.Err {
					t.Errorf("Expected hook to receive %v, got %v", test.outcome.Err, o.Err)
				}
				return errors.New("sending failed")
			})
			s.registerHook(hookLevelPlumbing, func(o outcome) error {
				if o != test.outcome {
					t.Errorf("Expected hook to receive %+v, got %+v", test.outcome, o)
				}
				called = append(called, "plumbing")
				return nil
			})

			err := s.runHooks(test.outcome)
			if (err != nil) != test.expectError {
				t.Errorf("Unexpected error value %v", err)
			}
			if err != nil && !strings.Contains(err.Error(), "after "+string(test.outcome.State)) {
				t.Errorf("Expected error to name the final state, got %v", err)
			}
			if !reflect.DeepEqual(test.expected, called) {
				t.Errorf("Expected %v, got %v", test.expected, called)
			}
		})
	}
}

func TestNotificationTemplates(t *testing.T) {
	tmpl, err := parseNotificationTemplates()
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	data := NotificationData{
		Error:    errors.New("obsutil exited with status 1"),
		Settings: &Settings{},
		Config: &runconfig.RunConfig{
			OBSPath:     "backup-prod/db",
			BackupPaths: []string{"/data/bk1", "/data/bk2"},
		},
		Stats: &Stats{
			StartTime:   time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC),
			TookTime:    3 * time.Second,
			State:       stateFailed,
			FailedAfter: stateCleaned,
			LogOutput:   bytes.NewBufferString("level=ERROR msg=\"Upload failed\""),
			Upload: UploadStats{
				Sources:     []string{"/data/bk1", "/data/bk2"},
				Destination: "obs://backup-prod/db/202403/07",
				Cutoff:      "20240307093000",
			},
		},
	}

	tests := []struct {
		template string
		expected []string
	}{
		{"title_failure", []string{"Failure running obsutil-adapter"}},
		{"body_failure", []string{"after cleaned", "status 1", "Sources: /data/bk1, /data/bk2", "Upload failed"}},
		{"title_success", []string{"Success running obsutil-adapter"}},
		{"body_success", []string{"to obs://backup-prod/db/202403/07 in 3s", "2024-03-07T10:00:00Z", "20240307093000"}},
	}
	for _, test := range tests {
		t.Run(test.template, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := tmpl.ExecuteTemplate(buf, test.template, data); err != nil {
				t.Fatalf("Unexpected error %v", err)
			}
			for _, expected := range test.expected {
				if !strings.Contains(buf.String(), expected) {
					t.Errorf("Expected %q in %s", expected, buf.String())
				}
			}
		})
	}
}
