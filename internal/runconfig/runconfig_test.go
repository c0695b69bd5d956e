package runconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type mockBuckets struct {
	known []string
	err   error
	hook  func()
}

func (m *mockBuckets) BucketExists(_ context.Context, bucket string) (bool, error) {
	if m.hook != nil {
		m.hook()
	}
	if m.err != nil {
		return false, m.err
	}
	for _, k := range m.known {
		if k == bucket {
			return true, nil
		}
	}
	return false, nil
}

type fixture struct {
	root    string
	backup1 string
	backup2 string
	archive string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:    root,
		backup1: filepath.Join(root, "data", "bk1"),
		backup2: filepath.Join(root, "data", "bk2"),
		archive: filepath.Join(root, "archive"),
	}
	for _, dir := range []string{f.backup1, f.backup2} {
		if err := os.MkdirAll(filepath.Join(dir, "db"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func writeConfig(t *testing.T, dir string, values map[string]string) string {
	t.Helper()
	sections := map[string][]string{
		"obs":       {"obs_path"},
		"base":      {"retry_times", "modified_interval", "reserve_time"},
		"directory": {"backup_path", "backup_archive"},
	}
	var b strings.Builder
	for _, section := range []string{"obs", "base", "directory"} {
		fmt.Fprintf(&b, "[%s]\n", section)
		for _, key := range sections[section] {
			if value, ok := values[key]; ok {
				fmt.Fprintf(&b, "%s = %s\n", key, value)
			}
		}
	}
	path := filepath.Join(dir, "obsutil_adapter.cfg")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validValues(f fixture) map[string]string {
	return map[string]string{
		"obs_path":          "backup-prod/db",
		"retry_times":       "3",
		"modified_interval": "30",
		"reserve_time":      "1440",
		"backup_path":       f.backup1 + " , " + f.backup2,
		"backup_archive":    f.archive,
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	path := writeConfig(t, f.root, validValues(f))

	c, err := NewValidator(&mockBuckets{known: []string{"backup-prod"}}, discard()).Validate(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	expected := &RunConfig{
		OBSPath:          "backup-prod/db",
		RetryTimes:       3,
		ModifiedInterval: 30,
		ReserveTime:      1440,
		BackupPaths:      []string{f.backup1, f.backup2},
		ArchivePath:      f.archive,
	}
	if !reflect.DeepEqual(expected, c) {
		t.Errorf("Expected %+v, got %+v", expected, c)
	}
	if c.Bucket() != "backup-prod" {
		t.Errorf("Unexpected bucket %s", c.Bucket())
	}
	if fi, err := os.Stat(f.archive); err != nil || !fi.IsDir() {
		t.Errorf("Expected archive directory to be created, got %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name          string
		modify        func(f fixture, values map[string]string)
		expectedField string
	}{
		{
			"missing obs_path",
			func(f fixture, v map[string]string) { delete(v, "obs_path") },
			"obs_path",
		},
		{
			"empty obs_path",
			func(f fixture, v map[string]string) { v["obs_path"] = "" },
			"obs_path",
		},
		{
			"unknown bucket",
			func(f fixture, v map[string]string) { v["obs_path"] = "other/db" },
			"obs_path",
		},
		{
			"negative retry_times",
			func(f fixture, v map[string]string) { v["retry_times"] = "-1" },
			"retry_times",
		},
		{
			"negative modified_interval",
			func(f fixture, v map[string]string) { v["modified_interval"] = "-5" },
			"modified_interval",
		},
		{
			"negative reserve_time",
			func(f fixture, v map[string]string) { v["reserve_time"] = "-60" },
			"reserve_time",
		},
		{
			"non integer reserve_time",
			func(f fixture, v map[string]string) { v["reserve_time"] = "a day" },
			"reserve_time",
		},
		{
			"hexadecimal reserve_time",
			func(f fixture, v map[string]string) { v["reserve_time"] = "0x10" },
			"reserve_time",
		},
		{
			"underscored retry_times",
			func(f fixture, v map[string]string) { v["retry_times"] = "1_0" },
			"retry_times",
		},
		{
			"missing backup_path",
			func(f fixture, v map[string]string) { delete(v, "backup_path") },
			"backup_path",
		},
		{
			"relative backup_path",
			func(f fixture, v map[string]string) { v["backup_path"] = "data/bk1" },
			"backup_path",
		},
		{
			"trailing comma",
			func(f fixture, v map[string]string) { v["backup_path"] = f.backup1 + "," },
			"backup_path",
		},
		{
			"relative backup_archive",
			func(f fixture, v map[string]string) { v["backup_archive"] = "archive" },
			"backup_archive",
		},
		{
			"root archive",
			func(f fixture, v map[string]string) { v["backup_archive"] = "/" },
			"backup_archive",
		},
		{
			"missing backup directory",
			func(f fixture, v map[string]string) { v["backup_path"] = filepath.Join(f.root, "nope") },
			"backup_path",
		},
		{
			"empty backup directory",
			func(f fixture, v map[string]string) {
				empty := filepath.Join(f.root, "empty")
				_ = os.Mkdir(empty, 0o755)
				v["backup_path"] = empty
			},
			"backup_path",
		},
		{
			"root backup directory",
			func(f fixture, v map[string]string) { v["backup_path"] = "/" },
			"backup_path",
		},
		{
			"archive inside backup",
			func(f fixture, v map[string]string) { v["backup_archive"] = filepath.Join(f.backup2, "archive") },
			"backup_path",
		},
		{
			"backup inside archive",
			func(f fixture, v map[string]string) { v["backup_archive"] = filepath.Join(f.root, "data") },
			"backup_path",
		},
		{
			"archive name extends backup name",
			func(f fixture, v map[string]string) { v["backup_archive"] = f.backup1 + "0" },
			"backup_path",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			values := validValues(f)
			test.modify(f, values)
			path := writeConfig(t, f.root, values)

			_, err := NewValidator(&mockBuckets{known: []string{"backup-prod"}}, discard()).Validate(context.Background(), path)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if validationErr.Field != test.expectedField {
				t.Errorf("Expected field %s, got %s (%v)", test.expectedField, validationErr.Field, err)
			}
		})
	}
}

func TestValidateLeadingZeros(t *testing.T) {
	f := newFixture(t)
	values := validValues(f)
	values["retry_times"] = "010"
	values["reserve_time"] = "0100"
	path := writeConfig(t, f.root, values)

	c, err := NewValidator(&mockBuckets{known: []string{"backup-prod"}}, discard()).Validate(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if c.RetryTimes != 10 {
		t.Errorf("Expected retry times 10, got %d", c.RetryTimes)
	}
	if c.ReserveTime != 100 {
		t.Errorf("Expected reserve time 100, got %d", c.ReserveTime)
	}
}

func TestValidateNegativeWithoutSideEffects(t *testing.T) {
	for _, field := range []string{"retry_times", "modified_interval", "reserve_time"} {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t)
			values := validValues(f)
			values[field] = "-1"
			path := writeConfig(t, f.root, values)

			if _, err := NewValidator(&mockBuckets{known: []string{"backup-prod"}}, discard()).Validate(context.Background(), path); err == nil {
				t.Fatal("Expected an error")
			}
			if _, err := os.Stat(f.archive); !os.IsNotExist(err) {
				t.Errorf("Expected archive directory not to be created, got %v", err)
			}
		})
	}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := NewValidator(&mockBuckets{}, discard()).Validate(context.Background(), filepath.Join(t.TempDir(), "nope.cfg"))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "obs_path" {
		t.Errorf("Expected obs_path validation error, got %v", err)
	}
}

func TestValidateFileRemoved(t *testing.T) {
	f := newFixture(t)
	path := writeConfig(t, f.root, validValues(f))
	buckets := &mockBuckets{
		known: []string{"backup-prod"},
		hook:  func() { _ = os.Remove(path) },
	}
	_, err := NewValidator(buckets, discard()).Validate(context.Background(), path)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "" {
		t.Errorf("Expected missing file error, got %v", err)
	}
}

func TestValidateListingError(t *testing.T) {
	f := newFixture(t)
	path := writeConfig(t, f.root, validValues(f))
	listErr := errors.New("obsutil: access denied")
	_, err := NewValidator(&mockBuckets{err: listErr}, discard()).Validate(context.Background(), path)
	if !errors.Is(err, listErr) {
		t.Errorf("Expected listing error, got %v", err)
	}
}
