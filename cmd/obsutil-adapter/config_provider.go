// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/offen/envconfig"
	"github.com/offen/obsutil-adapter/internal/errwrap"
)

// envProxy is a function that mimics os.LookupEnv but can read values from any other source
type envProxy func(string) (string, bool)

func loadSettings(lookup envProxy) (*Settings, error) {
	envconfig.Lookup = func(key string) (string, bool) {
		value, okValue := lookup(key)
		location, okFile := lookup(key + "_FILE")

		switch {
		case okValue && !okFile: // only value
			return value, true
		case !okValue && okFile: // only file
			contents, err := os.ReadFile(location)
			if err != nil {
				return "", false
			}
			return string(contents), true
		default: // neither or both, ignore
			return "", false
		}
	}

	var s = &Settings{}
	if err := envconfig.Process("", s); err != nil {
		return nil, errwrap.Wrap(err, "failed to process configuration values")
	}
	return s, nil
}

// sourceSettings loads settings from the environment, falling back to the
// values of the given dotenv file. A missing file is not an error.
func sourceSettings(envFile string) (*Settings, error) {
	values := map[string]string{}
	source := settingsSourceEnv
	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values = fileValues
			source = envFile
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, errwrap.Wrapf(err, "error reading env file %s", envFile)
		}
	}

	s, err := loadSettings(func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	})
	if err != nil {
		return nil, errwrap.Wrapf(err, "error loading settings from %s", source)
	}
	s.source = source
	return s, nil
}
