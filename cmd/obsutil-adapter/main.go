// Copyright 2026 - offen.software <hioffen@posteo.de>
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	c := newCommand()
	c.must(newRootCommand(c).ExecuteContext(context.Background()))
	_ = c.closeLog()
}

func newRootCommand(c *command) *cobra.Command {
	var envFile string

	runCmd := func(cmd *cobra.Command, args []string) error {
		return c.runAsCommand(cmd.Context())
	}

	rootCmd := &cobra.Command{
		Use:           "obsutil-adapter",
		Short:         "Upload backup directories to OBS using obsutil",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(envFile)
		},
		RunE: runCmd,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "Dotenv file providing settings not set in the environment")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run a single upload and exit",
			Args:  cobra.NoArgs,
			RunE:  runCmd,
		},
		&cobra.Command{
			Use:   "daemon",
			Short: "Run uploads on the configured schedule until stopped",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runInForeground(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "check-config",
			Short: "Validate the run configuration and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := checkConfig(cmd.Context(), c.settings, c.out)
				return err
			},
		},
		&cobra.Command{
			Use:   "print-config",
			Short: "Print the resolved settings and run configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printConfig(cmd.Context(), c.settings, c.out, os.Stdout)
			},
		},
	)
	return rootCmd
}
