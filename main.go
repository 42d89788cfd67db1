// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command memtar lists, extracts and serves the contents of tar archives
// that are read whole into memory.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:          "memtar",
		Short:        "Read tar archives in memory",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every entry as it is read")

	cmd.AddCommand(
		newLsCommand(),
		newCatCommand(),
		newTreeCommand(),
		newServeCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
