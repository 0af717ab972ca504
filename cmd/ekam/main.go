// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command ekam drives one build round (or, with -w, a continuous watch
// loop) over a project's source tree.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ekam-build/ekam/internal/buildinfo"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts cliOptions

	cmd := &cobra.Command{
		Use:     buildinfo.Slug,
		Short:   "a build system by discovery",
		Version: buildinfo.Version,
		Long: "Ekam builds a project by letting rules discover their own " +
			"inputs through a tag graph, rather than following a " +
			"hand-written dependency list.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(context.Background(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.maxConcurrent, "jobs", "j", 0, "maximum concurrent actions (default: number of CPUs)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to ekam.yaml (default: project root, then XDG config)")
	flags.StringVarP(&opts.networkAddr, "network", "n", "", "serve the dashboard as JSON over HTTP at this address")
	flags.IntVarP(&opts.lineCap, "log-lines", "l", 0, "cap log output to this many lines (0: unlimited)")
	flags.BoolVarP(&opts.debug, "verbose", "v", false, "enable debug logging with source locations")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "keep running, rebuilding as the source tree changes")

	return cmd
}
