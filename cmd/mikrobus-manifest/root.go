// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	debug          bool
	maxDescriptors int
}

func newRootCommand() *cobra.Command {
	f := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "mikrobus-manifest",
		Short: "Inspect, validate and build mikroBUS click board manifests",
		Long: `mikrobus-manifest works with the binary manifests that describe the
devices on a mikroBUS click board.

Manifests are decoded into their board name, socket pin states and devices,
each with its driver, bus settings, properties and GPIO lookups.`,
		Version:       fmt.Sprintf("%s (commit %s)", Version, CommitHash),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(
		&f.maxDescriptors,
		"max-descriptors",
		0,
		"reject manifests with more descriptors than this (0 for no limit)",
	)
	rootCmd.AddCommand(
		newInspectCommand(f),
		newValidateCommand(f),
		newBuildCommand(f),
		newFingerprintCommand(f),
	)
	return rootCmd
}

func (f *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if f.debug {
		level = slog.LevelDebug
	}
	return slog.New(
		slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}),
	)
}

func (f *globalFlags) parser(cmd *cobra.Command, opts ...manifest.ParserOptionFunc) *manifest.Parser {
	opts = append(
		[]manifest.ParserOptionFunc{
			manifest.WithLogger(f.logger(cmd)),
			manifest.WithMaxDescriptors(f.maxDescriptors),
		},
		opts...,
	)
	return manifest.NewParser(opts...)
}

// readInput reads the named file, or stdin for "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to the named file, or stdout for "" and "-"
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
