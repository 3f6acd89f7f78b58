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
	"runtime"
	"slices"

	"github.com/blinklabs-io/gomikrobus/internal/batch"
	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newValidateCommand(f *globalFlags) *cobra.Command {
	var metricsFile string
	var jobs int
	cmd := &cobra.Command{
		Use:   "validate <manifest>...",
		Short: "Check that manifests decode cleanly",
		Long: `Validate decodes each manifest and reports whether it is usable. The
command fails if any manifest is rejected.

With --metrics-file, parse outcomes are written in the Prometheus text format,
for use with the node_exporter textfile collector. Manifests are checked in
parallel, and results are reported in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := f.logger(cmd)
			reg := prometheus.NewRegistry()
			metrics, err := manifest.NewMetrics(reg)
			if err != nil {
				return err
			}
			parser := f.parser(cmd, manifest.WithMetrics(metrics))
			// stdin is read once up front, however many times "-" is given
			var stdin []byte
			if slices.Contains(args, "-") {
				if stdin, err = readInput(cmd, "-"); err != nil {
					return err
				}
			}
			items, err := batch.Run(
				cmd.Context(),
				args,
				parser,
				batch.WithWorkers(jobs),
				batch.WithReadFunc(func(path string) ([]byte, error) {
					if path == "-" {
						return stdin, nil
					}
					return readInput(cmd, path)
				}),
			)
			if err != nil {
				return err
			}
			var failed int
			for _, item := range items {
				if item.Data != nil && manifest.ValidateHeader(item.Data) == 0 {
					logger.Warn(
						"manifest header pre-check failed",
						"component", "cli",
						"path", item.Path,
					)
				}
				if item.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid: %s\n", item.Path, item.Err)
					continue
				}
				logger.Debug(
					"manifest validated",
					"component", "cli",
					"path", item.Path,
					"duration", item.Duration,
				)
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"%s: ok: %q, %d device(s), %s\n",
					item.Path,
					item.Board.Name,
					len(item.Board.Devices),
					item.Board.Fingerprint.Bech32(),
				)
			}
			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d manifest(s) invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of manifests to check in parallel")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write parse metrics to this file")
	return cmd
}
