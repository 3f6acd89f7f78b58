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
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gomikrobus/builder"
	"github.com/spf13/cobra"
)

func newBuildCommand(f *globalFlags) *cobra.Command {
	var (
		output    string
		hexOutput bool
	)
	cmd := &cobra.Command{
		Use:   "build <description.yaml>",
		Short: "Build a binary manifest from a YAML board description",
		Example: `  # Build a manifest and check it
  mikrobus-manifest build -o oledc.mnfb oledc.yaml
  mikrobus-manifest validate oledc.mnfb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descData, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			desc, err := builder.LoadDescription(bytes.NewReader(descData))
			if err != nil {
				return err
			}
			board, err := desc.Board()
			if err != nil {
				return err
			}
			data, err := builder.Encode(board)
			if err != nil {
				return err
			}
			// Make sure the result decodes before writing it out
			parsed, err := f.parser(cmd).Parse(data)
			if err != nil {
				return fmt.Errorf("built manifest does not decode: %w", err)
			}
			f.logger(cmd).Info(
				"built manifest",
				"component", "cli",
				"board", parsed.Name,
				"size", len(data),
				"fingerprint", parsed.Fingerprint.Bech32(),
			)
			if hexOutput {
				data = []byte(hex.EncodeToString(data) + "\n")
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&hexOutput, "hex", false, "write the manifest hex encoded")
	return cmd
}
