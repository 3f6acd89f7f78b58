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
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gomikrobus/builder"
	"github.com/blinklabs-io/gomikrobus/cbor"
	"github.com/blinklabs-io/gomikrobus/registration"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type inspectOutput struct {
	Fingerprint   string                    `json:"fingerprint" yaml:"fingerprint"`
	Board         *builder.Description      `json:"board" yaml:"board"`
	Registrations []*registration.BusDevice `json:"registrations,omitempty" yaml:"registrations,omitempty"`
}

func newInspectCommand(f *globalFlags) *cobra.Command {
	var (
		format        string
		output        string
		registrations bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Decode a manifest and print the board it describes",
		Example: `  # Print a manifest as YAML, including the bus registrations for its devices
  mikrobus-manifest inspect --format yaml --registrations board.mnfb

  # Write a CBOR snapshot of the decoded board
  mikrobus-manifest inspect --format cbor -o board.cbor board.mnfb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			board, err := f.parser(cmd).Parse(data)
			if err != nil {
				return err
			}
			if format == "cbor" {
				out, err := cbor.Encode(board)
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, out)
			}
			result := inspectOutput{
				Fingerprint: board.Fingerprint.Bech32(),
				Board:       builder.NewDescription(board),
			}
			if registrations {
				if result.Registrations, err = registration.Plan(board); err != nil {
					return err
				}
			}
			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(result, "", "  ")
				out = append(out, '\n')
			case "yaml":
				out, err = yaml.Marshal(result)
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or cbor")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&registrations, "registrations", false, "include the bus registration records for each device")
	return cmd
}
