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

	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/spf13/cobra"
)

func newFingerprintCommand(f *globalFlags) *cobra.Command {
	var hexOutput bool
	cmd := &cobra.Command{
		Use:   "fingerprint <manifest>",
		Short: "Print the fingerprint of a manifest",
		Long: `Fingerprint prints the Blake2b-256 hash of a manifest, bech32 encoded with
the "` + manifest.FingerprintPrefix + `" prefix. The manifest must decode cleanly.`,
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
			if hexOutput {
				fmt.Fprintln(cmd.OutOrStdout(), board.Fingerprint.String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), board.Fingerprint.Bech32())
			return nil
		},
	}
	cmd.Flags().BoolVar(&hexOutput, "hex", false, "print the fingerprint hex encoded")
	return cmd
}
