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

package test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gomikrobus/builder"
	"github.com/blinklabs-io/gomikrobus/internal/testdata"
	"github.com/blinklabs-io/gomikrobus/manifest"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any whitespace, so fixtures can be split into frames
	hexData = strings.Join(strings.Fields(hexData), "")
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// LoadBoard loads the named sample board description
func LoadBoard(name string) (*manifest.Board, error) {
	data, err := testdata.BoardDescription(name)
	if err != nil {
		return nil, err
	}
	desc, err := builder.LoadDescription(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return desc.Board()
}

// MustLoadBoard loads the named sample board description and panics on error
func MustLoadBoard(name string) *manifest.Board {
	board, err := LoadBoard(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s board: %v", name, err))
	}
	return board
}

// MustEncodeBoard returns the binary manifest for the named sample board and panics on error
func MustEncodeBoard(name string) []byte {
	data, err := builder.Encode(MustLoadBoard(name))
	if err != nil {
		panic(fmt.Sprintf("failed to encode %s board: %v", name, err))
	}
	return data
}

// NewWriter returns a builder.Writer for a version 0.1 manifest with the given
// board name string id and declared device count
func NewWriter(nameStringId uint8, numDevices uint8) *builder.Writer {
	return builder.NewWriter(manifest.Header{
		VersionMajor: manifest.VersionMajorSupported,
		VersionMinor: manifest.VersionMinorSupported,
		NameStringId: nameStringId,
		NumDevices:   numDevices,
	})
}

// MustBytes returns the manifest assembled by w and panics on error
func MustBytes(w *builder.Writer) []byte {
	data, err := w.Bytes()
	if err != nil {
		panic(fmt.Sprintf("failed to assemble manifest: %v", err))
	}
	return data
}
