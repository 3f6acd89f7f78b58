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

// Package bench provides benchmark utilities and fixtures for the manifest
// decoder.
package bench

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/gomikrobus/builder"
	"github.com/blinklabs-io/gomikrobus/internal/test"
	"github.com/blinklabs-io/gomikrobus/internal/testdata"
	"github.com/blinklabs-io/gomikrobus/manifest"
)

// ManifestFixture contains a pre-encoded sample board for benchmarking.
type ManifestFixture struct {
	Name     string
	Manifest []byte
	Board    *manifest.Board
}

// LoadManifestFixture loads and encodes the named sample board, then parses
// it back so that Board carries the fingerprint of Manifest.
func LoadManifestFixture(name string) (*ManifestFixture, error) {
	board, err := test.LoadBoard(name)
	if err != nil {
		return nil, err
	}
	data, err := builder.Encode(board)
	if err != nil {
		return nil, fmt.Errorf("encode %s board: %w", name, err)
	}
	parsed, err := BenchParser().Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s manifest: %w", name, err)
	}
	return &ManifestFixture{
		Name:     name,
		Manifest: data,
		Board:    parsed,
	}, nil
}

// MustLoadManifestFixture loads a manifest fixture and panics on error.
// Use this in benchmark setup code.
func MustLoadManifestFixture(name string) *ManifestFixture {
	fixture, err := LoadManifestFixture(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s manifest fixture: %v", name, err))
	}
	return fixture
}

// FixtureNames returns the names of the sample boards available for benchmarking.
func FixtureNames() []string {
	return testdata.BoardNames()
}

// BenchParser returns a parser that discards its log output, so that
// benchmarks measure decoding rather than log formatting.
func BenchParser(opts ...manifest.ParserOptionFunc) *manifest.Parser {
	opts = append(
		[]manifest.ParserOptionFunc{
			manifest.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		},
		opts...,
	)
	return manifest.NewParser(opts...)
}
