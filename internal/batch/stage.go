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

// Package batch processes many manifests concurrently, for tools that check
// whole directories of boards at once.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/blinklabs-io/gomikrobus/manifest"
)

var ErrNoStages = errors.New("batch: no stages configured")

// Item is one manifest moving through a batch
type Item struct {
	// Index is the position of the item in the batch input
	Index int
	Path  string
	Data  []byte
	Board *manifest.Board
	// Err is the first stage error for the item
	Err      error
	Duration time.Duration
}

// Stage represents one processing step applied to every item
type Stage interface {
	// Name returns the name of the stage for errors and logging.
	Name() string
	// Process processes a single item. Returns an error if processing fails.
	Process(ctx context.Context, item *Item) error
}

// StageFunc is an adapter that allows using ordinary functions as Stage implementations.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, item *Item) error
}

// NewStageFunc creates a new StageFunc with the given name and processing function.
func NewStageFunc(name string, fn func(ctx context.Context, item *Item) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

func (s *StageFunc) Name() string {
	return s.name
}

func (s *StageFunc) Process(ctx context.Context, item *Item) error {
	return s.fn(ctx, item)
}

// ReadStage loads item data with the given read function, unless data is already present
func ReadStage(readFile func(path string) ([]byte, error)) Stage {
	return NewStageFunc("read", func(ctx context.Context, item *Item) error {
		if item.Data != nil {
			return nil
		}
		data, err := readFile(item.Path)
		if err != nil {
			return err
		}
		item.Data = data
		return nil
	})
}

// ParseStage decodes item data with parser
func ParseStage(parser *manifest.Parser) Stage {
	return NewStageFunc("parse", func(ctx context.Context, item *Item) error {
		board, err := parser.Parse(item.Data)
		if err != nil {
			return err
		}
		item.Board = board
		return nil
	})
}
