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

package batch

import (
	"context"
	"os"
	"runtime"

	"github.com/blinklabs-io/gomikrobus/manifest"
)

// Config holds configuration for Run
type Config struct {
	// Workers is the number of parallel workers
	Workers int
	// ReadFile loads a manifest by path
	ReadFile func(path string) ([]byte, error)
}

// OptionFunc is a functional option for configuring Run
type OptionFunc func(*Config)

// WithWorkers sets the number of parallel workers
func WithWorkers(n int) OptionFunc {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

// WithReadFunc sets the function used to load manifests. The default is os.ReadFile
func WithReadFunc(readFile func(path string) ([]byte, error)) OptionFunc {
	return func(c *Config) {
		c.ReadFile = readFile
	}
}

// DefaultConfig returns a Config with one worker per CPU
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		ReadFile: os.ReadFile,
	}
}

// Run reads and parses every manifest in paths and returns one item per path,
// in input order. Per-manifest failures are recorded in Item.Err; the returned
// error is only set when ctx is done before all items are processed
func Run(
	ctx context.Context,
	paths []string,
	parser *manifest.Parser,
	opts ...OptionFunc,
) ([]*Item, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	input := make(chan *Item)
	output := make(chan *Item, len(paths))
	pool := NewWorkerPool(WorkerPoolConfig{
		Stages: []Stage{
			ReadStage(config.ReadFile),
			ParseStage(parser),
		},
		NumWorkers: min(config.Workers, max(len(paths), 1)),
		Input:      input,
		Output:     output,
	})
	pool.Start(ctx)
	go func() {
		defer close(input)
		for i, path := range paths {
			select {
			case input <- &Item{Index: i, Path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()
	ret := make([]*Item, len(paths))
	for range paths {
		select {
		case item := <-output:
			ret[item.Index] = item
		case <-ctx.Done():
			cancel()
			pool.Stop()
			return nil, ctx.Err()
		}
	}
	pool.Stop()
	return ret, nil
}
