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
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPool runs items through its stages using multiple workers in parallel
type WorkerPool struct {
	stages     []Stage
	numWorkers int
	input      <-chan *Item
	output     chan<- *Item
	wg         sync.WaitGroup
	started    atomic.Bool
}

// WorkerPoolConfig holds configuration for creating a WorkerPool.
type WorkerPoolConfig struct {
	// Stages are applied to each item in order (required, panics if empty).
	Stages []Stage
	// NumWorkers is the number of parallel workers; defaults to 1 if <= 0.
	NumWorkers int
	// Input is the channel to receive items from.
	Input <-chan *Item
	// Output is the channel to send processed items to, including failed ones.
	Output chan<- *Item
}

// NewWorkerPool creates a new worker pool for the given stages.
func NewWorkerPool(config WorkerPoolConfig) *WorkerPool {
	if len(config.Stages) == 0 {
		panic(ErrNoStages)
	}
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WorkerPool{
		stages:     config.Stages,
		numWorkers: numWorkers,
		input:      config.Input,
		output:     config.Output,
	}
}

// Start starts the worker pool. Call Stop to wait for completion.
// This method is idempotent - calling it multiple times has no effect.
func (p *WorkerPool) Start(ctx context.Context) {
	if p.started.Swap(true) {
		return // Already started
	}
	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop waits for all workers to complete.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.input:
			if !ok {
				return
			}
			start := time.Now()
			for _, stage := range p.stages {
				if err := stage.Process(ctx, item); err != nil {
					item.Err = fmt.Errorf("%s: %w", stage.Name(), err)
					break
				}
			}
			item.Duration = time.Since(start)

			// Forward even on error, so the caller sees every item
			select {
			case p.output <- item:
			case <-ctx.Done():
				return
			}
		}
	}
}
