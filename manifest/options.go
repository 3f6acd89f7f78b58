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

package manifest

import (
	"log/slog"
)

// ParserOptionFunc is a type that represents functions that modify the Parser config
type ParserOptionFunc func(*Parser)

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) ParserOptionFunc {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithMaxDescriptors limits the number of descriptors a manifest may contain.
// Manifests with more descriptors are rejected with ErrAllocationFailure. The
// default of 0 means no limit
func WithMaxDescriptors(maxDescriptors int) ParserOptionFunc {
	return func(p *Parser) {
		p.maxDescriptors = maxDescriptors
	}
}

// WithMetrics specifies a metrics collector to record parse outcomes in
func WithMetrics(metrics *Metrics) ParserOptionFunc {
	return func(p *Parser) {
		p.metrics = metrics
	}
}
