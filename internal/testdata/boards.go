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

// Package testdata provides sample click board descriptions for benchmarks and tests.
package testdata

import (
	"embed"
	"path"
	"slices"
	"strings"
)

//go:embed boards/*.yaml
var boardFiles embed.FS

// BoardNames returns the names of the sample board descriptions, sorted
func BoardNames() []string {
	entries, err := boardFiles.ReadDir("boards")
	if err != nil {
		panic(err)
	}
	ret := make([]string, 0, len(entries))
	for _, entry := range entries {
		ret = append(ret, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	slices.Sort(ret)
	return ret
}

// BoardDescription returns the YAML description of the named sample board
func BoardDescription(name string) ([]byte, error) {
	return boardFiles.ReadFile(path.Join("boards", name+".yaml"))
}
