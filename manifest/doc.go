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

// Package manifest decodes mikroBUS click board manifests.
//
// A manifest is a 12-byte header followed by a sequence of length-prefixed
// descriptors: strings, properties and devices. Devices reference their driver
// name string, a link property listing their generic properties and a link
// property listing their GPIO resources. Parse validates the framing of every
// descriptor, resolves these references and returns a Board that owns copies
// of all strings and values:
//
//	board, err := manifest.Parse(data, manifest.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	for _, dev := range board.Devices {
//	    fmt.Println(dev.DriverName, dev.Protocol, dev.Reg)
//	}
//
// Descriptors are consumed at most once: each string, property or link
// descriptor is retired as soon as it has been resolved, and a second
// reference to it fails with ErrNotFound.
//
// All failures wrap one of the Err* sentinel values and can be matched with
// errors.Is. A single failing device rejects the whole manifest.
//
// ValidateHeader performs only the header checks and is meant for callers
// that need the declared manifest size before reading the rest of it.
package manifest
