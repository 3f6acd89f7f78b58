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

// Package cbor provides CBOR encoding/decoding helpers for resolved manifest
// snapshots.
//
// This package wraps github.com/fxamacker/cbor/v2 with a deterministic
// encoding mode (core deterministic map key ordering) and a cached decoding
// mode that rejects unknown fields.
//
// Embed StructAsArray in a struct to encode its fields as a CBOR array
// instead of a map:
//
//	type wireThing struct {
//	    cbor.StructAsArray
//	    Id   uint8
//	    Name string
//	}
package cbor
