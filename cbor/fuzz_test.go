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

package cbor

import "testing"

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0xa0})                         // empty map
	f.Add([]byte{0x80})                         // empty array
	f.Add([]byte{0x9f, 0xff})                   // indefinite array
	f.Add([]byte{0x19, 0x27, 0x10})             // integer 10000
	f.Add([]byte{0x44, 0x01, 0x02, 0x03, 0x04}) // bytestring
	f.Add([]byte{0x65, 0x68, 0x65, 0x6c, 0x6c, 0x6f})

	f.Fuzz(func(t *testing.T, data []byte) {
		var result any
		_, _ = Decode(data, &result)
	})
}

func FuzzListLength(f *testing.F) {
	f.Add([]byte{0x81, 0x01})
	f.Add([]byte{0x98, 0x19})
	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = ListLength(data)
	})
}
