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

package cbor_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gomikrobus/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arrayStruct struct {
	cbor.StructAsArray
	Id   uint8
	Name string
}

func TestEncodeStructAsArray(t *testing.T) {
	data, err := cbor.Encode(&arrayStruct{Id: 1, Name: "a"})
	require.NoError(t, err)
	// [1, "a"]
	assert.Equal(t, "82016161", hex.EncodeToString(data))

	var dest arrayStruct
	_, err = cbor.Decode(data, &dest)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), dest.Id)
	assert.Equal(t, "a", dest.Name)
}

func TestEncodeSortedMapKeys(t *testing.T) {
	data, err := cbor.Encode(map[string]uint8{"b": 2, "a": 1})
	require.NoError(t, err)
	// {"a": 1, "b": 2}
	assert.Equal(t, "a2616101616202", hex.EncodeToString(data))
}
