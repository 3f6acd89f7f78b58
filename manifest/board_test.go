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

package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/gomikrobus/cbor"
	"github.com/blinklabs-io/gomikrobus/internal/test"
	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardClone(t *testing.T) {
	board, err := parse(test.MustEncodeBoard("weather"))
	require.NoError(t, err)
	clone, err := board.Clone()
	require.NoError(t, err)
	assert.Equal(t, board, clone)
	calibration := clone.Devices[0].Properties[0].Value.([]uint16)
	calibration[0] = 0
	clone.Devices[0].DriverName = "bmp280"
	clone.Devices = append(clone.Devices, manifest.Device{Id: 2})
	assert.Equal(t, uint16(0x6e2b), board.Devices[0].Properties[0].Value.([]uint16)[0])
	assert.Equal(t, "bme280", board.Devices[0].DriverName)
	assert.Len(t, board.Devices, 1)
}

func TestBoardCborSnapshot(t *testing.T) {
	for _, name := range []string{"multi", "oledc", "thermo3", "weather"} {
		t.Run(name, func(t *testing.T) {
			board, err := parse(test.MustEncodeBoard(name))
			require.NoError(t, err)
			data, err := cbor.Encode(board)
			require.NoError(t, err)
			var decoded manifest.Board
			_, err = cbor.Decode(data, &decoded)
			require.NoError(t, err)
			assert.Equal(t, board, &decoded)
		})
	}
}

func TestBoardCborSnapshotKeepsArrays(t *testing.T) {
	single, err := manifest.NewProperty("one", manifest.PropertyTypeU32, []uint64{7})
	require.NoError(t, err)
	board := &manifest.Board{
		Name: "Array Click",
		Devices: []manifest.Device{
			{
				Id: 1,
				Properties: []manifest.Property{
					single,
					{Name: "list", Type: manifest.PropertyTypeU32, Value: []uint32{7}},
					{Name: "none", Type: manifest.PropertyTypeU8, Value: []uint8{}},
				},
			},
		},
	}
	data, err := cbor.Encode(board)
	require.NoError(t, err)
	var decoded manifest.Board
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, board, &decoded)
	assert.False(t, decoded.Devices[0].Properties[0].IsArray())
	assert.True(t, decoded.Devices[0].Properties[1].IsArray())
}

func TestBoardCborSnapshotInvalid(t *testing.T) {
	var board manifest.Board
	_, err := cbor.Decode(test.DecodeHexString("8102"), &board)
	assert.ErrorContains(t, err, "expected 9 fields, got 1")
	_, err = cbor.Decode(test.DecodeHexString("a0"), &board)
	assert.ErrorContains(t, err, "not a CBOR list")
}

func TestNewProperty(t *testing.T) {
	prop, err := manifest.NewProperty("width", manifest.PropertyTypeU16, []uint64{96})
	require.NoError(t, err)
	assert.Equal(t, uint16(96), prop.Value)
	assert.False(t, prop.IsArray())
	assert.Equal(t, 1, prop.Len())
	prop, err = manifest.NewProperty("levels", manifest.PropertyTypeU8, []uint64{0, 255})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255}, prop.Value)
	assert.True(t, prop.IsArray())
	assert.Equal(t, []uint64{0, 255}, prop.Uint64s())
	prop, err = manifest.NewProperty("max", manifest.PropertyTypeU64, []uint64{^uint64(0)})
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), prop.Value)
	_, err = manifest.NewProperty("big", manifest.PropertyTypeU16, []uint64{0x10000})
	assert.Error(t, err)
	_, err = manifest.NewProperty("pin", manifest.PropertyTypeGpio, []uint64{1})
	assert.ErrorIs(t, err, manifest.ErrInvalidPropertyType)
}

func TestDeviceProperty(t *testing.T) {
	board, err := parse(test.MustEncodeBoard("oledc"))
	require.NoError(t, err)
	dev := board.Devices[0]
	prop, ok := dev.Property("rotate")
	require.True(t, ok)
	assert.Equal(t, uint32(180), prop.Value)
	_, ok = dev.Property("missing")
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	data := test.MustEncodeBoard("thermo3")
	fp := manifest.NewFingerprint(data)
	assert.False(t, fp.IsZero())
	assert.True(t, manifest.Fingerprint{}.IsZero())
	assert.Len(t, fp.String(), manifest.FingerprintSize*2)
	encoded := fp.Bech32()
	assert.Regexp(t, "^"+manifest.FingerprintPrefix+"1", encoded)
	parsed, err := manifest.ParseFingerprint(encoded)
	require.NoError(t, err)
	assert.Equal(t, fp, parsed)
	jsonData, err := json.Marshal(fp)
	require.NoError(t, err)
	assert.Equal(t, `"`+fp.String()+`"`, string(jsonData))
}

func TestParseFingerprintErrors(t *testing.T) {
	_, err := manifest.ParseFingerprint("not a fingerprint")
	assert.Error(t, err)
	// Valid bech32 with another prefix
	_, err = manifest.ParseFingerprint("board1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0sc7hyjk")
	assert.ErrorContains(t, err, "prefix")
	// Valid prefix with a 20 byte payload
	_, err = manifest.ParseFingerprint("mnfst1qqqsyqcyq5rqwzqfpg9scrgwpugpzysnpd6j40")
	assert.ErrorContains(t, err, "expected 32 bytes")
}

func TestFingerprintCbor(t *testing.T) {
	fp := manifest.NewFingerprint([]byte("manifest"))
	data, err := cbor.Encode(fp)
	require.NoError(t, err)
	assert.Equal(t, byte(0x58), data[0])
	var decoded manifest.Fingerprint
	_, err = cbor.Decode(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, fp, decoded)
	_, err = cbor.Decode(test.DecodeHexString("43010203"), &decoded)
	assert.Error(t, err)
}
