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
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/blinklabs-io/gomikrobus/builder"
	"github.com/blinklabs-io/gomikrobus/internal/test"
	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func parse(data []byte, opts ...manifest.ParserOptionFunc) (*manifest.Board, error) {
	opts = append([]manifest.ParserOptionFunc{manifest.WithLogger(discardLogger)}, opts...)
	return manifest.Parse(data, opts...)
}

func writeAll(t *testing.T, errs ...error) {
	t.Helper()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

// sensorManifest builds a board with one I2C device carrying one property and one gpio
func sensorManifest(t *testing.T) []byte {
	w := test.NewWriter(1, 1)
	writeAll(
		t,
		w.String(1, "Sensor Click"),
		w.String(2, "bmp280"),
		w.String(3, "rate"),
		w.String(4, "reset"),
		w.PropertyValues(1, manifest.PropertyTypeU32, 3, []uint64{100}),
		w.Property(2, manifest.PropertyTypeGpio, 4, 1, []byte{5}),
		w.Link(10, []uint8{1}),
		w.Link(11, []uint8{2}),
		w.Device(builder.DeviceDescriptor{
			Id:               1,
			DriverStringId:   2,
			Protocol:         manifest.ProtocolI2c,
			Reg:              0x77,
			MaxSpeedHz:       100000,
			NumProperties:    1,
			PropLink:         10,
			NumGpioResources: 1,
			GpioLink:         11,
		}),
	)
	return test.MustBytes(w)
}

func TestParseBoardAndDriverNames(t *testing.T) {
	w := test.NewWriter(2, 1)
	writeAll(
		t,
		w.String(1, "TempSensor"),
		w.String(2, "ClickBoardX"),
		w.Device(builder.DeviceDescriptor{
			Id:             1,
			DriverStringId: 1,
			Protocol:       manifest.ProtocolSpi,
		}),
	)
	board, err := parse(test.MustBytes(w))
	require.NoError(t, err)
	assert.Equal(t, "ClickBoardX", board.Name)
	assert.Equal(t, uint8(1), board.NumDevices)
	require.Len(t, board.Devices, 1)
	dev := board.Devices[0]
	assert.Equal(t, "TempSensor", dev.DriverName)
	assert.Equal(t, manifest.ProtocolSpi, dev.Protocol)
	assert.Nil(t, dev.Properties)
	assert.Nil(t, dev.Gpios)
}

func TestParseSensor(t *testing.T) {
	data := sensorManifest(t)
	board, err := parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Sensor Click", board.Name)
	assert.Equal(t, manifest.NewFingerprint(data), board.Fingerprint)
	require.Len(t, board.Devices, 1)
	dev := board.Devices[0]
	assert.Equal(t, "bmp280", dev.DriverName)
	assert.Equal(t, manifest.ProtocolI2c, dev.Protocol)
	assert.Equal(t, uint8(0x77), dev.Reg)
	assert.Equal(t, uint32(100000), dev.MaxSpeedHz)
	assert.Equal(
		t,
		[]manifest.Property{{Name: "rate", Type: manifest.PropertyTypeU32, Value: uint32(100)}},
		dev.Properties,
	)
	assert.Equal(t, []manifest.GpioLookup{{Pin: 5, Name: "reset"}}, dev.Gpios)
}

func TestParseDoesNotAliasInput(t *testing.T) {
	w := test.NewWriter(1, 1)
	writeAll(
		t,
		w.String(1, "Alias Click"),
		w.String(2, "levels"),
		w.PropertyValues(1, manifest.PropertyTypeU8, 2, []uint64{1, 2, 3}),
		w.Link(2, []uint8{1}),
		w.Device(builder.DeviceDescriptor{Id: 1, NumProperties: 1, PropLink: 2}),
	)
	data := test.MustBytes(w)
	board, err := parse(data)
	require.NoError(t, err)
	clear(data)
	assert.Equal(t, "Alias Click", board.Name)
	assert.Equal(t, []uint8{1, 2, 3}, board.Devices[0].Properties[0].Value)
}

func TestParseDeviceOrder(t *testing.T) {
	w := test.NewWriter(1, 2)
	writeAll(
		t,
		w.Device(builder.DeviceDescriptor{Id: 7, Protocol: manifest.ProtocolUart}),
		w.String(1, "Order Click"),
		w.Device(builder.DeviceDescriptor{Id: 3, Protocol: manifest.ProtocolI2c}),
	)
	board, err := parse(test.MustBytes(w))
	require.NoError(t, err)
	require.Len(t, board.Devices, 2)
	assert.Equal(t, uint8(7), board.Devices[0].Id)
	assert.Equal(t, uint8(3), board.Devices[1].Id)
}

func TestParseDeviceCountMismatch(t *testing.T) {
	w := test.NewWriter(1, 3)
	writeAll(
		t,
		w.String(1, "Short Click"),
		w.Device(builder.DeviceDescriptor{Id: 1, Protocol: manifest.ProtocolI2c}),
	)
	board, err := parse(test.MustBytes(w))
	require.NoError(t, err)
	assert.Equal(t, uint8(3), board.NumDevices)
	assert.Len(t, board.Devices, 1)
}

func TestParseIgnoresUnreferencedDescriptors(t *testing.T) {
	w := test.NewWriter(1, 1)
	writeAll(
		t,
		w.String(1, "Spare Click"),
		w.String(9, "unused"),
		w.PropertyValues(4, manifest.PropertyTypeU8, 0, []uint64{1}),
		w.Device(builder.DeviceDescriptor{Id: 1, Protocol: manifest.ProtocolSpi}),
	)
	board, err := parse(test.MustBytes(w))
	require.NoError(t, err)
	assert.Len(t, board.Devices, 1)
}

func TestParseBoardNameNotFound(t *testing.T) {
	w := test.NewWriter(5, 1)
	writeAll(
		t,
		w.String(1, "Click"),
		w.Device(builder.DeviceDescriptor{Id: 1}),
	)
	_, err := parse(test.MustBytes(w))
	require.ErrorIs(t, err, manifest.ErrNotFound)
	var lookupErr *manifest.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, manifest.DescriptorTypeString, lookupErr.Type)
	assert.Equal(t, uint8(5), lookupErr.Id)
}

func TestParseHeaderErrors(t *testing.T) {
	valid := sensorManifest(t)
	testDefs := []struct {
		name     string
		data     func() []byte
		expected error
	}{
		{
			name:     "empty",
			data:     func() []byte { return nil },
			expected: manifest.ErrTruncatedFrame,
		},
		{
			name:     "short header",
			data:     func() []byte { return valid[:manifest.HeaderSize-1] },
			expected: manifest.ErrTruncatedFrame,
		},
		{
			name: "declared size too large",
			data: func() []byte {
				data := append([]byte(nil), valid...)
				data[0]++
				return data
			},
			expected: manifest.ErrSizeMismatch,
		},
		{
			name: "trailing bytes after declared size",
			data: func() []byte {
				return append(append([]byte(nil), valid...), 0, 0, 0, 0)
			},
			expected: manifest.ErrSizeMismatch,
		},
		{
			name: "unsupported major version",
			data: func() []byte {
				data := append([]byte(nil), valid...)
				data[2] = manifest.VersionMajorSupported + 1
				return data
			},
			expected: manifest.ErrUnsupportedVersion,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			board, err := parse(testDef.data())
			assert.Nil(t, board)
			require.ErrorIs(t, err, testDef.expected)
			var parseErr *manifest.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, manifest.ParseStateUnstarted, parseErr.State)
		})
	}
}

func TestParseNewerMinorVersion(t *testing.T) {
	data := sensorManifest(t)
	data[3] = manifest.VersionMinorSupported + 1
	_, err := parse(data)
	assert.NoError(t, err)
}

func TestValidateHeader(t *testing.T) {
	valid := sensorManifest(t)
	assert.Equal(t, uint16(len(valid)), manifest.ValidateHeader(valid))
	// Only the header is needed
	assert.Equal(t, uint16(len(valid)), manifest.ValidateHeader(valid[:manifest.HeaderSize]))
	assert.Zero(t, manifest.ValidateHeader(nil))
	assert.Zero(t, manifest.ValidateHeader(valid[:manifest.HeaderSize-1]))
	testDefs := []struct {
		name   string
		offset int
		value  uint8
	}{
		{"unsupported major version", 2, manifest.VersionMajorSupported + 1},
		{"no board name", 4, 0},
		{"no devices", 5, 0},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			data := append([]byte(nil), valid[:manifest.HeaderSize]...)
			data[testDef.offset] = testDef.value
			assert.Zero(t, manifest.ValidateHeader(data))
		})
	}
}

func TestParseRejectsWholeManifestOnDeviceFailure(t *testing.T) {
	w := test.NewWriter(1, 2)
	writeAll(
		t,
		w.String(1, "Half Click"),
		w.Device(builder.DeviceDescriptor{Id: 1, Protocol: manifest.ProtocolI2c}),
		// Device 2 names a driver string that does not exist
		w.Device(builder.DeviceDescriptor{Id: 2, DriverStringId: 8, Protocol: manifest.ProtocolI2c}),
	)
	board, err := parse(test.MustBytes(w))
	assert.Nil(t, board)
	require.ErrorIs(t, err, manifest.ErrNotFound)
	var devErr *manifest.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, uint8(2), devErr.DeviceId)
	var parseErr *manifest.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, manifest.ParseStateDescriptorsIndexed, parseErr.State)
}

func TestParseMaxDescriptors(t *testing.T) {
	data := sensorManifest(t)
	_, err := parse(data, manifest.WithMaxDescriptors(9))
	require.NoError(t, err)
	_, err = parse(data, manifest.WithMaxDescriptors(8))
	require.ErrorIs(t, err, manifest.ErrAllocationFailure)
	var descErr *manifest.DescriptorError
	require.ErrorAs(t, err, &descErr)
	assert.Equal(t, manifest.DescriptorTypeDevice, descErr.Type)
}

func TestParserConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)
	parser := manifest.NewParser(manifest.WithLogger(discardLogger))
	data := sensorManifest(t)
	expected, err := parser.Parse(data)
	require.NoError(t, err)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			board, err := parser.Parse(data)
			if err == nil && board.Devices[0].DriverName != expected.Devices[0].DriverName {
				err = errors.New("unexpected driver name")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestParseSampleBoards(t *testing.T) {
	for _, name := range []string{"multi", "oledc", "thermo3", "weather"} {
		t.Run(name, func(t *testing.T) {
			board, err := parse(test.MustEncodeBoard(name))
			require.NoError(t, err)
			assert.NotEmpty(t, board.Name)
			assert.Len(t, board.Devices, int(board.NumDevices))
		})
	}
}
