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
	"encoding/binary"
	"fmt"
)

// Header is the fixed-size record at the start of every manifest
type Header struct {
	// Size is the total manifest size in bytes, including the header
	Size         uint16
	VersionMajor uint8
	VersionMinor uint8
	// NameStringId references the string descriptor holding the board name
	NameStringId uint8
	NumDevices   uint8
	RstGpioState PinState
	PwmGpioState PinState
	IntGpioState PinState
}

// DecodeHeader decodes the manifest header from the start of data. It only
// checks that enough bytes are present
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf(
			"%w: manifest header needs %d bytes, got %d",
			ErrTruncatedFrame,
			HeaderSize,
			len(data),
		)
	}
	return Header{
		Size:         binary.LittleEndian.Uint16(data[0:2]),
		VersionMajor: data[2],
		VersionMinor: data[3],
		NameStringId: data[4],
		NumDevices:   data[5],
		RstGpioState: PinState(data[6]),
		PwmGpioState: PinState(data[7]),
		IntGpioState: PinState(data[8]),
	}, nil
}

// MarshalBinary returns the wire encoding of the header, including padding
func (h Header) MarshalBinary() ([]byte, error) {
	ret := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(ret[0:2], h.Size)
	ret[2] = h.VersionMajor
	ret[3] = h.VersionMinor
	ret[4] = h.NameStringId
	ret[5] = h.NumDevices
	ret[6] = uint8(h.RstGpioState)
	ret[7] = uint8(h.PwmGpioState)
	ret[8] = uint8(h.IntGpioState)
	return ret, nil
}

func (h Header) checkVersion() error {
	if h.VersionMajor > VersionMajorSupported {
		return fmt.Errorf(
			"%w: %d.%d (supported major version %d)",
			ErrUnsupportedVersion,
			h.VersionMajor,
			h.VersionMinor,
			VersionMajorSupported,
		)
	}
	return nil
}

// ValidateHeader performs the header-level checks on a manifest and returns
// the declared total manifest size, or 0 if the header is unusable. It is
// meant for callers that need to size a buffer before the full parse
func ValidateHeader(data []byte) uint16 {
	header, err := DecodeHeader(data)
	if err != nil {
		return 0
	}
	if err := header.checkVersion(); err != nil {
		return 0
	}
	if header.NameStringId < 1 || header.NumDevices < 1 {
		return 0
	}
	return header.Size
}
