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

import "fmt"

const (
	// VersionMajorSupported is the highest manifest major version this parser understands
	VersionMajorSupported = 0
	VersionMinorSupported = 1

	// HeaderSize is the wire size of the manifest header, including its padding
	HeaderSize = 12

	// DescriptorHeaderSize covers the size, type and pad bytes of every descriptor frame
	DescriptorHeaderSize = 4

	StringBodySize   = 2
	PropertyBodySize = 4
	DeviceBodySize   = 16

	descriptorAlign = 4
)

type DescriptorType uint8

const (
	DescriptorTypeInvalid  DescriptorType = 0x00
	DescriptorTypeString   DescriptorType = 0x02
	DescriptorTypeProperty DescriptorType = 0x06
	DescriptorTypeDevice   DescriptorType = 0x07
)

func (t DescriptorType) String() string {
	switch t {
	case DescriptorTypeString:
		return "string"
	case DescriptorTypeProperty:
		return "property"
	case DescriptorTypeDevice:
		return "device"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// minBodySize returns the fixed body size for the descriptor type, or false for unknown types
func (t DescriptorType) minBodySize() (int, bool) {
	switch t {
	case DescriptorTypeString:
		return StringBodySize, true
	case DescriptorTypeProperty:
		return PropertyBodySize, true
	case DescriptorTypeDevice:
		return DeviceBodySize, true
	default:
		return 0, false
	}
}

type PropertyType uint8

const (
	// PropertyTypeLink values are arrays of 8-bit descriptor ids
	PropertyTypeLink PropertyType = 0x01
	PropertyTypeGpio PropertyType = 0x02
	PropertyTypeU8   PropertyType = 0x03
	PropertyTypeU16  PropertyType = 0x04
	PropertyTypeU32  PropertyType = 0x05
	PropertyTypeU64  PropertyType = 0x06
)

// Width returns the size in bytes of one value element. Unknown types are framed as bytes
func (t PropertyType) Width() int {
	switch t {
	case PropertyTypeU16:
		return 2
	case PropertyTypeU32:
		return 4
	case PropertyTypeU64:
		return 8
	default:
		return 1
	}
}

func (t PropertyType) String() string {
	switch t {
	case PropertyTypeLink:
		return "link"
	case PropertyTypeGpio:
		return "gpio"
	case PropertyTypeU8:
		return "u8"
	case PropertyTypeU16:
		return "u16"
	case PropertyTypeU32:
		return "u32"
	case PropertyTypeU64:
		return "u64"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// PropertyTypeByName is the inverse of PropertyType.String for the known types
func PropertyTypeByName(name string) (PropertyType, bool) {
	for _, t := range []PropertyType{
		PropertyTypeLink,
		PropertyTypeGpio,
		PropertyTypeU8,
		PropertyTypeU16,
		PropertyTypeU32,
		PropertyTypeU64,
	} {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

type Protocol uint8

const (
	ProtocolSpi     Protocol = 0x01
	ProtocolI2c     Protocol = 0x02
	ProtocolUart    Protocol = 0x03
	ProtocolSpiGpio Protocol = 0x04
	ProtocolI2cGpio Protocol = 0x05
)

var protocolNames = map[Protocol]string{
	ProtocolSpi:     "spi",
	ProtocolI2c:     "i2c",
	ProtocolUart:    "uart",
	ProtocolSpiGpio: "spi-gpio",
	ProtocolI2cGpio: "i2c-gpio",
}

func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(p))
}

// ProtocolByName is the inverse of Protocol.String for the known protocols
func ProtocolByName(name string) (Protocol, bool) {
	for p, pName := range protocolNames {
		if pName == name {
			return p, true
		}
	}
	return 0, false
}

// PinState is the default state of one of the socket's shared pins
type PinState uint8

const (
	PinStateDefault    PinState = 0x00
	PinStateInput      PinState = 0x01
	PinStateOutputHigh PinState = 0x02
	PinStateOutputLow  PinState = 0x03
	PinStatePwm        PinState = 0x04
	PinStateSpi        PinState = 0x05
	PinStateI2c        PinState = 0x06
	PinStateUart       PinState = 0x07
)

var pinStateNames = map[PinState]string{
	PinStateDefault:    "default",
	PinStateInput:      "input",
	PinStateOutputHigh: "output-high",
	PinStateOutputLow:  "output-low",
	PinStatePwm:        "pwm",
	PinStateSpi:        "spi",
	PinStateI2c:        "i2c",
	PinStateUart:       "uart",
}

func (s PinState) String() string {
	if name, ok := pinStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(s))
}

// PinStateByName is the inverse of PinState.String for the known states
func PinStateByName(name string) (PinState, bool) {
	for s, sName := range pinStateNames {
		if sName == name {
			return s, true
		}
	}
	return 0, false
}

type IrqType uint8

const (
	IrqTypeNone        IrqType = 0x00
	IrqTypeEdgeRising  IrqType = 0x01
	IrqTypeEdgeFalling IrqType = 0x02
	IrqTypeEdgeBoth    IrqType = 0x03
	IrqTypeLevelHigh   IrqType = 0x04
	IrqTypeLevelLow    IrqType = 0x08
)

var irqTypeNames = map[IrqType]string{
	IrqTypeNone:        "none",
	IrqTypeEdgeRising:  "edge-rising",
	IrqTypeEdgeFalling: "edge-falling",
	IrqTypeEdgeBoth:    "edge-both",
	IrqTypeLevelHigh:   "level-high",
	IrqTypeLevelLow:    "level-low",
}

func (t IrqType) String() string {
	if name, ok := irqTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", uint8(t))
}

// IrqTypeByName is the inverse of IrqType.String for the known trigger types
func IrqTypeByName(name string) (IrqType, bool) {
	for t, tName := range irqTypeNames {
		if tName == name {
			return t, true
		}
	}
	return 0, false
}

func alignUp(size int) int {
	return (size + descriptorAlign - 1) &^ (descriptorAlign - 1)
}
