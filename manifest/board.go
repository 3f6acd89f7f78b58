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
	"fmt"

	"github.com/jinzhu/copier"
)

// Board is the fully resolved description of a click board. It owns all of its
// data and does not reference the manifest buffer it was parsed from
type Board struct {
	Name         string
	VersionMajor uint8
	VersionMinor uint8
	// NumDevices is the device count declared in the manifest header
	NumDevices   uint8
	RstGpioState PinState
	PwmGpioState PinState
	IntGpioState PinState
	Devices      []Device
	// Fingerprint identifies the manifest the board was parsed from
	Fingerprint Fingerprint
}

// Clone returns a deep copy of the board
func (b *Board) Clone() (*Board, error) {
	ret := &Board{}
	// Zero fields are skipped so that nil slices stay nil in the copy
	opts := copier.Option{DeepCopy: true, IgnoreEmpty: true}
	if err := copier.CopyWithOption(ret, b, opts); err != nil {
		return nil, fmt.Errorf("clone board: %w", err)
	}
	return ret, nil
}

// Device is one logical device on the board
type Device struct {
	Id         uint8
	DriverName string
	Protocol   Protocol
	// Reg is the chip select or bus address, depending on the protocol
	Reg        uint8
	Irq        uint8
	IrqType    IrqType
	MaxSpeedHz uint32
	Mode       uint8
	CsGpio     uint8
	Properties []Property
	Gpios      []GpioLookup
}

// Property returns the first property with the given name
func (d *Device) Property(name string) (Property, bool) {
	for _, prop := range d.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// Property is a named, typed configuration value attached to a device.
//
// Value holds a uint8, uint16, uint32 or uint64 for single-element properties
// and a slice of the same element type otherwise
type Property struct {
	Name  string
	Type  PropertyType
	Value any
}

// IsArray reports whether the property holds an array value
func (p Property) IsArray() bool {
	switch p.Value.(type) {
	case []uint8, []uint16, []uint32, []uint64:
		return true
	default:
		return false
	}
}

// Len returns the number of value elements
func (p Property) Len() int {
	switch v := p.Value.(type) {
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []uint64:
		return len(v)
	case nil:
		return 0
	default:
		return 1
	}
}

// Uint64s returns the value elements widened to uint64
func (p Property) Uint64s() []uint64 {
	switch v := p.Value.(type) {
	case uint8:
		return []uint64{uint64(v)}
	case uint16:
		return []uint64{uint64(v)}
	case uint32:
		return []uint64{uint64(v)}
	case uint64:
		return []uint64{v}
	case []uint8:
		return widen(v)
	case []uint16:
		return widen(v)
	case []uint32:
		return widen(v)
	case []uint64:
		return widen(v)
	default:
		return nil
	}
}

func widen[T uint8 | uint16 | uint32 | uint64](values []T) []uint64 {
	ret := make([]uint64, len(values))
	for i, v := range values {
		ret[i] = uint64(v)
	}
	return ret
}

// NewProperty builds a property of the given type from widened values. A
// single value produces a scalar, anything else an array
func NewProperty(name string, propType PropertyType, values []uint64) (Property, error) {
	return newProperty(name, propType, values, len(values) != 1)
}

func newProperty(name string, propType PropertyType, values []uint64, array bool) (Property, error) {
	ret := Property{Name: name, Type: propType}
	switch propType {
	case PropertyTypeU8:
		ret.Value = narrow[uint8](values, array)
	case PropertyTypeU16:
		ret.Value = narrow[uint16](values, array)
	case PropertyTypeU32:
		ret.Value = narrow[uint32](values, array)
	case PropertyTypeU64:
		ret.Value = narrow[uint64](values, array)
	default:
		return Property{}, fmt.Errorf("%w: %s", ErrInvalidPropertyType, propType)
	}
	maxValue := ^uint64(0) >> (64 - 8*propType.Width())
	for _, v := range values {
		if v > maxValue {
			return Property{}, fmt.Errorf(
				"property %q: value %d does not fit in %s",
				name,
				v,
				propType,
			)
		}
	}
	return ret, nil
}

func narrow[T uint8 | uint16 | uint32 | uint64](values []uint64, array bool) any {
	ret := make([]T, len(values))
	for i, v := range values {
		ret[i] = T(v)
	}
	if !array && len(ret) == 1 {
		return ret[0]
	}
	return ret
}

// GpioLookup maps a hardware pin on the socket to the logical name the device driver uses for it
type GpioLookup struct {
	Pin  uint8
	Name string
}
