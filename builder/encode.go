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

package builder

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/gomikrobus/manifest"
)

var (
	ErrTooManyDescriptors = errors.New("too many descriptors for 8-bit ids")
	ErrMissingValue       = errors.New("property has no value")
)

// idAllocator hands out descriptor ids starting at 1, since 0 means "absent"
type idAllocator struct {
	next int
}

func (a *idAllocator) allocate() (uint8, error) {
	if a.next >= math.MaxUint8 {
		return 0, ErrTooManyDescriptors
	}
	a.next++
	return uint8(a.next), nil
}

// Encode produces a binary manifest describing board. String and property ids
// are allocated sequentially. Every string and property is emitted once per
// reference, since the parser consumes each descriptor at most once.
//
// Single-element array properties are encoded the same way as scalars and
// decode as scalars. GPIO link arrays are tagged as gpio properties
func Encode(board *manifest.Board) ([]byte, error) {
	e := &encoder{
		w: NewWriter(manifest.Header{
			VersionMajor: board.VersionMajor,
			VersionMinor: board.VersionMinor,
			NumDevices:   board.NumDevices,
			RstGpioState: board.RstGpioState,
			PwmGpioState: board.PwmGpioState,
			IntGpioState: board.IntGpioState,
		}),
	}
	nameId, err := e.string(board.Name)
	if err != nil {
		return nil, fmt.Errorf("board name: %w", err)
	}
	e.w.header.NameStringId = nameId
	for _, dev := range board.Devices {
		if err := e.device(dev); err != nil {
			return nil, fmt.Errorf("device %d: %w", dev.Id, err)
		}
	}
	return e.w.Bytes()
}

type encoder struct {
	w       *Writer
	strings idAllocator
	props   idAllocator
}

// string emits a string descriptor and returns its id, or 0 for an empty string
func (e *encoder) string(s string) (uint8, error) {
	if s == "" {
		return 0, nil
	}
	id, err := e.strings.allocate()
	if err != nil {
		return 0, err
	}
	if err := e.w.String(id, s); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *encoder) device(dev manifest.Device) error {
	if len(dev.Properties) > math.MaxUint8 || len(dev.Gpios) > math.MaxUint8 {
		return ErrTooManyDescriptors
	}
	devDesc := DeviceDescriptor{
		Id:               dev.Id,
		Protocol:         dev.Protocol,
		Reg:              dev.Reg,
		Irq:              dev.Irq,
		IrqType:          dev.IrqType,
		MaxSpeedHz:       dev.MaxSpeedHz,
		Mode:             dev.Mode,
		CsGpio:           dev.CsGpio,
		NumProperties:    uint8(len(dev.Properties)),
		NumGpioResources: uint8(len(dev.Gpios)),
	}
	var err error
	devDesc.DriverStringId, err = e.string(dev.DriverName)
	if err != nil {
		return fmt.Errorf("driver name: %w", err)
	}
	if len(dev.Properties) > 0 {
		propIds := make([]uint8, 0, len(dev.Properties))
		for _, prop := range dev.Properties {
			propId, err := e.property(prop)
			if err != nil {
				return fmt.Errorf("property %q: %w", prop.Name, err)
			}
			propIds = append(propIds, propId)
		}
		if devDesc.PropLink, err = e.link(propIds, e.w.Link); err != nil {
			return err
		}
	}
	if len(dev.Gpios) > 0 {
		gpioIds := make([]uint8, 0, len(dev.Gpios))
		for _, gpio := range dev.Gpios {
			gpioId, err := e.gpio(gpio)
			if err != nil {
				return fmt.Errorf("gpio %q: %w", gpio.Name, err)
			}
			gpioIds = append(gpioIds, gpioId)
		}
		if devDesc.GpioLink, err = e.link(gpioIds, e.w.GpioLink); err != nil {
			return err
		}
	}
	return e.w.Device(devDesc)
}

func (e *encoder) property(prop manifest.Property) (uint8, error) {
	switch prop.Type {
	case manifest.PropertyTypeU8,
		manifest.PropertyTypeU16,
		manifest.PropertyTypeU32,
		manifest.PropertyTypeU64:
	default:
		return 0, fmt.Errorf("%w: %s", manifest.ErrInvalidPropertyType, prop.Type)
	}
	// A nil value would encode as a zero-length array, which decodes as an
	// empty slice rather than nil
	if prop.Value == nil {
		return 0, ErrMissingValue
	}
	nameId, err := e.string(prop.Name)
	if err != nil {
		return 0, err
	}
	id, err := e.props.allocate()
	if err != nil {
		return 0, err
	}
	if err := e.w.PropertyValues(id, prop.Type, nameId, prop.Uint64s()); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *encoder) gpio(gpio manifest.GpioLookup) (uint8, error) {
	nameId, err := e.string(gpio.Name)
	if err != nil {
		return 0, err
	}
	id, err := e.props.allocate()
	if err != nil {
		return 0, err
	}
	if err := e.w.Property(id, manifest.PropertyTypeGpio, nameId, 1, []byte{gpio.Pin}); err != nil {
		return 0, err
	}
	return id, nil
}

func (e *encoder) link(ids []uint8, write func(uint8, []uint8) error) (uint8, error) {
	id, err := e.props.allocate()
	if err != nil {
		return 0, err
	}
	if err := write(id, ids); err != nil {
		return 0, err
	}
	return id, nil
}
