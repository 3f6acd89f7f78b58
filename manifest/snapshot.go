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

	"github.com/blinklabs-io/gomikrobus/cbor"
)

// Wire types for the CBOR board snapshot. Property values are widened so that
// the element width is carried by the property type alone

type boardSnapshot struct {
	cbor.StructAsArray
	Name         string
	VersionMajor uint8
	VersionMinor uint8
	NumDevices   uint8
	RstGpioState PinState
	PwmGpioState PinState
	IntGpioState PinState
	Devices      []deviceSnapshot
	Fingerprint  Fingerprint
}

type deviceSnapshot struct {
	cbor.StructAsArray
	Id         uint8
	DriverName string
	Protocol   Protocol
	Reg        uint8
	Irq        uint8
	IrqType    IrqType
	MaxSpeedHz uint32
	Mode       uint8
	CsGpio     uint8
	Properties []propertySnapshot
	Gpios      []gpioSnapshot
}

type propertySnapshot struct {
	cbor.StructAsArray
	Name   string
	Type   PropertyType
	Array  bool
	Values []uint64
}

type gpioSnapshot struct {
	cbor.StructAsArray
	Pin  uint8
	Name string
}

func (b *Board) MarshalCBOR() ([]byte, error) {
	tmp := boardSnapshot{
		Name:         b.Name,
		VersionMajor: b.VersionMajor,
		VersionMinor: b.VersionMinor,
		NumDevices:   b.NumDevices,
		RstGpioState: b.RstGpioState,
		PwmGpioState: b.PwmGpioState,
		IntGpioState: b.IntGpioState,
		Fingerprint:  b.Fingerprint,
	}
	if b.Devices != nil {
		tmp.Devices = make([]deviceSnapshot, 0, len(b.Devices))
	}
	for _, dev := range b.Devices {
		devTmp := deviceSnapshot{
			Id:         dev.Id,
			DriverName: dev.DriverName,
			Protocol:   dev.Protocol,
			Reg:        dev.Reg,
			Irq:        dev.Irq,
			IrqType:    dev.IrqType,
			MaxSpeedHz: dev.MaxSpeedHz,
			Mode:       dev.Mode,
			CsGpio:     dev.CsGpio,
		}
		if dev.Properties != nil {
			devTmp.Properties = make([]propertySnapshot, 0, len(dev.Properties))
		}
		for _, prop := range dev.Properties {
			devTmp.Properties = append(
				devTmp.Properties,
				propertySnapshot{
					Name:   prop.Name,
					Type:   prop.Type,
					Array:  prop.IsArray(),
					Values: prop.Uint64s(),
				},
			)
		}
		if dev.Gpios != nil {
			devTmp.Gpios = make([]gpioSnapshot, 0, len(dev.Gpios))
		}
		for _, gpio := range dev.Gpios {
			devTmp.Gpios = append(
				devTmp.Gpios,
				gpioSnapshot{Pin: gpio.Pin, Name: gpio.Name},
			)
		}
		tmp.Devices = append(tmp.Devices, devTmp)
	}
	return cbor.Encode(&tmp)
}

// boardSnapshotFields is the number of fields in a board snapshot
const boardSnapshotFields = 9

func (b *Board) UnmarshalCBOR(data []byte) error {
	fields, err := cbor.ListLength(data)
	if err != nil {
		return fmt.Errorf("board snapshot: %w", err)
	}
	if fields != boardSnapshotFields {
		return fmt.Errorf(
			"board snapshot: expected %d fields, got %d",
			boardSnapshotFields,
			fields,
		)
	}
	var tmp boardSnapshot
	if _, err := cbor.Decode(data, &tmp); err != nil {
		return err
	}
	ret := Board{
		Name:         tmp.Name,
		VersionMajor: tmp.VersionMajor,
		VersionMinor: tmp.VersionMinor,
		NumDevices:   tmp.NumDevices,
		RstGpioState: tmp.RstGpioState,
		PwmGpioState: tmp.PwmGpioState,
		IntGpioState: tmp.IntGpioState,
		Fingerprint:  tmp.Fingerprint,
	}
	if tmp.Devices != nil {
		ret.Devices = make([]Device, 0, len(tmp.Devices))
	}
	for _, devTmp := range tmp.Devices {
		dev := Device{
			Id:         devTmp.Id,
			DriverName: devTmp.DriverName,
			Protocol:   devTmp.Protocol,
			Reg:        devTmp.Reg,
			Irq:        devTmp.Irq,
			IrqType:    devTmp.IrqType,
			MaxSpeedHz: devTmp.MaxSpeedHz,
			Mode:       devTmp.Mode,
			CsGpio:     devTmp.CsGpio,
		}
		if devTmp.Properties != nil {
			dev.Properties = make([]Property, 0, len(devTmp.Properties))
		}
		for _, propTmp := range devTmp.Properties {
			prop, err := newProperty(
				propTmp.Name,
				propTmp.Type,
				propTmp.Values,
				propTmp.Array,
			)
			if err != nil {
				return fmt.Errorf("device %d: %w", devTmp.Id, err)
			}
			dev.Properties = append(dev.Properties, prop)
		}
		if devTmp.Gpios != nil {
			dev.Gpios = make([]GpioLookup, 0, len(devTmp.Gpios))
		}
		for _, gpioTmp := range devTmp.Gpios {
			dev.Gpios = append(
				dev.Gpios,
				GpioLookup{Pin: gpioTmp.Pin, Name: gpioTmp.Name},
			)
		}
		ret.Devices = append(ret.Devices, dev)
	}
	*b = ret
	return nil
}
