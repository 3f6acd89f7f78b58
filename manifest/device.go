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

// deviceDescriptor is the decoded fixed body of a device descriptor
type deviceDescriptor struct {
	Id               uint8
	DriverStringId   uint8
	Protocol         Protocol
	Reg              uint8
	Irq              uint8
	IrqType          IrqType
	MaxSpeedHz       uint32
	Mode             uint8
	CsGpio           uint8
	NumGpioResources uint8
	GpioLink         uint8
	NumProperties    uint8
	PropLink         uint8
}

func decodeDeviceDescriptor(desc *descriptor) deviceDescriptor {
	body := desc.body
	return deviceDescriptor{
		Id:               body[0],
		DriverStringId:   body[1],
		Protocol:         Protocol(body[2]),
		Reg:              body[3],
		Irq:              body[4],
		IrqType:          IrqType(body[5]),
		MaxSpeedHz:       binary.LittleEndian.Uint32(body[6:10]),
		Mode:             body[10],
		CsGpio:           body[11],
		NumGpioResources: body[12],
		GpioLink:         body[13],
		NumProperties:    body[14],
		PropLink:         body[15],
	}
}

// assembleDevice resolves everything a device descriptor references
func (r *resolver) assembleDevice(desc *descriptor) (Device, error) {
	devDesc := decodeDeviceDescriptor(desc)
	r.logger.Debug(
		"assembling device",
		"component", "manifest",
		"id", devDesc.Id,
		"protocol", devDesc.Protocol.String(),
		"reg", devDesc.Reg,
		"max_speed_hz", devDesc.MaxSpeedHz,
		"irq", devDesc.Irq,
		"irq_type", devDesc.IrqType.String(),
		"num_properties", devDesc.NumProperties,
		"num_gpio_resources", devDesc.NumGpioResources,
	)
	dev := Device{
		Id:         devDesc.Id,
		Protocol:   devDesc.Protocol,
		Reg:        devDesc.Reg,
		Irq:        devDesc.Irq,
		IrqType:    devDesc.IrqType,
		MaxSpeedHz: devDesc.MaxSpeedHz,
		Mode:       devDesc.Mode,
		CsGpio:     devDesc.CsGpio,
	}
	var err error
	dev.DriverName, err = r.resolveString(devDesc.DriverStringId)
	if err != nil {
		return Device{}, deviceError(devDesc.Id, fmt.Errorf("driver name: %w", err))
	}
	if devDesc.NumProperties > 0 {
		propIds, err := r.resolveLink(
			devDesc.PropLink,
			int(devDesc.NumProperties),
			PropertyTypeLink,
		)
		if err != nil {
			return Device{}, deviceError(devDesc.Id, fmt.Errorf("property link: %w", err))
		}
		dev.Properties, err = r.resolveProperties(propIds)
		if err != nil {
			return Device{}, deviceError(devDesc.Id, err)
		}
		if len(dev.Properties) != int(devDesc.NumProperties) {
			return Device{}, deviceError(
				devDesc.Id,
				fmt.Errorf(
					"%w: resolved %d properties, device declares %d",
					ErrLinkCountMismatch,
					len(dev.Properties),
					devDesc.NumProperties,
				),
			)
		}
	}
	if devDesc.NumGpioResources > 0 {
		gpioIds, err := r.resolveLink(
			devDesc.GpioLink,
			int(devDesc.NumGpioResources),
			PropertyTypeGpio,
			PropertyTypeLink,
		)
		if err != nil {
			return Device{}, deviceError(devDesc.Id, fmt.Errorf("gpio link: %w", err))
		}
		dev.Gpios, err = r.resolveGpios(gpioIds)
		if err != nil {
			return Device{}, deviceError(devDesc.Id, err)
		}
	}
	return dev, nil
}

// resolveGpios builds the GPIO lookup entries for the given property ids. GPIO
// properties hold the pin number in their first value byte
func (r *resolver) resolveGpios(ids []uint8) ([]GpioLookup, error) {
	ret := make([]GpioLookup, 0, len(ids))
	for _, id := range ids {
		desc, err := r.index.take(DescriptorTypeProperty, id)
		if err != nil {
			return nil, &LookupError{
				Type: DescriptorTypeProperty,
				Id:   id,
				Err:  ErrGpioResourceNotFound,
			}
		}
		value := desc.propertyValue()
		if desc.propertyLength() < 1 || len(value) < 1 {
			return nil, &LookupError{
				Type: DescriptorTypeProperty,
				Id:   id,
				Err:  fmt.Errorf("%w: gpio property has no pin value", ErrSizeMismatch),
			}
		}
		name, err := r.resolveString(desc.propertyNameId())
		if err != nil {
			return nil, fmt.Errorf("gpio %d name: %w", id, err)
		}
		r.logger.Debug(
			"resolved gpio",
			"component", "manifest",
			"id", id,
			"pin", value[0],
			"name", name,
		)
		ret = append(ret, GpioLookup{Pin: value[0], Name: name})
	}
	return ret, nil
}

func deviceError(id uint8, err error) error {
	return &DeviceError{DeviceId: id, Err: err}
}
