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

package registration

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gomikrobus/manifest"
)

var (
	ErrUnsupportedProtocol = errors.New("unsupported bus protocol")
	ErrInvalidAddress      = errors.New("invalid i2c address")
	ErrInvalidMode         = errors.New("invalid spi mode")
)

const (
	maxI2cAddress = 0x7f
	maxSpiMode    = 3
)

// BusDevice is the registration record for one resolved device. Name identifies
// the device on the board as "<driver>.<id>". Address is only set for I2C
// devices and ChipSelect, CsGpio and Mode only for SPI devices. MaxSpeedHz is
// the bus clock, or the baud rate for UART devices
type BusDevice struct {
	Name       string            `json:"name" yaml:"name"`
	Id         uint8             `json:"id" yaml:"id"`
	Driver     string            `json:"driver" yaml:"driver"`
	Protocol   manifest.Protocol `json:"-" yaml:"-"`
	Bus        string            `json:"bus" yaml:"bus"`
	Address    uint8             `json:"address,omitempty" yaml:"address,omitempty"`
	ChipSelect uint8             `json:"chip_select,omitempty" yaml:"chip_select,omitempty"`
	CsGpio     uint8             `json:"cs_gpio,omitempty" yaml:"cs_gpio,omitempty"`
	Mode       uint8             `json:"mode,omitempty" yaml:"mode,omitempty"`
	MaxSpeedHz uint32            `json:"max_speed_hz,omitempty" yaml:"max_speed_hz,omitempty"`
	Irq        *IrqRequest       `json:"irq,omitempty" yaml:"irq,omitempty"`
	Properties []PropertyEntry   `json:"properties,omitempty" yaml:"properties,omitempty"`
	Gpios      *GpioLookupTable  `json:"gpios,omitempty" yaml:"gpios,omitempty"`
}

// IrqRequest describes the interrupt line a device needs
type IrqRequest struct {
	Pin     uint8  `json:"pin" yaml:"pin"`
	Trigger string `json:"trigger" yaml:"trigger"`
}

// PropertyEntry is a named configuration value attached to a device
type PropertyEntry struct {
	Name   string   `json:"name" yaml:"name"`
	Type   string   `json:"type" yaml:"type"`
	Values []uint64 `json:"values" yaml:"values,flow"`
}

// GpioLookupTable maps socket pins to the connection names a driver requests them by
type GpioLookupTable struct {
	DevId string          `json:"dev_id" yaml:"dev_id"`
	Table []GpioLookupRow `json:"table" yaml:"table"`
}

type GpioLookupRow struct {
	ChipHwnum uint8  `json:"chip_hwnum" yaml:"chip_hwnum"`
	ConId     string `json:"con_id" yaml:"con_id"`
}

// NewBusDevice builds the registration record for dev
func NewBusDevice(dev *manifest.Device) (*BusDevice, error) {
	ret := &BusDevice{
		Name:       fmt.Sprintf("%s.%d", dev.DriverName, dev.Id),
		Id:         dev.Id,
		Driver:     dev.DriverName,
		Protocol:   dev.Protocol,
		Bus:        dev.Protocol.String(),
		MaxSpeedHz: dev.MaxSpeedHz,
	}
	switch dev.Protocol {
	case manifest.ProtocolSpi, manifest.ProtocolSpiGpio:
		if dev.Mode > maxSpiMode {
			return nil, fmt.Errorf("device %d: %w: %d", dev.Id, ErrInvalidMode, dev.Mode)
		}
		ret.ChipSelect = dev.Reg
		ret.CsGpio = dev.CsGpio
		ret.Mode = dev.Mode
	case manifest.ProtocolI2c, manifest.ProtocolI2cGpio:
		if dev.Reg > maxI2cAddress {
			return nil, fmt.Errorf("device %d: %w: 0x%02x", dev.Id, ErrInvalidAddress, dev.Reg)
		}
		ret.Address = dev.Reg
	case manifest.ProtocolUart:
	default:
		return nil, fmt.Errorf("device %d: %w: %s", dev.Id, ErrUnsupportedProtocol, dev.Protocol)
	}
	if dev.IrqType != manifest.IrqTypeNone {
		ret.Irq = &IrqRequest{Pin: dev.Irq, Trigger: dev.IrqType.String()}
	}
	for _, prop := range dev.Properties {
		ret.Properties = append(ret.Properties, PropertyEntry{
			Name:   prop.Name,
			Type:   prop.Type.String(),
			Values: prop.Uint64s(),
		})
	}
	if len(dev.Gpios) > 0 {
		ret.Gpios = &GpioLookupTable{DevId: ret.Name}
		for _, gpio := range dev.Gpios {
			ret.Gpios.Table = append(ret.Gpios.Table, GpioLookupRow{
				ChipHwnum: gpio.Pin,
				ConId:     gpio.Name,
			})
		}
	}
	return ret, nil
}

// Plan builds the registration records for every device on the board, in board order
func Plan(board *manifest.Board) ([]*BusDevice, error) {
	ret := make([]*BusDevice, 0, len(board.Devices))
	for i := range board.Devices {
		busDev, err := NewBusDevice(&board.Devices[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, busDev)
	}
	return ret, nil
}
