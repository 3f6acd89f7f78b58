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
	"io"
	"sync"

	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Description is the human-editable YAML form of a click board manifest
type Description struct {
	Name         string              `json:"name" yaml:"name" validate:"required,max=255"`
	VersionMajor uint8               `json:"version_major" yaml:"version_major"`
	VersionMinor uint8               `json:"version_minor" yaml:"version_minor"`
	RstGpioState string              `json:"rst_gpio_state,omitempty" yaml:"rst_gpio_state,omitempty" validate:"omitempty,pinstate"`
	PwmGpioState string              `json:"pwm_gpio_state,omitempty" yaml:"pwm_gpio_state,omitempty" validate:"omitempty,pinstate"`
	IntGpioState string              `json:"int_gpio_state,omitempty" yaml:"int_gpio_state,omitempty" validate:"omitempty,pinstate"`
	Devices      []DeviceDescription `json:"devices" yaml:"devices" validate:"required,min=1,max=255,unique=Id,dive"`
}

type DeviceDescription struct {
	Id         uint8                 `json:"id" yaml:"id"`
	Driver     string                `json:"driver" yaml:"driver" validate:"required,max=255"`
	Protocol   string                `json:"protocol" yaml:"protocol" validate:"required,protocol"`
	Reg        uint8                 `json:"reg" yaml:"reg"`
	Irq        uint8                 `json:"irq,omitempty" yaml:"irq,omitempty"`
	IrqType    string                `json:"irq_type,omitempty" yaml:"irq_type,omitempty" validate:"omitempty,irqtype"`
	MaxSpeedHz uint32                `json:"max_speed_hz,omitempty" yaml:"max_speed_hz,omitempty"`
	Mode       uint8                 `json:"mode,omitempty" yaml:"mode,omitempty"`
	CsGpio     uint8                 `json:"cs_gpio,omitempty" yaml:"cs_gpio,omitempty"`
	Properties []PropertyDescription `json:"properties,omitempty" yaml:"properties,omitempty" validate:"max=255,dive"`
	Gpios      []GpioDescription     `json:"gpios,omitempty" yaml:"gpios,omitempty" validate:"max=255,dive"`
}

type PropertyDescription struct {
	Name  string `json:"name" yaml:"name" validate:"required,max=255"`
	Type  string `json:"type" yaml:"type" validate:"required,oneof=u8 u16 u32 u64"`
	Value Values `json:"value" yaml:"value" validate:"required,min=1,max=255"`
}

type GpioDescription struct {
	Name string `json:"name" yaml:"name" validate:"required,max=255"`
	Pin  uint8  `json:"pin" yaml:"pin"`
}

// Values accepts either a single number or a list of numbers
type Values []uint64

func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var tmp uint64
		if err := node.Decode(&tmp); err != nil {
			return err
		}
		*v = Values{tmp}
		return nil
	}
	var tmp []uint64
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	*v = tmp
	return nil
}

func (v Values) MarshalYAML() (any, error) {
	if len(v) == 1 {
		return v[0], nil
	}
	return []uint64(v), nil
}

// descriptionValidator is built once and shared by all descriptions
var descriptionValidator = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	validate := validator.New()
	for tag, valid := range map[string]func(string) bool{
		"protocol": func(s string) bool {
			_, ok := manifest.ProtocolByName(s)
			return ok
		},
		"pinstate": func(s string) bool {
			_, ok := manifest.PinStateByName(s)
			return ok
		},
		"irqtype": func(s string) bool {
			_, ok := manifest.IrqTypeByName(s)
			return ok
		},
	} {
		// Registration only fails for an empty tag or nil func
		_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
	return validate
}

// LoadDescription reads and validates a YAML board description
func LoadDescription(r io.Reader) (*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var desc Description
	if err := dec.Decode(&desc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty board description")
		}
		return nil, fmt.Errorf("decode board description: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// Validate checks the description for missing or out of range fields
func (d *Description) Validate() error {
	if err := descriptionValidator().Struct(d); err != nil {
		return fmt.Errorf("invalid board description: %w", err)
	}
	return nil
}

// Board converts the description into the resolved form that Encode accepts
func (d *Description) Board() (*manifest.Board, error) {
	board := &manifest.Board{
		Name:         d.Name,
		VersionMajor: d.VersionMajor,
		VersionMinor: d.VersionMinor,
		NumDevices:   uint8(len(d.Devices)),
	}
	var err error
	if board.RstGpioState, err = pinState(d.RstGpioState); err != nil {
		return nil, err
	}
	if board.PwmGpioState, err = pinState(d.PwmGpioState); err != nil {
		return nil, err
	}
	if board.IntGpioState, err = pinState(d.IntGpioState); err != nil {
		return nil, err
	}
	for _, devDesc := range d.Devices {
		dev, err := devDesc.device()
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", devDesc.Id, err)
		}
		board.Devices = append(board.Devices, dev)
	}
	return board, nil
}

func (d *DeviceDescription) device() (manifest.Device, error) {
	protocol, ok := manifest.ProtocolByName(d.Protocol)
	if !ok {
		return manifest.Device{}, fmt.Errorf("unknown protocol %q", d.Protocol)
	}
	irqType := manifest.IrqTypeNone
	if d.IrqType != "" {
		if irqType, ok = manifest.IrqTypeByName(d.IrqType); !ok {
			return manifest.Device{}, fmt.Errorf("unknown irq type %q", d.IrqType)
		}
	}
	dev := manifest.Device{
		Id:         d.Id,
		DriverName: d.Driver,
		Protocol:   protocol,
		Reg:        d.Reg,
		Irq:        d.Irq,
		IrqType:    irqType,
		MaxSpeedHz: d.MaxSpeedHz,
		Mode:       d.Mode,
		CsGpio:     d.CsGpio,
	}
	for _, propDesc := range d.Properties {
		propType, ok := manifest.PropertyTypeByName(propDesc.Type)
		if !ok {
			return manifest.Device{}, fmt.Errorf("property %q: unknown type %q", propDesc.Name, propDesc.Type)
		}
		prop, err := manifest.NewProperty(propDesc.Name, propType, propDesc.Value)
		if err != nil {
			return manifest.Device{}, err
		}
		dev.Properties = append(dev.Properties, prop)
	}
	for _, gpioDesc := range d.Gpios {
		dev.Gpios = append(dev.Gpios, manifest.GpioLookup{Pin: gpioDesc.Pin, Name: gpioDesc.Name})
	}
	return dev, nil
}

func pinState(name string) (manifest.PinState, error) {
	if name == "" {
		return manifest.PinStateDefault, nil
	}
	state, ok := manifest.PinStateByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown pin state %q", name)
	}
	return state, nil
}

// NewDescription converts a resolved board back into its YAML description form
func NewDescription(board *manifest.Board) *Description {
	desc := &Description{
		Name:         board.Name,
		VersionMajor: board.VersionMajor,
		VersionMinor: board.VersionMinor,
		RstGpioState: pinStateName(board.RstGpioState),
		PwmGpioState: pinStateName(board.PwmGpioState),
		IntGpioState: pinStateName(board.IntGpioState),
	}
	for _, dev := range board.Devices {
		devDesc := DeviceDescription{
			Id:         dev.Id,
			Driver:     dev.DriverName,
			Protocol:   dev.Protocol.String(),
			Reg:        dev.Reg,
			Irq:        dev.Irq,
			MaxSpeedHz: dev.MaxSpeedHz,
			Mode:       dev.Mode,
			CsGpio:     dev.CsGpio,
		}
		if dev.IrqType != manifest.IrqTypeNone {
			devDesc.IrqType = dev.IrqType.String()
		}
		for _, prop := range dev.Properties {
			devDesc.Properties = append(devDesc.Properties, PropertyDescription{
				Name:  prop.Name,
				Type:  prop.Type.String(),
				Value: prop.Uint64s(),
			})
		}
		for _, gpio := range dev.Gpios {
			devDesc.Gpios = append(devDesc.Gpios, GpioDescription{Name: gpio.Name, Pin: gpio.Pin})
		}
		desc.Devices = append(desc.Devices, devDesc)
	}
	return desc
}

func pinStateName(state manifest.PinState) string {
	if state == manifest.PinStateDefault {
		return ""
	}
	return state.String()
}
