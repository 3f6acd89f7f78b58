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
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/gomikrobus/manifest"
)

// DeviceDescriptor holds the wire fields of a device descriptor
type DeviceDescriptor struct {
	Id               uint8
	DriverStringId   uint8
	Protocol         manifest.Protocol
	Reg              uint8
	Irq              uint8
	IrqType          manifest.IrqType
	MaxSpeedHz       uint32
	Mode             uint8
	CsGpio           uint8
	NumGpioResources uint8
	GpioLink         uint8
	NumProperties    uint8
	PropLink         uint8
}

// Writer assembles a manifest frame by frame. It performs only the checks
// needed to produce encodable frames, so it can also build malformed manifests
type Writer struct {
	header manifest.Header
	frames [][]byte
}

// NewWriter returns a Writer for a manifest with the given header. The header
// Size field is filled in by Bytes
func NewWriter(header manifest.Header) *Writer {
	return &Writer{header: header}
}

// String appends a string descriptor
func (w *Writer) String(id uint8, s string) error {
	if len(s) > math.MaxUint8 {
		return fmt.Errorf("string %d: length %d exceeds %d", id, len(s), math.MaxUint8)
	}
	body := make([]byte, 0, manifest.StringBodySize+len(s))
	body = append(body, id, uint8(len(s)))
	body = append(body, s...)
	return w.frame(manifest.DescriptorTypeString, body, true)
}

// Property appends a property descriptor with raw value bytes. length is the
// element count written to the descriptor
func (w *Writer) Property(
	id uint8,
	propType manifest.PropertyType,
	nameStringId uint8,
	length uint8,
	value []byte,
) error {
	body := make([]byte, 0, manifest.PropertyBodySize+len(value))
	body = append(body, id, uint8(propType), nameStringId, length)
	body = append(body, value...)
	return w.frame(manifest.DescriptorTypeProperty, body, true)
}

// PropertyValues appends a property descriptor, encoding values with the width of propType
func (w *Writer) PropertyValues(
	id uint8,
	propType manifest.PropertyType,
	nameStringId uint8,
	values []uint64,
) error {
	if len(values) > math.MaxUint8 {
		return fmt.Errorf("property %d: %d values exceed %d", id, len(values), math.MaxUint8)
	}
	width := propType.Width()
	value := make([]byte, len(values)*width)
	for i, v := range values {
		elem := value[i*width : (i+1)*width]
		switch width {
		case 1:
			elem[0] = uint8(v)
		case 2:
			binary.LittleEndian.PutUint16(elem, uint16(v))
		case 4:
			binary.LittleEndian.PutUint32(elem, uint32(v))
		default:
			binary.LittleEndian.PutUint64(elem, v)
		}
	}
	return w.Property(id, propType, nameStringId, uint8(len(values)), value)
}

// Link appends a link property listing the given descriptor ids
func (w *Writer) Link(id uint8, ids []uint8) error {
	if len(ids) > math.MaxUint8 {
		return fmt.Errorf("link %d: %d ids exceed %d", id, len(ids), math.MaxUint8)
	}
	return w.Property(id, manifest.PropertyTypeLink, 0, uint8(len(ids)), ids)
}

// GpioLink appends a gpio-tagged property listing the ids of a device's gpio
// properties
func (w *Writer) GpioLink(id uint8, ids []uint8) error {
	if len(ids) > math.MaxUint8 {
		return fmt.Errorf("gpio link %d: %d ids exceed %d", id, len(ids), math.MaxUint8)
	}
	return w.Property(id, manifest.PropertyTypeGpio, 0, uint8(len(ids)), ids)
}

// Device appends a device descriptor
func (w *Writer) Device(dev DeviceDescriptor) error {
	body := make([]byte, manifest.DeviceBodySize)
	body[0] = dev.Id
	body[1] = dev.DriverStringId
	body[2] = uint8(dev.Protocol)
	body[3] = dev.Reg
	body[4] = dev.Irq
	body[5] = uint8(dev.IrqType)
	binary.LittleEndian.PutUint32(body[6:10], dev.MaxSpeedHz)
	body[10] = dev.Mode
	body[11] = dev.CsGpio
	body[12] = dev.NumGpioResources
	body[13] = dev.GpioLink
	body[14] = dev.NumProperties
	body[15] = dev.PropLink
	return w.frame(manifest.DescriptorTypeDevice, body, false)
}

// Raw appends pre-encoded bytes as-is
func (w *Writer) Raw(frame []byte) {
	w.frames = append(w.frames, frame)
}

func (w *Writer) frame(descType manifest.DescriptorType, body []byte, pad bool) error {
	size := manifest.DescriptorHeaderSize + len(body)
	if pad {
		size = (size + 3) &^ 3
	}
	if size > math.MaxUint16 {
		return fmt.Errorf("%s descriptor: size %d exceeds %d", descType, size, math.MaxUint16)
	}
	frame := make([]byte, size)
	binary.LittleEndian.PutUint16(frame[0:2], uint16(size))
	frame[2] = uint8(descType)
	copy(frame[manifest.DescriptorHeaderSize:], body)
	w.frames = append(w.frames, frame)
	return nil
}

// Size returns the total manifest size, including the header
func (w *Writer) Size() int {
	size := manifest.HeaderSize
	for _, frame := range w.frames {
		size += len(frame)
	}
	return size
}

// Bytes returns the encoded manifest with the header size filled in
func (w *Writer) Bytes() ([]byte, error) {
	size := w.Size()
	if size > math.MaxUint16 {
		return nil, errors.New("manifest exceeds 65535 bytes")
	}
	header := w.header
	header.Size = uint16(size)
	ret, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	for _, frame := range w.frames {
		ret = append(ret, frame...)
	}
	return ret, nil
}
