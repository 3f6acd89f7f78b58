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

// descriptor is one accepted frame. The body is a view into the manifest
// buffer and must not outlive the parse
type descriptor struct {
	Type DescriptorType
	// Size is the declared frame size, including the frame header
	Size int
	// Offset of the frame from the start of the manifest
	Offset int
	// body holds everything after the frame header
	body []byte
}

// id returns the type-specific id field. All known descriptor bodies start with it
func (d *descriptor) id() uint8 {
	return d.body[0]
}

// readDescriptor validates the frame at the start of data and returns it. The
// caller advances its cursor by the returned descriptor's Size
func readDescriptor(data []byte, offset int) (*descriptor, error) {
	if len(data) < DescriptorHeaderSize {
		return nil, &DescriptorError{
			Offset: offset,
			Err: fmt.Errorf(
				"%w: %d byte(s) left, frame header needs %d",
				ErrTruncatedFrame,
				len(data),
				DescriptorHeaderSize,
			),
		}
	}
	size := int(binary.LittleEndian.Uint16(data[0:2]))
	descType := DescriptorType(data[2])
	if size > len(data) {
		return nil, &DescriptorError{
			Offset: offset,
			Type:   descType,
			Err: fmt.Errorf(
				"%w: declared %d, %d remaining",
				ErrOversizedFrame,
				size,
				len(data),
			),
		}
	}
	bodySize, ok := descType.minBodySize()
	if !ok {
		return nil, &DescriptorError{
			Offset: offset,
			Type:   descType,
			Err:    ErrUnknownDescriptorType,
		}
	}
	if size < DescriptorHeaderSize+bodySize {
		return nil, &DescriptorError{
			Offset: offset,
			Type:   descType,
			Err: fmt.Errorf(
				"%w: declared %d, minimum for type is %d",
				ErrTruncatedFrame,
				size,
				DescriptorHeaderSize+bodySize,
			),
		}
	}
	desc := &descriptor{
		Type:   descType,
		Size:   size,
		Offset: offset,
		body:   data[DescriptorHeaderSize:size:size],
	}
	expectedSize := desc.expectedSize()
	if size < expectedSize {
		return nil, &DescriptorError{
			Offset: offset,
			Type:   descType,
			Err: fmt.Errorf(
				"%w: declared %d, expected %d",
				ErrSizeMismatch,
				size,
				expectedSize,
			),
		}
	}
	return desc, nil
}

// expectedSize computes the frame size implied by the descriptor's own fields
func (d *descriptor) expectedSize() int {
	switch d.Type {
	case DescriptorTypeString:
		return alignUp(DescriptorHeaderSize + StringBodySize + d.stringLength())
	case DescriptorTypeProperty:
		return alignUp(DescriptorHeaderSize + PropertyBodySize + d.propertyValueSize())
	default:
		return DescriptorHeaderSize + DeviceBodySize
	}
}

func (d *descriptor) stringLength() int {
	return int(d.body[1])
}

func (d *descriptor) propertyType() PropertyType {
	return PropertyType(d.body[1])
}

func (d *descriptor) propertyNameId() uint8 {
	return d.body[2]
}

func (d *descriptor) propertyLength() int {
	return int(d.body[3])
}

func (d *descriptor) propertyValueSize() int {
	return d.propertyLength() * d.propertyType().Width()
}

// propertyValue returns the bytes of a property value, bounded by the frame
func (d *descriptor) propertyValue() []byte {
	return d.body[PropertyBodySize:]
}
