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
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// resolver turns indexed descriptors into owned values. Every successful lookup
// retires the descriptor it used
type resolver struct {
	index  *descriptorIndex
	logger *slog.Logger
}

// resolveString returns a copy of the string descriptor with the given id. An
// id of 0 means no string and yields an empty result
func (r *resolver) resolveString(id uint8) (string, error) {
	if id == 0 {
		return "", nil
	}
	desc, err := r.index.take(DescriptorTypeString, id)
	if err != nil {
		return "", err
	}
	length := desc.stringLength()
	if StringBodySize+length > len(desc.body) {
		return "", &LookupError{
			Type: DescriptorTypeString,
			Id:   id,
			Err: fmt.Errorf(
				"%w: length %d exceeds frame",
				ErrSizeMismatch,
				length,
			),
		}
	}
	// string() copies, so the result does not alias the manifest buffer
	return string(desc.body[StringBodySize : StringBodySize+length]), nil
}

// resolveProperties resolves the property descriptors with the given ids, in order
func (r *resolver) resolveProperties(ids []uint8) ([]Property, error) {
	ret := make([]Property, 0, len(ids))
	for _, id := range ids {
		prop, err := r.resolveProperty(id)
		if err != nil {
			return nil, err
		}
		r.logger.Debug(
			"resolved property",
			"component", "manifest",
			"id", id,
			"name", prop.Name,
			"type", prop.Type.String(),
			"length", prop.Len(),
		)
		ret = append(ret, prop)
	}
	return ret, nil
}

func (r *resolver) resolveProperty(id uint8) (Property, error) {
	desc, err := r.index.take(DescriptorTypeProperty, id)
	if err != nil {
		return Property{}, err
	}
	name, err := r.resolveString(desc.propertyNameId())
	if err != nil {
		return Property{}, fmt.Errorf("property %d name: %w", id, err)
	}
	value, err := decodePropertyValue(desc)
	if err != nil {
		return Property{}, &LookupError{
			Type: DescriptorTypeProperty,
			Id:   id,
			Err:  err,
		}
	}
	return Property{
		Name:  name,
		Type:  desc.propertyType(),
		Value: value,
	}, nil
}

// decodePropertyValue reads the typed value of a property descriptor
func decodePropertyValue(desc *descriptor) (any, error) {
	propType := desc.propertyType()
	length := desc.propertyLength()
	value := desc.propertyValue()
	switch propType {
	case PropertyTypeU8, PropertyTypeU16, PropertyTypeU32, PropertyTypeU64:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPropertyType, propType)
	}
	width := propType.Width()
	if length*width > len(value) {
		return nil, fmt.Errorf(
			"%w: %d %s value(s) need %d bytes, frame holds %d",
			ErrSizeMismatch,
			length,
			propType,
			length*width,
			len(value),
		)
	}
	switch propType {
	case PropertyTypeU8:
		return decodeValues(value, length, width, func(b []byte) uint8 { return b[0] }), nil
	case PropertyTypeU16:
		return decodeValues(value, length, width, binary.LittleEndian.Uint16), nil
	case PropertyTypeU32:
		return decodeValues(value, length, width, binary.LittleEndian.Uint32), nil
	default:
		return decodeValues(value, length, width, binary.LittleEndian.Uint64), nil
	}
}

// decodeValues reads length elements of the given width. A single element is
// returned as a scalar
func decodeValues[T uint8 | uint16 | uint32 | uint64](
	value []byte,
	length int,
	width int,
	get func([]byte) T,
) any {
	ret := make([]T, length)
	for i := range ret {
		ret[i] = get(value[i*width : (i+1)*width])
	}
	if length == 1 {
		return ret[0]
	}
	return ret
}

// resolveLink returns the id array held by the property with the given id,
// which must have one of the accepted types. An id of 0 means no linked
// array. The array must hold exactly expectedCount ids
func (r *resolver) resolveLink(
	linkId uint8,
	expectedCount int,
	accepted ...PropertyType,
) ([]uint8, error) {
	var ids []uint8
	if linkId != 0 {
		desc := r.index.find(DescriptorTypeProperty, linkId)
		if desc == nil {
			return nil, &LookupError{
				Type: DescriptorTypeProperty,
				Id:   linkId,
				Err:  ErrNotFound,
			}
		}
		if !slices.Contains(accepted, desc.propertyType()) {
			names := make([]string, 0, len(accepted))
			for _, t := range accepted {
				names = append(names, t.String())
			}
			return nil, &LookupError{
				Type: DescriptorTypeProperty,
				Id:   linkId,
				Err: fmt.Errorf(
					"%w: expected %s property, found %s",
					ErrTypeMismatch,
					strings.Join(names, " or "),
					desc.propertyType(),
				),
			}
		}
		r.index.retire(desc)
		length := desc.propertyLength()
		value := desc.propertyValue()
		if length > len(value) {
			return nil, &LookupError{
				Type: DescriptorTypeProperty,
				Id:   linkId,
				Err: fmt.Errorf(
					"%w: %d link id(s), frame holds %d",
					ErrSizeMismatch,
					length,
					len(value),
				),
			}
		}
		ids = bytes.Clone(value[:length])
	}
	if len(ids) != expectedCount {
		return nil, fmt.Errorf(
			"%w: link property %d holds %d id(s), device declares %d",
			ErrLinkCountMismatch,
			linkId,
			len(ids),
			expectedCount,
		)
	}
	return ids, nil
}
