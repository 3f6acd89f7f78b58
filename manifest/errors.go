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
	"errors"
	"fmt"
)

var (
	ErrTruncatedFrame        = errors.New("truncated descriptor frame")
	ErrOversizedFrame        = errors.New("descriptor size exceeds remaining manifest bytes")
	ErrUnknownDescriptorType = errors.New("unknown descriptor type")
	ErrSizeMismatch          = errors.New("size mismatch")
	ErrUnsupportedVersion    = errors.New("unsupported manifest version")
	ErrNotFound              = errors.New("descriptor not found")
	ErrTypeMismatch          = errors.New("descriptor type mismatch")
	ErrInvalidPropertyType   = errors.New("invalid property type")
	ErrLinkCountMismatch     = errors.New("link count mismatch")
	ErrGpioResourceNotFound  = errors.New("gpio resource not found")
	ErrAllocationFailure     = errors.New("allocation failure")
)

// DescriptorError indicates a malformed descriptor frame at Offset bytes into the manifest
type DescriptorError struct {
	Offset int
	Type   DescriptorType
	Err    error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf(
		"descriptor at offset %d (type %s): %v",
		e.Offset,
		e.Type,
		e.Err,
	)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// LookupError indicates a failed id based lookup in the descriptor index
type LookupError struct {
	Type DescriptorType
	Id   uint8
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s descriptor %d: %v", e.Type, e.Id, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// DeviceError indicates that the device descriptor with DeviceId could not be assembled
type DeviceError struct {
	DeviceId uint8
	Err      error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %d: %v", e.DeviceId, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ParseError records the parser state in which a manifest was rejected
type ParseError struct {
	State ParseState
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest rejected (%s): %v", e.State, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errorKind maps an error to the name of its sentinel, for logging and metrics
func errorKind(err error) string {
	for _, kind := range []struct {
		err  error
		name string
	}{
		{ErrTruncatedFrame, "truncated_frame"},
		{ErrOversizedFrame, "oversized_frame"},
		{ErrUnknownDescriptorType, "unknown_descriptor_type"},
		{ErrSizeMismatch, "size_mismatch"},
		{ErrUnsupportedVersion, "unsupported_version"},
		{ErrNotFound, "not_found"},
		{ErrTypeMismatch, "type_mismatch"},
		{ErrInvalidPropertyType, "invalid_property_type"},
		{ErrLinkCountMismatch, "link_count_mismatch"},
		{ErrGpioResourceNotFound, "gpio_resource_not_found"},
		{ErrAllocationFailure, "allocation_failure"},
	} {
		if errors.Is(err, kind.err) {
			return kind.name
		}
	}
	return "other"
}
