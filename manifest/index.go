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
	"slices"
)

// descriptorIndex holds the accepted descriptors of one manifest in manifest
// order. Entries are retired once their payload has been copied out
type descriptorIndex struct {
	entries []*descriptor
	// maxEntries caps the number of descriptors, 0 means unlimited
	maxEntries int
}

func (idx *descriptorIndex) add(desc *descriptor) error {
	if idx.maxEntries > 0 && len(idx.entries) >= idx.maxEntries {
		return fmt.Errorf(
			"%w: more than %d descriptors",
			ErrAllocationFailure,
			idx.maxEntries,
		)
	}
	idx.entries = append(idx.entries, desc)
	return nil
}

// find returns the first unretired descriptor of the given type and id
func (idx *descriptorIndex) find(descType DescriptorType, id uint8) *descriptor {
	for _, desc := range idx.entries {
		if desc.Type == descType && desc.id() == id {
			return desc
		}
	}
	return nil
}

// take finds a descriptor and retires it
func (idx *descriptorIndex) take(descType DescriptorType, id uint8) (*descriptor, error) {
	desc := idx.find(descType, id)
	if desc == nil {
		return nil, &LookupError{Type: descType, Id: id, Err: ErrNotFound}
	}
	idx.retire(desc)
	return desc, nil
}

// retire removes the descriptor from the index. It reports whether it was present
func (idx *descriptorIndex) retire(desc *descriptor) bool {
	i := slices.Index(idx.entries, desc)
	if i < 0 {
		return false
	}
	idx.entries = slices.Delete(idx.entries, i, i+1)
	return true
}

// all returns a snapshot of the descriptors of the given type, safe to iterate
// while retiring entries
func (idx *descriptorIndex) all(descType DescriptorType) []*descriptor {
	var ret []*descriptor
	for _, desc := range idx.entries {
		if desc.Type == descType {
			ret = append(ret, desc)
		}
	}
	return ret
}

func (idx *descriptorIndex) len() int {
	return len(idx.entries)
}

// release drops every remaining descriptor and returns how many there were
func (idx *descriptorIndex) release() int {
	count := len(idx.entries)
	clear(idx.entries)
	idx.entries = nil
	return count
}
