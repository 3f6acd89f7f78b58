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
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrAlreadyRegistered = errors.New("device already registered")
	ErrNotRegistered     = errors.New("device not registered")
)

// MemoryRegistrar is a Registrar that keeps registered devices in memory. It
// is safe for concurrent use
type MemoryRegistrar struct {
	mu      sync.Mutex
	devices map[string]*BusDevice
	order   []string
	// RegisterHook is called before each registration, if set. A non-nil
	// return value fails the registration
	RegisterHook func(dev *BusDevice) error
}

func NewMemoryRegistrar() *MemoryRegistrar {
	return &MemoryRegistrar{
		devices: make(map[string]*BusDevice),
	}
}

func (m *MemoryRegistrar) Register(ctx context.Context, dev *BusDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RegisterHook != nil {
		if err := m.RegisterHook(dev); err != nil {
			return err
		}
	}
	if _, exists := m.devices[dev.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, dev.Name)
	}
	m.devices[dev.Name] = dev
	m.order = append(m.order, dev.Name)
	return nil
}

func (m *MemoryRegistrar) Unregister(ctx context.Context, dev *BusDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.devices[dev.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotRegistered, dev.Name)
	}
	delete(m.devices, dev.Name)
	m.order = slices.DeleteFunc(m.order, func(name string) bool { return name == dev.Name })
	return nil
}

// Devices returns the registered devices in registration order
func (m *MemoryRegistrar) Devices() []*BusDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*BusDevice, 0, len(m.order))
	for _, name := range m.order {
		ret = append(ret, m.devices[name])
	}
	return ret
}
