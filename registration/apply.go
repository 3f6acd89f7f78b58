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
	"log/slog"

	"github.com/blinklabs-io/gomikrobus/manifest"
)

// Registrar registers bus devices with the platform's device core
type Registrar interface {
	Register(ctx context.Context, dev *BusDevice) error
	Unregister(ctx context.Context, dev *BusDevice) error
}

// ApplyOptionFunc is a type that represents functions that modify the Apply config
type ApplyOptionFunc func(*applyConfig)

type applyConfig struct {
	logger *slog.Logger
}

// WithLogger specifies the logger to use. If none is provided, slog.Default() is used
func WithLogger(logger *slog.Logger) ApplyOptionFunc {
	return func(c *applyConfig) {
		c.logger = logger
	}
}

func newApplyConfig(opts []ApplyOptionFunc) *applyConfig {
	c := &applyConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Apply registers every device on the board with reg, in board order. If any
// registration fails, the devices registered so far are unregistered in reverse
// order and the combined error is returned. The records do not share memory
// with board, since Plan copies every property value
func Apply(
	ctx context.Context,
	board *manifest.Board,
	reg Registrar,
	opts ...ApplyOptionFunc,
) ([]*BusDevice, error) {
	c := newApplyConfig(opts)
	devices, err := Plan(board)
	if err != nil {
		return nil, err
	}
	for i, dev := range devices {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(err, remove(ctx, devices[:i], reg, c.logger))
		}
		if err := reg.Register(ctx, dev); err != nil {
			c.logger.Warn(
				"device registration failed, rolling back",
				"component", "registration",
				"board", board.Name,
				"device", dev.Name,
				"error", err,
			)
			err = fmt.Errorf("register %s: %w", dev.Name, err)
			return nil, errors.Join(err, remove(ctx, devices[:i], reg, c.logger))
		}
		c.logger.Debug(
			"registered device",
			"component", "registration",
			"board", board.Name,
			"device", dev.Name,
			"bus", dev.Bus,
		)
	}
	c.logger.Info(
		"click board registered",
		"component", "registration",
		"board", board.Name,
		"devices", len(devices),
	)
	return devices, nil
}

// Remove unregisters devices in reverse order. All devices are attempted and the
// combined error is returned
func Remove(
	ctx context.Context,
	devices []*BusDevice,
	reg Registrar,
	opts ...ApplyOptionFunc,
) error {
	return remove(ctx, devices, reg, newApplyConfig(opts).logger)
}

func remove(ctx context.Context, devices []*BusDevice, reg Registrar, logger *slog.Logger) error {
	var errs []error
	for i := len(devices) - 1; i >= 0; i-- {
		dev := devices[i]
		// Rollback runs even if ctx has been cancelled
		if err := reg.Unregister(context.WithoutCancel(ctx), dev); err != nil {
			errs = append(errs, fmt.Errorf("unregister %s: %w", dev.Name, err))
			continue
		}
		logger.Debug(
			"unregistered device",
			"component", "registration",
			"device", dev.Name,
		)
	}
	return errors.Join(errs...)
}
