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
	"log/slog"
)

// ParseState tracks the progress of a single parse. A ParseError carries the
// last state reached before the manifest was rejected
type ParseState uint8

const (
	ParseStateUnstarted ParseState = iota
	ParseStateHeaderValidated
	ParseStateDescriptorsIndexed
	ParseStateDevicesAssembled
	ParseStateDone
	ParseStateRejected
)

func (s ParseState) String() string {
	switch s {
	case ParseStateUnstarted:
		return "unstarted"
	case ParseStateHeaderValidated:
		return "header validated"
	case ParseStateDescriptorsIndexed:
		return "descriptors indexed"
	case ParseStateDevicesAssembled:
		return "devices assembled"
	case ParseStateDone:
		return "done"
	case ParseStateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Parser decodes click board manifests. It holds only configuration, so one
// Parser may be used by multiple goroutines at once
type Parser struct {
	logger         *slog.Logger
	maxDescriptors int
	metrics        *Metrics
}

// NewParser returns a Parser with the provided options applied
func NewParser(opts ...ParserOptionFunc) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse decodes a manifest with a Parser built from opts
func Parse(data []byte, opts ...ParserOptionFunc) (*Board, error) {
	return NewParser(opts...).Parse(data)
}

// Parse validates the manifest in data and resolves it into a Board. The whole
// manifest is rejected on the first error, including a failure to assemble any
// one device; no partial Board is ever returned
func (p *Parser) Parse(data []byte) (*Board, error) {
	mp := &manifestParse{
		parser: p,
		data:   data,
		index:  &descriptorIndex{maxEntries: p.maxDescriptors},
	}
	board, err := mp.run()
	// Descriptors only borrow the input buffer, so they never outlive the parse
	mp.index.release()
	if err != nil {
		lastState := mp.state
		mp.state = ParseStateRejected
		p.metrics.recordRejected(err)
		p.logger.Debug(
			"manifest rejected",
			"component", "manifest",
			"state", lastState.String(),
			"error", err,
		)
		return nil, &ParseError{State: lastState, Err: err}
	}
	return board, nil
}

// manifestParse is the state of a single call to Parser.Parse
type manifestParse struct {
	parser *Parser
	data   []byte
	index  *descriptorIndex
	state  ParseState
}

func (mp *manifestParse) run() (*Board, error) {
	logger := mp.parser.logger
	header, err := mp.validateHeader()
	if err != nil {
		return nil, err
	}
	mp.state = ParseStateHeaderValidated
	logger.Debug(
		"manifest header",
		"component", "manifest",
		"size", header.Size,
		"version", fmt.Sprintf("%d.%d", header.VersionMajor, header.VersionMinor),
		"num_devices", header.NumDevices,
	)
	if err := mp.indexDescriptors(); err != nil {
		return nil, err
	}
	numDescriptors := mp.index.len()
	mp.state = ParseStateDescriptorsIndexed
	res := &resolver{index: mp.index, logger: logger}
	board := &Board{
		VersionMajor: header.VersionMajor,
		VersionMinor: header.VersionMinor,
		NumDevices:   header.NumDevices,
		RstGpioState: header.RstGpioState,
		PwmGpioState: header.PwmGpioState,
		IntGpioState: header.IntGpioState,
		Fingerprint:  NewFingerprint(mp.data),
	}
	board.Name, err = res.resolveString(header.NameStringId)
	if err != nil {
		return nil, fmt.Errorf("board name: %w", err)
	}
	for _, desc := range mp.index.all(DescriptorTypeDevice) {
		mp.index.retire(desc)
		dev, err := res.assembleDevice(desc)
		if err != nil {
			return nil, err
		}
		board.Devices = append(board.Devices, dev)
	}
	mp.state = ParseStateDevicesAssembled
	if len(board.Devices) != int(header.NumDevices) {
		logger.Warn(
			"device count does not match manifest header",
			"component", "manifest",
			"board", board.Name,
			"declared", header.NumDevices,
			"found", len(board.Devices),
		)
	}
	if leftover := mp.index.release(); leftover > 0 {
		logger.Debug(
			"released unreferenced descriptors",
			"component", "manifest",
			"count", leftover,
		)
	}
	mp.state = ParseStateDone
	mp.parser.metrics.recordParsed(board, numDescriptors)
	logger.Info(
		"click manifest parsed",
		"component", "manifest",
		"board", board.Name,
		"devices", len(board.Devices),
		"fingerprint", board.Fingerprint.Bech32(),
	)
	return board, nil
}

func (mp *manifestParse) validateHeader() (Header, error) {
	header, err := DecodeHeader(mp.data)
	if err != nil {
		return Header{}, err
	}
	if int(header.Size) != len(mp.data) {
		return Header{}, fmt.Errorf(
			"%w: header declares %d bytes, manifest has %d",
			ErrSizeMismatch,
			header.Size,
			len(mp.data),
		)
	}
	if err := header.checkVersion(); err != nil {
		return Header{}, err
	}
	return header, nil
}

// indexDescriptors reads every frame after the header, stopping at the first malformed one
func (mp *manifestParse) indexDescriptors() error {
	offset := HeaderSize
	for offset < len(mp.data) {
		desc, err := readDescriptor(mp.data[offset:], offset)
		if err != nil {
			return err
		}
		if desc.Size > desc.expectedSize() {
			mp.parser.logger.Debug(
				"descriptor has trailing bytes",
				"component", "manifest",
				"offset", offset,
				"type", desc.Type.String(),
				"size", desc.Size,
				"expected", desc.expectedSize(),
			)
		}
		if err := mp.index.add(desc); err != nil {
			return &DescriptorError{Offset: offset, Type: desc.Type, Err: err}
		}
		offset += desc.Size
	}
	return nil
}
