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
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gomikrobus/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	FingerprintSize = 32

	// FingerprintPrefix is the bech32 human-readable part for board fingerprints
	FingerprintPrefix = "mnfst"
)

// Fingerprint is the Blake2b-256 hash of a raw manifest
type Fingerprint [FingerprintSize]byte

// NewFingerprint hashes the raw manifest bytes
func NewFingerprint(data []byte) Fingerprint {
	return Fingerprint(blake2b.Sum256(data))
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

func (f Fingerprint) Bytes() []byte {
	return f[:]
}

func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f Fingerprint) MarshalCBOR() ([]byte, error) {
	// Ensure we always encode a full-sized bytestring, even if the hash is zero-valued
	hashBytes := make([]byte, FingerprintSize)
	copy(hashBytes, f[:])
	return cbor.Encode(hashBytes)
}

func (f *Fingerprint) UnmarshalCBOR(data []byte) error {
	var hashBytes []byte
	if _, err := cbor.Decode(data, &hashBytes); err != nil {
		return err
	}
	if len(hashBytes) != FingerprintSize {
		return fmt.Errorf(
			"fingerprint: expected %d bytes, got %d",
			FingerprintSize,
			len(hashBytes),
		)
	}
	copy(f[:], hashBytes)
	return nil
}

// Bech32 returns the fingerprint encoded as a bech32 string with FingerprintPrefix
func (f Fingerprint) Bech32() string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(f[:], 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(FingerprintPrefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

// ParseFingerprint decodes a bech32 fingerprint produced by Fingerprint.Bech32
func ParseFingerprint(s string) (Fingerprint, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("decode fingerprint: %w", err)
	}
	if hrp != FingerprintPrefix {
		return Fingerprint{}, fmt.Errorf("unexpected fingerprint prefix %q", hrp)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(decoded) != FingerprintSize {
		return Fingerprint{}, fmt.Errorf(
			"fingerprint: expected %d bytes, got %d",
			FingerprintSize,
			len(decoded),
		)
	}
	return Fingerprint(decoded), nil
}
