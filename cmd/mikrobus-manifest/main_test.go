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

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/gomikrobus/internal/test"
	"github.com/blinklabs-io/gomikrobus/internal/testdata"
	"github.com/blinklabs-io/gomikrobus/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCommand(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeManifest(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".mnfb")
	require.NoError(t, os.WriteFile(path, test.MustEncodeBoard(name), 0o644))
	return path
}

func TestBuild(t *testing.T) {
	desc, err := testdata.BoardDescription("oledc")
	require.NoError(t, err)
	outPath := filepath.Join(t.TempDir(), "oledc.mnfb")
	_, err = runCommand(t, desc, "build", "-o", outPath, "-")
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, test.MustEncodeBoard("oledc"), data)
	out, err := runCommand(t, desc, "build", "--hex", "-")
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString(out), data)
}

func TestBuildInvalidDescription(t *testing.T) {
	_, err := runCommand(t, []byte("name: Bad Click\n"), "build", "-")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	good := writeManifest(t, "thermo3")
	bad := filepath.Join(t.TempDir(), "bad.mnfb")
	data := test.MustEncodeBoard("weather")
	data[2] = manifest.VersionMajorSupported + 1
	require.NoError(t, os.WriteFile(bad, data, 0o644))
	metricsFile := filepath.Join(t.TempDir(), "manifest.prom")

	out, err := runCommand(t, nil, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, `ok: "Thermo 3 Click", 1 device(s), mnfst1`)

	out, err = runCommand(t, nil, "validate", "--metrics-file", metricsFile, good, bad)
	require.ErrorContains(t, err, "1 of 2 manifest(s) invalid")
	assert.Contains(t, out, bad+": invalid:")
	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "mikrobus_manifest_parsed_total 1")
	assert.Contains(t, string(metrics), `mikrobus_manifest_rejected_total{kind="unsupported_version"} 1`)
}

func TestValidateOrder(t *testing.T) {
	args := []string{"validate", "--jobs", "3"}
	for _, name := range testdata.BoardNames() {
		args = append(args, writeManifest(t, name))
	}
	missing := filepath.Join(t.TempDir(), "missing.mnfb")
	args = append(args, missing)
	out, err := runCommand(t, nil, args...)
	require.ErrorContains(t, err, "1 of 5 manifest(s) invalid")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(args)-3)
	for i, path := range args[3:] {
		assert.True(t, strings.HasPrefix(lines[i], path+": "), lines[i])
	}
	assert.Contains(t, lines[len(lines)-1], "invalid: read:")
}

func TestValidateStdinTwice(t *testing.T) {
	out, err := runCommand(t, test.MustEncodeBoard("weather"), "validate", "--jobs", "2", "-", "-")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `-: ok: "Weather Click"`)
	}
}

func TestValidateMaxDescriptors(t *testing.T) {
	path := writeManifest(t, "oledc")
	_, err := runCommand(t, nil, "validate", path)
	require.NoError(t, err)
	_, err = runCommand(t, nil, "--max-descriptors", "4", "validate", path)
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	path := writeManifest(t, "multi")
	out, err := runCommand(t, nil, "inspect", "--registrations", path)
	require.NoError(t, err)
	var result struct {
		Fingerprint string `json:"fingerprint"`
		Board       struct {
			Name    string `json:"name"`
			Devices []struct {
				Driver string `json:"driver"`
			} `json:"devices"`
		} `json:"board"`
		Registrations []struct {
			Name string `json:"name"`
			Bus  string `json:"bus"`
		} `json:"registrations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Multi Sensor Click", result.Board.Name)
	assert.Len(t, result.Board.Devices, 3)
	require.Len(t, result.Registrations, 3)
	assert.Equal(t, "lis3mdl.2", result.Registrations[1].Name)
	assert.Equal(t, "i2c", result.Registrations[1].Bus)
	assert.True(t, strings.HasPrefix(result.Fingerprint, manifest.FingerprintPrefix+"1"))
}

func TestInspectYamlRoundTrip(t *testing.T) {
	path := writeManifest(t, "weather")
	out, err := runCommand(t, nil, "inspect", "--format", "yaml", path)
	require.NoError(t, err)
	var result struct {
		Board yaml.Node `yaml:"board"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	boardYaml, err := yaml.Marshal(&result.Board)
	require.NoError(t, err)
	// The board section is itself a valid description
	data, err := runCommand(t, boardYaml, "build", "-")
	require.NoError(t, err)
	assert.Equal(t, string(test.MustEncodeBoard("weather")), data)
}

func TestInspectCbor(t *testing.T) {
	path := writeManifest(t, "thermo3")
	out, err := runCommand(t, nil, "inspect", "--format", "cbor", path)
	require.NoError(t, err)
	var board manifest.Board
	require.NoError(t, board.UnmarshalCBOR([]byte(out)))
	assert.Equal(t, "Thermo 3 Click", board.Name)
}

func TestInspectErrors(t *testing.T) {
	path := writeManifest(t, "thermo3")
	_, err := runCommand(t, nil, "inspect", "--format", "toml", path)
	assert.ErrorContains(t, err, "unknown output format")
	_, err = runCommand(t, []byte{0x01}, "inspect", "-")
	assert.ErrorIs(t, err, manifest.ErrTruncatedFrame)
	_, err = runCommand(t, nil, "inspect", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFingerprint(t *testing.T) {
	path := writeManifest(t, "oledc")
	expected := manifest.NewFingerprint(test.MustEncodeBoard("oledc"))
	out, err := runCommand(t, nil, "fingerprint", path)
	require.NoError(t, err)
	assert.Equal(t, expected.Bech32()+"\n", out)
	out, err = runCommand(t, nil, "fingerprint", "--hex", path)
	require.NoError(t, err)
	assert.Equal(t, expected.String()+"\n", out)
}
