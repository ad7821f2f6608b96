// Copyright (C) 2024 kushdb authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads the toolchain settings path A's driver needs to
// invoke an external compiler: compiler path, flags, the runtime object
// to link, and a scratch directory, decoded with sigs.k8s.io/yaml for
// structured config.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
	yamlv2 "gopkg.in/yaml.v2"
)

// Toolchain configures path A's external-compiler invocation and path
// B's optional perf-map integration.
type Toolchain struct {
	// Compiler is the external compiler executable (e.g. "cc", "clang",
	// "gcc"); resolved via exec.LookPath if it is not an absolute path.
	Compiler string `json:"compiler"`
	// Flags are extra flags appended after the fixed set the driver
	// always passes (-std=c11, -shared, -fPIC, -O2).
	Flags []string `json:"flags,omitempty"`
	// RuntimeObject, if set, is a precompiled object file to link instead
	// of compiling runtime.RuntimeC on every invocation.
	RuntimeObject string `json:"runtimeObject,omitempty"`
	// TempDir is the scratch directory generated sources, objects, and
	// shared libraries are written to; defaults to os.TempDir() when
	// empty.
	TempDir string `json:"tempDir,omitempty"`
	// JIT selects path B (in-memory IR -> JIT) over path A when true.
	JIT bool `json:"jit,omitempty"`
	// PerfMap enables driver.PerfJITListener on path B.
	PerfMap bool `json:"perfMap,omitempty"`
}

// Default returns the zero-config toolchain: "cc", no extra flags, the
// embedded runtime source compiled fresh each time, os.TempDir, no JIT.
func Default() *Toolchain {
	return &Toolchain{Compiler: "cc"}
}

// ScratchDir returns TempDir, falling back to os.TempDir().
func (t *Toolchain) ScratchDir() string {
	if t.TempDir != "" {
		return t.TempDir
	}
	return os.TempDir()
}

// Load decodes a YAML toolchain config. It first tries sigs.k8s.io/yaml
// (strict JSON-compatible decoding); if that fails it falls back to
// gopkg.in/yaml.v2, which additionally accepts anchors and aliases
// sigs.k8s.io/yaml cannot express.
func Load(data []byte) (*Toolchain, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err == nil {
		return t, nil
	}
	var v2 struct {
		Compiler      string   `yaml:"compiler"`
		Flags         []string `yaml:"flags"`
		RuntimeObject string   `yaml:"runtimeObject"`
		TempDir       string   `yaml:"tempDir"`
		JIT           bool     `yaml:"jit"`
		PerfMap       bool     `yaml:"perfMap"`
	}
	if err := yamlv2.Unmarshal(data, &v2); err != nil {
		return nil, fmt.Errorf("config: decode toolchain: %w", err)
	}
	return &Toolchain{
		Compiler:      v2.Compiler,
		Flags:         v2.Flags,
		RuntimeObject: v2.RuntimeObject,
		TempDir:       v2.TempDir,
		JIT:           v2.JIT,
		PerfMap:       v2.PerfMap,
	}, nil
}

// LoadFile reads and decodes a toolchain config from path.
func LoadFile(path string) (*Toolchain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data)
}
