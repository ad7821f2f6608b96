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

package config

import "testing"

func TestDefault(t *testing.T) {
	tc := Default()
	if tc.Compiler != "cc" {
		t.Fatalf("Compiler = %q, want \"cc\"", tc.Compiler)
	}
	if tc.JIT || tc.PerfMap {
		t.Fatalf("JIT/PerfMap should default false")
	}
}

func TestLoadStrictYAML(t *testing.T) {
	tc, err := Load([]byte(`compiler: clang
flags: ["-O3"]
jit: true
perfMap: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tc.Compiler != "clang" || len(tc.Flags) != 1 || tc.Flags[0] != "-O3" {
		t.Fatalf("got %+v", tc)
	}
	if !tc.JIT || !tc.PerfMap {
		t.Fatalf("got %+v, want JIT/PerfMap true", tc)
	}
}

func TestLoadOmittedFieldsKeepDefaults(t *testing.T) {
	tc, err := Load([]byte(`compiler: gcc
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tc.Compiler != "gcc" {
		t.Fatalf("Compiler = %q, want gcc", tc.Compiler)
	}
	if tc.RuntimeObject != "" || tc.JIT || tc.PerfMap || len(tc.Flags) != 0 {
		t.Fatalf("got %+v, want every unset field at its zero value", tc)
	}
}

func TestScratchDirDefaultsToOSTempDir(t *testing.T) {
	tc := Default()
	if tc.ScratchDir() == "" {
		t.Fatal("ScratchDir() should never be empty")
	}
	tc.TempDir = "/custom/scratch"
	if tc.ScratchDir() != "/custom/scratch" {
		t.Fatalf("ScratchDir() = %q, want /custom/scratch", tc.ScratchDir())
	}
}
