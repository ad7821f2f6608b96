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

package driver

import (
	"fmt"
	"os"
	"path/filepath"
)

// PerfJITListener writes one `/tmp/perf-<pid>.map` entry per JIT-compiled
// function so external profilers (perf top, perf report) can symbolize
// generated code. Unset (nil *PerfJITListener) is zero cost: path B only
// calls through it when config.Toolchain.PerfMap is set.
type PerfJITListener struct {
	f *os.File
}

// NewPerfJITListener opens (creating if absent) /tmp/perf-<pid>.map for
// append, the fixed path perf(1) looks for.
func NewPerfJITListener(pid int) (*PerfJITListener, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("perf-%d.map", pid))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("driver: open %s: %w", path, err)
	}
	return &PerfJITListener{f: f}, nil
}

// Record appends one `addr size symbol` entry, perf's documented map
// format (hex address, hex size, whitespace-free symbol name).
func (p *PerfJITListener) Record(addr uintptr, size uintptr, symbol string) {
	fmt.Fprintf(p.f, "%x %x %s\n", addr, size, symbol)
}

// Close releases the map file handle; entries already written remain on
// disk for perf to read after the process exits.
func (p *PerfJITListener) Close() error { return p.f.Close() }
